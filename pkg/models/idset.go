package models

// IDSet is a set of card ids
type IDSet map[string]struct{}

// NewIDSet creates a set holding the given ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id from the set
func (s IDSet) Remove(id string) {
	delete(s, id)
}

// Len returns the number of ids in the set
func (s IDSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
