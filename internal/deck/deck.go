package deck

import (
	"strings"

	"github.com/example/wordmemo/pkg/models"
)

// Deck is the ordered card store. Order is import order.
type Deck struct {
	cards []models.Card
	index map[string]int
}

// MergeResult describes how a reloaded word list was reconciled with existing progress
type MergeResult struct {
	Kept    int // Cards whose progress was carried over by term match
	Added   int // New terms
	Removed int // Old cards absent from the new list
}

// New creates a deck holding a copy of cards
func New(cards []models.Card) *Deck {
	d := &Deck{}
	d.Replace(cards)
	return d
}

// Len returns the number of cards
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of all cards in deck order
func (d *Deck) Cards() []models.Card {
	out := make([]models.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Get returns the card with id
func (d *Deck) Get(id string) (models.Card, bool) {
	i, ok := d.index[id]
	if !ok {
		return models.Card{}, false
	}
	return d.cards[i], true
}

// Has reports whether a card with id exists
func (d *Deck) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Update applies fn to the stored card with id
func (d *Deck) Update(id string, fn func(*models.Card)) bool {
	i, ok := d.index[id]
	if !ok {
		return false
	}
	fn(&d.cards[i])
	return true
}

// SetDue makes the cards with the given ids due at due. Unknown ids are ignored.
func (d *Deck) SetDue(ids models.IDSet, due int64) int {
	n := 0
	for id := range ids {
		if d.Update(id, func(c *models.Card) { c.Due = due }) {
			n++
		}
	}
	return n
}

// Select returns the cards whose ids are in ids, in deck order
func (d *Deck) Select(ids models.IDSet) []models.Card {
	out := make([]models.Card, 0, len(ids))
	for _, c := range d.cards {
		if ids.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Replace swaps the whole deck for cards
func (d *Deck) Replace(cards []models.Card) {
	d.cards = make([]models.Card, 0, len(cards))
	d.index = make(map[string]int, len(cards))
	d.Append(cards)
}

// Append adds cards at the end. Cards whose id is already present are skipped.
func (d *Deck) Append(cards []models.Card) int {
	added := 0
	for _, c := range cards {
		if _, dup := d.index[c.ID]; dup {
			continue
		}
		d.index[c.ID] = len(d.cards)
		d.cards = append(d.cards, c)
		added++
	}
	return added
}

// Merge replaces the deck with fresh while carrying id, level and due over from
// existing cards with the same case-insensitive term. When several old cards
// share a term only the first one donates its progress.
func (d *Deck) Merge(fresh []models.Card) MergeResult {
	byTerm := make(map[string]int, len(d.cards))
	for i, c := range d.cards {
		key := termKey(c.Term)
		if _, ok := byTerm[key]; !ok {
			byTerm[key] = i
		}
	}

	var result MergeResult
	claimed := make(map[int]bool)
	merged := make([]models.Card, 0, len(fresh))
	for _, c := range fresh {
		if i, ok := byTerm[termKey(c.Term)]; ok && !claimed[i] {
			old := d.cards[i]
			claimed[i] = true
			c.ID = old.ID
			c.Level = old.Level
			c.Due = old.Due
			if c.Num == nil {
				c.Num = old.Num
			}
			result.Kept++
		} else {
			result.Added++
		}
		merged = append(merged, c)
	}
	result.Removed = len(d.cards) - len(claimed)

	d.Replace(merged)
	return result
}

func termKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
