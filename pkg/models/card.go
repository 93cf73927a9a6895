package models

// Card represents one term/meaning entry of the deck with its review schedule
type Card struct {
	ID      string `json:"id" db:"id"`
	Num     *int   `json:"num,omitempty" db:"num"` // Ordinal taken from the source line, if any
	Term    string `json:"term" db:"term"`
	Meaning string `json:"meaning" db:"meaning"`
	Level   int    `json:"level" db:"level"` // Spaced repetition stage, 0..5
	Due     int64  `json:"due" db:"due"`     // Epoch milliseconds
}

// IsDue reports whether the card may be reviewed at now (epoch milliseconds)
func (c Card) IsDue(now int64) bool {
	return c.Due <= now
}

// IntPtr returns a pointer to a copy of n
func IntPtr(n int) *int {
	return &n
}
