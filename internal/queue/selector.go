package queue

import "github.com/example/wordmemo/pkg/models"

// Select returns the cards eligible for review at now (epoch milliseconds) under mode,
// in deck order. reverse flips the whole filtered sequence. Index 0 is the current card.
func Select(cards []models.Card, now int64, mode Mode, reverse bool) []models.Card {
	if mode == nil {
		mode = Normal{}
	}

	out := make([]models.Card, 0)
	for _, c := range cards {
		if c.IsDue(now) && mode.Admits(c.ID) {
			out = append(out, c)
		}
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
