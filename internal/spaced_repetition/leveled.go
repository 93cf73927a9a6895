package spaced_repetition

import (
	"time"

	"github.com/example/wordmemo/pkg/models"
)

// Outcome is the result of a single review
type Outcome int

const (
	// Forgot means the answer was not recalled
	Forgot Outcome = iota
	// Knew means the answer was recalled
	Knew
)

// String returns the outcome name used in logs and callbacks
func (o Outcome) String() string {
	if o == Knew {
		return "knew"
	}
	return "forgot"
}

// Leveled implements a fixed-table spaced repetition schedule.
// A card climbs one level per successful review and falls back to level 0 on a miss.
type Leveled struct {
	// Delay applied to level 0 cards
	LearningStep time.Duration
	// Review interval in days, indexed by level. Index 0 is unused.
	IntervalDays []int
	// Highest reachable level
	MaxLevel int
}

// NewLeveled creates a scheduler with the default interval table
func NewLeveled() *Leveled {
	return &Leveled{
		LearningStep: 10 * time.Minute,
		IntervalDays: []int{0, 1, 3, 7, 14, 30},
		MaxLevel:     5,
	}
}

// Interval returns the delay until the next review of a card at level
func (l *Leveled) Interval(level int) time.Duration {
	if level <= 0 {
		return l.LearningStep
	}
	if level > l.MaxLevel {
		level = l.MaxLevel
	}
	return time.Duration(l.IntervalDays[level]) * 24 * time.Hour
}

// NextDue returns the due timestamp (epoch milliseconds) for a card at level reviewed at now
func (l *Leveled) NextDue(level int, now time.Time) int64 {
	return now.Add(l.Interval(level)).UnixMilli()
}

// NextLevel returns the level a card moves to after outcome
func (l *Leveled) NextLevel(level int, outcome Outcome) int {
	if outcome == Forgot {
		return 0
	}
	level++
	if level > l.MaxLevel {
		level = l.MaxLevel
	}
	if level < 1 {
		level = 1
	}
	return level
}

// Process applies outcome to card, updating its level and due date
func (l *Leveled) Process(card *models.Card, outcome Outcome, now time.Time) {
	card.Level = l.NextLevel(card.Level, outcome)
	card.Due = l.NextDue(card.Level, now)
}
