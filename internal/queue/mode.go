package queue

import "github.com/example/wordmemo/pkg/models"

// Kind names the active queue filter
type Kind int

const (
	KindNormal Kind = iota
	KindTopTenForgotten
	KindRepeatUnknown
)

func (k Kind) String() string {
	switch k {
	case KindTopTenForgotten:
		return "top10_forgotten"
	case KindRepeatUnknown:
		return "repeat_unknown"
	default:
		return "normal"
	}
}

// Mode is the active queue filter. Exactly one mode is active at a time;
// the implementations below are the only ones.
type Mode interface {
	Kind() Kind
	// Admits reports whether a due card with id belongs to the queue
	Admits(id string) bool
	isMode()
}

// Normal admits every due card
type Normal struct{}

// TopTenForgotten admits the cards most forgotten today, fixed when the mode was entered
type TopTenForgotten struct {
	Snapshot models.IDSet
}

// RepeatUnknown drills the session unknown cards captured on entry.
// Remaining shrinks as cards are graded "knew".
type RepeatUnknown struct {
	Snapshot  models.IDSet
	Remaining models.IDSet
}

func (Normal) Kind() Kind { return KindNormal }
func (Normal) Admits(string) bool { return true }
func (Normal) isMode() {}

func (m TopTenForgotten) Kind() Kind { return KindTopTenForgotten }
func (m TopTenForgotten) Admits(id string) bool { return m.Snapshot.Has(id) }
func (TopTenForgotten) isMode() {}

func (m RepeatUnknown) Kind() Kind { return KindRepeatUnknown }
func (m RepeatUnknown) Admits(id string) bool { return m.Remaining.Has(id) }
func (RepeatUnknown) isMode() {}

// NewRepeatUnknown starts a drill over ids
func NewRepeatUnknown(ids models.IDSet) RepeatUnknown {
	return RepeatUnknown{Snapshot: ids.Clone(), Remaining: ids.Clone()}
}
