package session

import (
	"time"

	"github.com/example/wordmemo/internal/queue"
	"github.com/example/wordmemo/internal/unknown"
	"github.com/example/wordmemo/pkg/models"
)

// EnterTopTenForgotten drills the cards forgotten most often today.
// It reports ok=false when nothing was forgotten today.
func (s *Session) EnterTopTenForgotten() (State, bool) {
	return s.mutate("enter_top10", func(now time.Time) bool {
		ids := s.tracker.TopForgotten(unknown.DayKey(now), TopForgottenLimit, s.deck.Has)
		if len(ids) == 0 {
			return false
		}
		snapshot := models.NewIDSet(ids...)
		s.deck.SetDue(snapshot, now.UnixMilli())
		s.mode = queue.TopTenForgotten{Snapshot: snapshot}
		s.revealedID = ""
		s.saveCards()
		return true
	})
}

// EnterRepeatUnknown drills the cards currently unknown in this session.
// Every call takes a fresh snapshot of the live unknown set, so calling it
// again while already drilling restarts the drill. It reports ok=false when
// no card is unknown.
func (s *Session) EnterRepeatUnknown() (State, bool) {
	return s.mutate("enter_repeat_unknown", func(now time.Time) bool {
		live := s.liveUnknownLocked()
		if live.Len() == 0 {
			return false
		}
		s.deck.SetDue(live, now.UnixMilli())
		s.mode = queue.NewRepeatUnknown(live)
		s.revealedID = ""
		s.saveCards()
		return true
	})
}

// ReturnToNormal leaves any drill. It reports ok=false when already in normal mode.
func (s *Session) ReturnToNormal() (State, bool) {
	return s.mutate("return_to_normal", func(time.Time) bool {
		if s.mode.Kind() == queue.KindNormal {
			return false
		}
		s.mode = queue.Normal{}
		s.revealedID = ""
		return true
	})
}

// settle applies the automatic exit of the repeat-unknown drill: once no
// remaining card is left in the deck the drill is over. Runs before every
// read and after every mutation.
func (s *Session) settle() {
	m, ok := s.mode.(queue.RepeatUnknown)
	if !ok {
		return
	}
	for id := range m.Remaining {
		if !s.deck.Has(id) {
			m.Remaining.Remove(id)
		}
	}
	if m.Remaining.Len() == 0 {
		s.log.Debug("Repeat unknown drill finished")
		s.mode = queue.Normal{}
	}
}

// resetMode drops any drill and its snapshots
func (s *Session) resetMode() {
	s.mode = queue.Normal{}
	s.revealedID = ""
}

// pruneMode removes ids that left the deck from the active snapshots
func (s *Session) pruneMode() {
	switch m := s.mode.(type) {
	case queue.TopTenForgotten:
		for id := range m.Snapshot {
			if !s.deck.Has(id) {
				m.Snapshot.Remove(id)
			}
		}
	case queue.RepeatUnknown:
		for id := range m.Snapshot {
			if !s.deck.Has(id) {
				m.Snapshot.Remove(id)
			}
		}
	}
}

// liveUnknownLocked returns the session unknown ids that are still in the deck
func (s *Session) liveUnknownLocked() models.IDSet {
	live := make(models.IDSet)
	for id := range s.tracker.SessionUnknown() {
		if s.deck.Has(id) {
			live.Add(id)
		}
	}
	return live
}
