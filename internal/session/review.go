package session

import (
	"time"

	"github.com/example/wordmemo/internal/queue"
	"github.com/example/wordmemo/internal/spaced_repetition"
	"github.com/example/wordmemo/internal/unknown"
	"github.com/example/wordmemo/pkg/models"
)

// Reveal shows the answer of the current card. It reports ok=false when the queue is empty.
func (s *Session) Reveal() (State, bool) {
	return s.reveal("")
}

// RevealCard is Reveal for the card with id. It reports ok=false when id is
// not the current card, for example when a button of an older screen is pressed.
func (s *Session) RevealCard(id string) (State, bool) {
	if id == "" {
		return s.State(), false
	}
	return s.reveal(id)
}

func (s *Session) reveal(id string) (State, bool) {
	return s.mutate("reveal", func(now time.Time) bool {
		q := s.queueLocked(now)
		if len(q) == 0 || s.revealedID == q[0].ID || (id != "" && q[0].ID != id) {
			return false
		}
		s.revealedID = q[0].ID
		return true
	})
}

// Grade records outcome for the current card: reschedules it, updates the
// unknown bookkeeping and the session log, and hides the answer again.
// It reports ok=false when there is no current card.
func (s *Session) Grade(outcome spaced_repetition.Outcome) (State, bool) {
	return s.grade("", outcome)
}

// GradeCard is Grade for the card with id. It reports ok=false and leaves the
// deck untouched when id is not the current card.
func (s *Session) GradeCard(id string, outcome spaced_repetition.Outcome) (State, bool) {
	if id == "" {
		return s.State(), false
	}
	return s.grade(id, outcome)
}

func (s *Session) grade(want string, outcome spaced_repetition.Outcome) (State, bool) {
	return s.mutate("grade_"+outcome.String(), func(now time.Time) bool {
		q := s.queueLocked(now)
		if len(q) == 0 || (want != "" && q[0].ID != want) {
			return false
		}
		id := q[0].ID
		day := unknown.DayKey(now)

		s.deck.Update(id, func(c *models.Card) {
			s.srs.Process(c, outcome, now)
		})

		switch outcome {
		case spaced_repetition.Forgot:
			s.tracker.MarkUnknown(id)
			s.tracker.BumpForgotCount(id, day)
		case spaced_repetition.Knew:
			s.tracker.MarkKnown(id)
			if m, ok := s.mode.(queue.RepeatUnknown); ok {
				m.Remaining.Remove(id)
			}
		}

		s.markSeen(id, day)
		s.revealedID = ""
		s.saveCards()
		s.log.Debug("Card graded", "id", id, "outcome", outcome.String())
		return true
	})
}

// RepeatAllSession makes every card graded this session due again and returns to normal mode.
// It reports ok=false when nothing was graded yet.
func (s *Session) RepeatAllSession() (State, bool) {
	return s.mutate("repeat_all_session", func(now time.Time) bool {
		if len(s.seen) == 0 {
			return false
		}
		s.deck.SetDue(s.seenSet, now.UnixMilli())
		s.resetMode()
		s.saveCards()
		return true
	})
}

func (s *Session) markSeen(id, day string) {
	if !s.seenSet.Has(id) {
		s.seenSet.Add(id)
		s.seen = append(s.seen, id)
	}
	s.seenDay[id] = day
}

func (s *Session) resetSeen() {
	s.seen = nil
	s.seenSet = make(models.IDSet)
	s.seenDay = make(map[string]string)
}
