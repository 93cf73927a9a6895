package session

import (
	"time"

	"github.com/example/wordmemo/internal/deck"
	"github.com/example/wordmemo/pkg/models"
)

// Load replaces the deck with cards read from source and starts a new session
func (s *Session) Load(source string, cards []models.Card) State {
	st, _ := s.mutate("load", func(time.Time) bool {
		s.deck.Replace(cards)
		s.startOver(source)
		s.log.Info("Deck loaded", "source", source, "cards", len(cards))
		return true
	})
	return st
}

// Append adds cards read from source after the existing ones and starts a new session
func (s *Session) Append(source string, cards []models.Card) State {
	st, _ := s.mutate("append", func(time.Time) bool {
		added := s.deck.Append(cards)
		s.startOver(source)
		s.log.Info("Cards appended", "source", source, "cards", added)
		return true
	})
	return st
}

// Merge reconciles a changed word list with the current progress by term.
// The merge is ignored (ok=false) when source is no longer the deck's source,
// which happens when a manual import lands while a re-check is in flight.
func (s *Session) Merge(source string, cards []models.Card) (deck.MergeResult, bool) {
	var result deck.MergeResult
	_, ok := s.mutate("merge", func(time.Time) bool {
		if source != s.source {
			s.log.Info("Ignoring stale word list update", "source", source, "current", s.source)
			return false
		}
		result = s.deck.Merge(cards)
		s.pruneMode()
		s.saveCards()
		s.log.Info("Word list merged", "source", source, "kept", result.Kept, "added", result.Added, "removed", result.Removed)
		return true
	})
	return result, ok
}

// Clear empties the deck and starts a new session
func (s *Session) Clear() State {
	st, _ := s.mutate("clear", func(time.Time) bool {
		s.deck.Replace(nil)
		s.startOver("")
		return true
	})
	return st
}

// startOver resets everything session scoped after a full deck replacement
func (s *Session) startOver(source string) {
	s.tracker.ResetSession()
	s.resetSeen()
	s.resetMode()
	s.source = source
	s.saveCards()
	s.save(SourceKey, source)
}
