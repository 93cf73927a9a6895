package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/example/wordmemo/internal/deck"
	"github.com/example/wordmemo/internal/logger"
	"github.com/example/wordmemo/internal/parser"
	"github.com/example/wordmemo/internal/queue"
	"github.com/example/wordmemo/internal/spaced_repetition"
	"github.com/example/wordmemo/internal/unknown"
	"github.com/example/wordmemo/pkg/models"
)

// Storage keys owned by the session
const (
	CardsKey  = "wordmemo_cards_v1"
	PrefsKey  = "wordmemo_prefs_v1"
	SourceKey = "wordmemo_source_v1"
)

// TopForgottenLimit is the size of the "top forgotten today" drill
const TopForgottenLimit = 10

// Prefs are persisted presentation preferences
type Prefs struct {
	Reverse bool `json:"reverse"`
}

// State is what a presentation layer reads after every call
type State struct {
	Current                *models.Card
	QueueLength            int
	Mode                   queue.Kind
	Revealed               bool
	SessionUnknownCount    int
	CumulativeUnknownCount int
	DeckSize               int
	SeenToday              int
	SessionSeen            int
	Reverse                bool
	Source                 string
}

// Options configures a Session. Zero fields get defaults.
type Options struct {
	Storage   Storage
	Clock     Clock
	Scheduler *spaced_repetition.Leveled
	Logger    *logger.Logger
	// Reverse is the queue order used until a preference has been saved
	Reverse bool
}

// Session owns the whole review state of one deck: cards, unknown bookkeeping,
// the active queue mode and the reveal flag. Every exported method runs to
// completion under one lock, so callers on different goroutines never interleave.
type Session struct {
	mu         sync.Mutex
	storage    Storage
	clock      Clock
	srs        *spaced_repetition.Leveled
	log        *logger.Logger
	deck       *deck.Deck
	tracker    *unknown.Tracker
	mode       queue.Mode
	revealedID string // card whose answer is shown
	seen       []string
	seenSet    models.IDSet
	seenDay    map[string]string
	prefs      Prefs
	source     string
	listeners  []func(State)
}

// New creates a session and restores the persisted deck, source and preferences
func New(opts Options) *Session {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = spaced_repetition.NewLeveled()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	s := &Session{
		storage: opts.Storage,
		clock:   opts.Clock,
		srs:     opts.Scheduler,
		log:     opts.Logger,
		deck:    deck.New(nil),
		tracker: unknown.NewTracker(opts.Storage, opts.Logger),
		mode:    queue.Normal{},
		seenSet: make(models.IDSet),
		seenDay: make(map[string]string),
		prefs:   Prefs{Reverse: opts.Reverse},
	}
	s.restore()
	return s
}

// Now returns the session clock's current time
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// Parse reads word list text into new cards due now
func (s *Session) Parse(text string) *parser.Result {
	return parser.Parse(text, s.clock.Now())
}

// Subscribe registers fn to receive the fresh state after every successful mutation
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Source returns the identifier of the word list the deck was loaded from
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// State returns the current presentation state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.settle()
	return s.stateLocked(now)
}

// Queue returns the cards reviewable right now under the active mode
func (s *Session) Queue() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.settle()
	return s.queueLocked(now)
}

// Current returns the card at the front of the queue
func (s *Session) Current() (models.Card, bool) {
	q := s.Queue()
	if len(q) == 0 {
		return models.Card{}, false
	}
	return q[0], true
}

// Mode returns a copy of the active mode
func (s *Session) Mode() queue.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	switch m := s.mode.(type) {
	case queue.TopTenForgotten:
		return queue.TopTenForgotten{Snapshot: m.Snapshot.Clone()}
	case queue.RepeatUnknown:
		return queue.RepeatUnknown{Snapshot: m.Snapshot.Clone(), Remaining: m.Remaining.Clone()}
	default:
		return queue.Normal{}
	}
}

// DueCount returns how many cards are due right now, ignoring the active mode
func (s *Session) DueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now().UnixMilli()
	n := 0
	for _, c := range s.deck.Cards() {
		if c.IsDue(now) {
			n++
		}
	}
	return n
}

// Cards returns the whole deck in order
func (s *Session) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Cards()
}

// SessionUnknownCards returns the cards still unknown in this session, in deck order
func (s *Session) SessionUnknownCards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Select(s.tracker.SessionUnknown())
}

// CumulativeUnknownCards returns every card ever forgotten that is still in the deck,
// in first-forgotten order
func (s *Session) CumulativeUnknownCards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Card, 0)
	for _, id := range s.tracker.Cumulative() {
		if c, ok := s.deck.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// ForgotCountToday returns how often the card with id was forgotten today
func (s *Session) ForgotCountToday(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.ForgotCount(id, unknown.DayKey(s.clock.Now()))
}

// SetReverse flips presentation order of the queue and persists the choice
func (s *Session) SetReverse(reverse bool) State {
	st, _ := s.mutate("set_reverse", func(time.Time) bool {
		s.prefs.Reverse = reverse
		s.saveJSON(PrefsKey, s.prefs)
		return true
	})
	return st
}

// ClearCumulative wipes the all-time unknown list. It cannot be undone.
func (s *Session) ClearCumulative() State {
	st, _ := s.mutate("clear_cumulative", func(time.Time) bool {
		s.tracker.ClearCumulative()
		return true
	})
	return st
}

// mutate runs fn under the lock with the mode settled before and after, then
// notifies subscribers when fn reports a change.
func (s *Session) mutate(op string, fn func(now time.Time) bool) (State, bool) {
	s.mu.Lock()
	now := s.clock.Now()
	s.settle()
	changed := fn(now)
	if changed {
		s.settle()
	}
	st := s.stateLocked(now)
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !changed {
		s.log.Debug("Nothing to do", "op", op)
		return st, false
	}
	s.log.Debug("Session updated", "op", op, "mode", st.Mode.String(), "queue", st.QueueLength)
	for _, notify := range listeners {
		notify(st)
	}
	return st, true
}

func (s *Session) queueLocked(now time.Time) []models.Card {
	return queue.Select(s.deck.Cards(), now.UnixMilli(), s.mode, s.prefs.Reverse)
}

func (s *Session) stateLocked(now time.Time) State {
	q := s.queueLocked(now)
	st := State{
		QueueLength:            len(q),
		Mode:                   s.mode.Kind(),
		SessionUnknownCount:    s.liveUnknownLocked().Len(),
		CumulativeUnknownCount: s.tracker.CumulativeCount(),
		DeckSize:               s.deck.Len(),
		SessionSeen:            len(s.seen),
		Reverse:                s.prefs.Reverse,
		Source:                 s.source,
	}
	if len(q) > 0 {
		current := q[0]
		st.Current = &current
		st.Revealed = current.ID == s.revealedID
	}
	today := unknown.DayKey(now)
	for _, day := range s.seenDay {
		if day == today {
			st.SeenToday++
		}
	}
	return st
}

func (s *Session) restore() {
	if raw, ok := s.storage.Load(CardsKey); ok {
		var cards []models.Card
		if err := json.Unmarshal([]byte(raw), &cards); err != nil {
			s.log.Warn("Discarding unreadable deck snapshot", "error", err)
		} else {
			s.deck.Replace(sanitize(cards, s.srs.MaxLevel))
		}
	}
	if raw, ok := s.storage.Load(PrefsKey); ok {
		var prefs Prefs
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			s.log.Warn("Discarding unreadable preferences", "error", err)
		} else {
			s.prefs = prefs
		}
	}
	if raw, ok := s.storage.Load(SourceKey); ok {
		s.source = raw
	}
}

// sanitize drops restored cards that break deck invariants
func sanitize(cards []models.Card, maxLevel int) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if c.ID == "" || c.Term == "" || c.Meaning == "" {
			continue
		}
		if c.Level < 0 {
			c.Level = 0
		}
		if c.Level > maxLevel {
			c.Level = maxLevel
		}
		out = append(out, c)
	}
	return out
}

func (s *Session) saveCards() {
	s.saveJSON(CardsKey, s.deck.Cards())
}

func (s *Session) saveJSON(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("Failed to encode snapshot", "key", key, "error", err)
		return
	}
	s.save(key, string(data))
}

func (s *Session) save(key, value string) {
	if err := s.storage.Save(key, value); err != nil {
		s.log.Warn("Failed to persist snapshot", "key", key, "error", err)
	}
}
