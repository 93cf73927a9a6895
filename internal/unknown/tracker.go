package unknown

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/example/wordmemo/internal/logger"
	"github.com/example/wordmemo/pkg/models"
)

// Storage keys owned by the tracker
const (
	ForgotStatsKey = "wordmemo_forgot_stats_v1"
	CumulativeKey  = "wordmemo_unknown_all_v1"
)

// DayLayout is the calendar day format used for daily forget counters
const DayLayout = "2006-01-02"

// Storage persists opaque text snapshots by key
type Storage interface {
	Load(key string) (string, bool)
	Save(key, value string) error
}

// Tracker keeps the three views of forgotten cards:
// daily per-card forget counters, the session unknown set and the all-time unknown list.
type Tracker struct {
	storage    Storage
	log        *logger.Logger
	daily      models.DailyForgotStats
	session    models.IDSet
	cumulative []string
	inCumul    models.IDSet
}

// DayKey returns the calendar day of t in its own location
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// NewTracker restores persisted counters and the cumulative list from storage.
// Missing or corrupt snapshots start empty.
func NewTracker(storage Storage, log *logger.Logger) *Tracker {
	t := &Tracker{
		storage: storage,
		log:     log,
		daily:   make(models.DailyForgotStats),
		session: make(models.IDSet),
		inCumul: make(models.IDSet),
	}

	if raw, ok := storage.Load(ForgotStatsKey); ok {
		var daily models.DailyForgotStats
		if err := json.Unmarshal([]byte(raw), &daily); err != nil || daily == nil {
			log.Warn("Discarding unreadable forgot stats", "error", err)
		} else {
			t.daily = daily
		}
	}

	if raw, ok := storage.Load(CumulativeKey); ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			log.Warn("Discarding unreadable unknown list", "error", err)
		} else {
			for _, id := range ids {
				t.appendCumulative(id)
			}
		}
	}

	return t
}

// BumpForgotCount increments the forget counter of id for day and persists it
func (t *Tracker) BumpForgotCount(id, day string) {
	counts := t.daily[day]
	found := false
	for i := range counts {
		if counts[i].ID == id {
			counts[i].Count++
			found = true
			break
		}
	}
	if !found {
		counts = append(counts, models.ForgotCount{ID: id, Count: 1})
	}
	t.daily[day] = counts
	t.save(ForgotStatsKey, t.daily)
}

// ForgotCount returns how often id was forgotten on day
func (t *Tracker) ForgotCount(id, day string) int {
	for _, c := range t.daily[day] {
		if c.ID == id {
			return c.Count
		}
	}
	return 0
}

// TopForgotten ranks the ids forgotten on day by count, highest first.
// Ties keep first-bumped order. Ids rejected by exists are dropped before truncating to n.
func (t *Tracker) TopForgotten(day string, n int, exists func(id string) bool) []string {
	if n <= 0 {
		return nil
	}
	counts := make([]models.ForgotCount, len(t.daily[day]))
	copy(counts, t.daily[day])
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	ids := make([]string, 0, n)
	for _, c := range counts {
		if len(ids) >= n {
			break
		}
		if exists != nil && !exists(c.ID) {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids
}

// MarkUnknown records id as not yet known in this session and in the all-time list
func (t *Tracker) MarkUnknown(id string) {
	t.session.Add(id)
	if t.appendCumulative(id) {
		t.save(CumulativeKey, t.cumulative)
	}
}

// MarkKnown removes id from the session unknown set. The all-time list is untouched.
func (t *Tracker) MarkKnown(id string) {
	t.session.Remove(id)
}

// IsUnknown reports whether id is in the session unknown set
func (t *Tracker) IsUnknown(id string) bool {
	return t.session.Has(id)
}

// SessionUnknown returns a snapshot of the session unknown set
func (t *Tracker) SessionUnknown() models.IDSet {
	return t.session.Clone()
}

// SessionCount returns the size of the session unknown set
func (t *Tracker) SessionCount() int {
	return t.session.Len()
}

// Cumulative returns the all-time unknown ids in first-forgotten order
func (t *Tracker) Cumulative() []string {
	out := make([]string, len(t.cumulative))
	copy(out, t.cumulative)
	return out
}

// CumulativeCount returns the length of the all-time unknown list
func (t *Tracker) CumulativeCount() int {
	return len(t.cumulative)
}

// ResetSession forgets the session unknown set
func (t *Tracker) ResetSession() {
	t.session = make(models.IDSet)
}

// ClearCumulative wipes the all-time unknown list immediately and for good
func (t *Tracker) ClearCumulative() {
	t.cumulative = nil
	t.inCumul = make(models.IDSet)
	t.save(CumulativeKey, []string{})
}

func (t *Tracker) appendCumulative(id string) bool {
	if t.inCumul.Has(id) {
		return false
	}
	t.inCumul.Add(id)
	t.cumulative = append(t.cumulative, id)
	return true
}

func (t *Tracker) save(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		t.log.Warn("Failed to encode snapshot", "key", key, "error", err)
		return
	}
	if err := t.storage.Save(key, string(data)); err != nil {
		t.log.Warn("Failed to persist snapshot", "key", key, "error", err)
	}
}
