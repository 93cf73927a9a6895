package queue

import (
	"testing"

	"github.com/example/wordmemo/pkg/models"
	"github.com/stretchr/testify/assert"
)

func ids(cards []models.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestSelect(t *testing.T) {
	const now = int64(1_000)
	cards := []models.Card{
		{ID: "a", Due: 500},
		{ID: "b", Due: 1_000},
		{ID: "c", Due: 1_001},
		{ID: "d", Due: 0},
	}

	tests := []struct {
		name    string
		mode    Mode
		reverse bool
		want    []string
	}{
		{"nil mode is normal", nil, false, []string{"a", "b", "d"}},
		{"normal", Normal{}, false, []string{"a", "b", "d"}},
		{"normal reversed", Normal{}, true, []string{"d", "b", "a"}},
		{"top ten snapshot", TopTenForgotten{Snapshot: models.NewIDSet("d", "c", "b")}, false, []string{"b", "d"}},
		{"repeat unknown uses remaining", RepeatUnknown{
			Snapshot:  models.NewIDSet("a", "b", "d"),
			Remaining: models.NewIDSet("a", "d"),
		}, false, []string{"a", "d"}},
		{"repeat unknown reversed", NewRepeatUnknown(models.NewIDSet("a", "b")), true, []string{"b", "a"}},
		{"empty snapshot", TopTenForgotten{Snapshot: models.NewIDSet()}, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Select(cards, now, tt.mode, tt.reverse)))
		})
	}
}

func TestSelectDoesNotReorderInput(t *testing.T) {
	cards := []models.Card{{ID: "a"}, {ID: "b"}}
	Select(cards, 10, Normal{}, true)
	assert.Equal(t, []string{"a", "b"}, ids(cards))
}

func TestNewRepeatUnknownCopiesSet(t *testing.T) {
	src := models.NewIDSet("a")
	m := NewRepeatUnknown(src)
	m.Remaining.Remove("a")

	assert.True(t, src.Has("a"))
	assert.True(t, m.Snapshot.Has("a"))
	assert.Equal(t, KindRepeatUnknown, m.Kind())
	assert.Equal(t, "repeat_unknown", m.Kind().String())
}
