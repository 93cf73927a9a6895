package parser

import (
	"testing"
	"time"

	"github.com/example/wordmemo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseTime = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

type triple struct {
	num     *int
	term    string
	meaning string
}

func triples(cards []models.Card) []triple {
	out := make([]triple, 0, len(cards))
	for _, c := range cards {
		out = append(out, triple{c.Num, c.Term, c.Meaning})
	}
	return out
}

func TestParseMixedSeparators(t *testing.T) {
	text := "1. apple\tsa-gwa\n2. banana - ba-na-na\nmalformed-line-no-sep-but-has-hyphen"

	result := Parse(text, parseTime)

	require.Len(t, result.Cards, 3)
	assert.Equal(t, []triple{
		{models.IntPtr(1), "apple", "sa-gwa"},
		{models.IntPtr(2), "banana", "ba-na-na"},
		{nil, "malformed", "line no sep but has hyphen"},
	}, triples(result.Cards))
	assert.Equal(t, 3, result.Lines)
	assert.Equal(t, 0, result.Skipped)
}

func TestParseNewCards(t *testing.T) {
	result := Parse("cat\tgo-yang-i\ndog\tgae", parseTime)

	require.Len(t, result.Cards, 2)
	assert.NotEqual(t, result.Cards[0].ID, result.Cards[1].ID)
	for _, c := range result.Cards {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, 0, c.Level)
		assert.Equal(t, parseTime.UnixMilli(), c.Due)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   triple
		wantOK bool
	}{
		{"tab", "hello\tannyeong", triple{nil, "hello", "annyeong"}, true},
		{"spaced hyphen", "sun - hae", triple{nil, "sun", "hae"}, true},
		{"tab wins over spaced hyphen", "a - b\tc", triple{nil, "a - b", "c"}, true},
		{"paren ordinal", "3) moon\tdal", triple{models.IntPtr(3), "moon", "dal"}, true},
		{"colon ordinal", "4: star - byeol", triple{models.IntPtr(4), "star", "byeol"}, true},
		{"hyphen ordinal", "5- tree\tnamu", triple{models.IntPtr(5), "tree", "namu"}, true},
		{"bare ordinal", "6 rain\tbi", triple{models.IntPtr(6), "rain", "bi"}, true},
		{"number as term", "12 - twelve", triple{nil, "12", "twelve"}, true},
		{"ordinal needs whitespace", "7.snow\tnun", triple{nil, "7.snow", "nun"}, true},
		{"no separator", "justoneword", triple{}, false},
		{"empty meaning", "word\t", triple{}, false},
		{"empty term", " - meaning", triple{}, false},
		{"ordinal only", "8.", triple{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, term, meaning, ok := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, triple{num, term, meaning})
			}
		})
	}
}

func TestParseSkipsMalformed(t *testing.T) {
	result := Parse("\n  \nnothing here\r\nok\tfine\r\n\t\n", parseTime)

	assert.Equal(t, 2, result.Lines)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "ok", result.Cards[0].Term)
}

func TestExportRoundTrip(t *testing.T) {
	text := "1. apple\tsa-gwa\n2. banana - ba-na-na\nmalformed-line-no-sep-but-has-hyphen\n" +
		"12 - twelve\n3) a - b\tc\td\nplain\tmeaning with  spaces"

	first := Parse(text, parseTime)
	second := Parse(Export(first.Cards), parseTime)

	assert.Equal(t, triples(first.Cards), triples(second.Cards))
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "9. sky\thaneul", FormatLine(models.Card{Num: models.IntPtr(9), Term: "sky", Meaning: "haneul"}))
	assert.Equal(t, "sea\tbada", FormatLine(models.Card{Term: "sea", Meaning: "bada"}))
}
