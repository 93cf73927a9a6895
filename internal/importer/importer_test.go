package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordmemo/internal/parser"
	"github.com/example/wordmemo/pkg/models"
)

func TestDecodeText(t *testing.T) {
	result, err := Decode("words.TXT", strings.NewReader("apple\tsa-gwa\n"), DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, "apple\tsa-gwa\n", result.Text)
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode("words.pdf", strings.NewReader(""), DefaultImportConfig())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.False(t, Supported("words.pdf"))
	assert.True(t, Supported("Words.xlsx"))
}

func TestDecodeCSV(t *testing.T) {
	csv := "num,term,meaning\n" +
		"1,apple,sa-gwa\n" +
		",\"big   cat\",\"ho\trang-i\"\n" +
		"3,lonely,\n"
	config := DefaultImportConfig()
	config.NumColumn = "A"
	config.TermColumn = "B"
	config.MeaningColumn = "C"
	config.StartRow = 2

	result, err := Decode("list.csv", strings.NewReader(csv), config)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "1. apple\tsa-gwa\nbig cat\tho rang-i\n", result.Text)
}

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		column string
		want   int
	}{
		{"A", 0},
		{"b", 1},
		{"Z", 25},
		{"AA", 26},
		{"1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, columnToIndex(tt.column))
		})
	}
}

func TestExportedWorkbookImportsBack(t *testing.T) {
	cards := []models.Card{
		{ID: "a", Num: models.IntPtr(3), Term: "apple", Meaning: "sa-gwa", Level: 2, Due: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "b", Term: "banana", Meaning: "ba-na-na"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(cards, &buf))

	config := DefaultImportConfig()
	config.NumColumn = "A"
	config.TermColumn = "B"
	config.MeaningColumn = "C"
	config.StartRow = 2
	result, err := Decode("unknown.xlsx", &buf, config)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)

	parsed := parser.Parse(result.Text, time.Now())
	require.Len(t, parsed.Cards, 2)
	require.NotNil(t, parsed.Cards[0].Num)
	assert.Equal(t, 3, *parsed.Cards[0].Num)
	assert.Equal(t, "apple", parsed.Cards[0].Term)
	assert.Nil(t, parsed.Cards[1].Num)
	assert.Equal(t, "ba-na-na", parsed.Cards[1].Meaning)
}

func TestDecodeXLSXMissingSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(nil, &buf))

	config := DefaultImportConfig()
	config.SheetName = "Nope"
	_, err := Decode("empty.xlsx", &buf, config)
	assert.Error(t, err)
}
