package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/wordmemo/pkg/models"
	"github.com/google/uuid"
)

// ordinalPattern matches a leading "12. ", "3) ", "4: ", "5- " or "6 " ordinal
var ordinalPattern = regexp.MustCompile(`^(\d+)[.):\-]?\s+(.*)$`)

// Result holds the outcome of parsing a word list
type Result struct {
	Cards   []models.Card
	Lines   int // Non-empty lines seen
	Skipped int // Lines without a usable term/meaning pair
}

// Parse converts line-oriented text into new cards due at now.
// Malformed lines are skipped and counted, never reported as errors.
func Parse(text string, now time.Time) *Result {
	result := &Result{Cards: make([]models.Card, 0)}
	due := now.UnixMilli()

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		result.Lines++

		num, term, meaning, ok := ParseLine(line)
		if !ok {
			result.Skipped++
			continue
		}
		result.Cards = append(result.Cards, models.Card{
			ID:      uuid.NewString(),
			Num:     num,
			Term:    term,
			Meaning: meaning,
			Level:   0,
			Due:     due,
		})
	}

	return result
}

// ParseLine splits one trimmed line into its optional ordinal, term and meaning
func ParseLine(line string) (*int, string, string, bool) {
	if m := ordinalPattern.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if term, meaning, ok := splitPair(m[2]); ok {
				return &n, term, meaning, true
			}
		}
	}
	// A leading number may be the term itself ("12 - twelve")
	term, meaning, ok := splitPair(line)
	return nil, term, meaning, ok
}

// splitPair splits on a tab, else " - ", else the first bare hyphen
func splitPair(rest string) (string, string, bool) {
	var term, meaning string
	var found bool

	if term, meaning, found = strings.Cut(rest, "\t"); !found {
		if term, meaning, found = strings.Cut(rest, " - "); !found {
			if term, meaning, found = strings.Cut(rest, "-"); found {
				// Without a spaced separator the remaining hyphens read as word breaks
				meaning = strings.ReplaceAll(meaning, "-", " ")
			}
		}
	}
	if !found {
		return "", "", false
	}

	term = strings.TrimSpace(term)
	meaning = strings.TrimSpace(meaning)
	if term == "" || meaning == "" {
		return "", "", false
	}
	return term, meaning, true
}

// FormatLine renders a card as "[num. ]term<TAB>meaning"
func FormatLine(c models.Card) string {
	var b strings.Builder
	if c.Num != nil {
		b.WriteString(strconv.Itoa(*c.Num))
		b.WriteString(". ")
	}
	b.WriteString(c.Term)
	b.WriteByte('\t')
	b.WriteString(c.Meaning)
	return b.String()
}

// Export renders cards one per line in the word list format
func Export(cards []models.Card) string {
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		lines = append(lines, FormatLine(c))
	}
	return strings.Join(lines, "\n")
}
