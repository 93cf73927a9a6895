package importer

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files whose extension is not a known word list format
var ErrUnsupportedFormat = errors.New("unsupported word list format")

// ImportConfig defines which columns of a table hold the word pair
type ImportConfig struct {
	TermColumn    string // Column with the term
	MeaningColumn string // Column with the meaning
	NumColumn     string // Optional column with the card number
	SheetName     string // Sheet to import, the first sheet when empty
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:    "A",
		MeaningColumn: "B",
		StartRow:      1,
	}
}

// ImportResult holds the decoded word list text
type ImportResult struct {
	Text    string
	Rows    int
	Skipped int
}

// Supported reports whether name has an extension Decode understands
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".tsv", ".csv", ".xlsx":
		return true
	}
	return false
}

// Decode turns the file called name into word list text. Plain text passes through,
// tables are converted to one "term<TAB>meaning" line per row.
func Decode(name string, r io.Reader, config ImportConfig) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".tsv":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read text file")
		}
		return &ImportResult{Text: string(data)}, nil
	case ".csv":
		return importFromCSV(r, config)
	case ".xlsx":
		return importFromExcel(r, config)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "file %s", name)
	}
}

// importFromExcel reads rows from an Excel workbook
func importFromExcel(r io.Reader, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &ImportResult{}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get rows of sheet %s", sheet)
	}
	return rowsToText(rows, config), nil
}

// importFromCSV reads rows from a CSV file
func importFromCSV(r io.Reader, config ImportConfig) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV")
		}
		rows = append(rows, row)
	}
	return rowsToText(rows, config), nil
}

func rowsToText(rows [][]string, config ImportConfig) *ImportResult {
	result := &ImportResult{}
	var b bytes.Buffer
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.Rows++

		term := cell(row, config.TermColumn)
		meaning := cell(row, config.MeaningColumn)
		if term == "" || meaning == "" {
			result.Skipped++
			continue
		}
		if num, err := strconv.Atoi(cell(row, config.NumColumn)); err == nil && num >= 0 {
			b.WriteString(strconv.Itoa(num))
			b.WriteString(". ")
		}
		b.WriteString(term)
		b.WriteByte('\t')
		b.WriteString(meaning)
		b.WriteByte('\n')
	}
	result.Text = b.String()
	return result
}

// cell returns the trimmed value of column in row with tabs and newlines flattened
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.Join(strings.Fields(row[idx]), " ")
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
