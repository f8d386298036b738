package ragger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var recordColumns = []string{"first_name", "last_name", "email", "role", "salary"}

// LoadResult holds the records parsed from a file in row order and the number
// of rows that were skipped because they did not match the schema.
type LoadResult struct {
	Records []Record
	Dropped int
}

// LoadRecords reads employee records from a CSV or XLSX file. Malformed rows
// are dropped silently; only an unreadable file is an error.
func LoadRecords(path string) (*LoadResult, error) {
	log := zap.L().With(
		zap.String("action", "load_records"),
		zap.String("path", path),
	)

	var (
		result *LoadResult
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		result, err = loadXLSX(path)
	default:
		result, err = loadCSV(path)
	}

	if err != nil {
		return nil, err
	}

	log.Info("records loaded",
		zap.Int("count", len(result.Records)),
		zap.Int("dropped", result.Dropped),
	)

	return result, nil
}

func loadCSV(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRecords(f)
}

// ReadRecords parses CSV content with a header row.
func ReadRecords(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &LoadResult{Records: []Record{}}, nil
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := columnIndex(header)
	width := len(header)
	result := &LoadResult{Records: make([]Record, 0)}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Dropped++
				continue
			}

			return nil, err
		}

		result.add(row, columns, width)
	}

	return result, nil
}

func loadXLSX(path string) (*LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &LoadResult{Records: []Record{}}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}

	result := &LoadResult{Records: make([]Record, 0)}
	if len(rows) == 0 {
		return result, nil
	}

	columns := columnIndex(rows[0])
	width := len(rows[0])
	for _, row := range rows[1:] {
		// excelize trims trailing empty cells
		for len(row) < width {
			row = append(row, "")
		}

		result.add(row, columns, width)
	}

	return result, nil
}

func (result *LoadResult) add(row []string, columns []int, width int) {
	if len(row) != width {
		result.Dropped++
		return
	}

	fields := make([]string, len(columns))
	for i, col := range columns {
		fields[i] = row[col]
	}

	record, err := ParseRecord(fields)
	if err != nil {
		result.Dropped++
		return
	}

	result.Records = append(result.Records, record)
}

// columnIndex maps each schema column to its position in the header. Extra
// columns are ignored; a header missing any schema name falls back to
// positional order.
func columnIndex(header []string) []int {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columns := make([]int, len(recordColumns))
	for i, name := range recordColumns {
		pos, ok := positions[name]
		if !ok {
			for j := range columns {
				columns[j] = j
			}

			return columns
		}

		columns[i] = pos
	}

	return columns
}
