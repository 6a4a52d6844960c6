package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseCSV reads a wide price file: a header "date,<SYM1>,<SYM2>,..." then one
// row per date. Empty cells and "NaN" are missing values. Rows are sorted by
// date; duplicate dates are rejected.
func ParseCSV(r io.Reader) (*PriceTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty price file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("header must start with date and name at least one symbol")
	}

	table := &PriceTable{Symbols: make([]string, len(header)-1)}
	for j, h := range header[1:] {
		table.Symbols[j] = strings.TrimSpace(h)
		if table.Symbols[j] == "" {
			return nil, fmt.Errorf("empty symbol in header column %d", j+2)
		}
	}

	seen := make(map[time.Time]struct{})
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, record[0])
		}
		if _, dup := seen[date]; dup {
			return nil, fmt.Errorf("line %d: duplicate date %s", line, record[0])
		}
		seen[date] = struct{}{}

		row := make([]float64, len(table.Symbols))
		for j, cell := range record[1:] {
			row[j], err = parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, table.Symbols[j], err)
			}
		}

		table.Dates = append(table.Dates, date)
		table.Rows = append(table.Rows, row)
	}

	sortByDate(table)
	return table, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", cell)
	}
	return v, nil
}

// WriteCSV writes the table in the format ParseCSV reads. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, t *PriceTable) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(append([]string{"date"}, t.Symbols...)); err != nil {
		return err
	}

	record := make([]string, len(t.Symbols)+1)
	for i, row := range t.Rows {
		record[0] = t.Dates[i].Format(dateLayout)
		for j, v := range row {
			if math.IsNaN(v) {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func sortByDate(t *PriceTable) {
	idx := make([]int, len(t.Dates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.Dates[idx[a]].Before(t.Dates[idx[b]]) })

	dates := make([]time.Time, len(idx))
	rows := make([][]float64, len(idx))
	for k, i := range idx {
		dates[k] = t.Dates[i]
		rows[k] = t.Rows[i]
	}
	t.Dates, t.Rows = dates, rows
}

// CSVSource serves prices from a CSV file on disk. The file is re-read on
// every call so that external updates are picked up.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source backed by path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// LoadPrices implements Source.
func (s *CSVSource) LoadPrices(ctx context.Context, symbols []string, from, to time.Time) (*PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	table, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return selectWindow(table, symbols, from, to)
}

// selectWindow restricts a table to symbols and [from, to], dropping rows in
// which none of the selected symbols has a price.
func selectWindow(table *PriceTable, symbols []string, from, to time.Time) (*PriceTable, error) {
	if len(symbols) > 0 {
		var err error
		if table, err = table.Select(symbols); err != nil {
			return nil, err
		}
	}

	windowed := table.Between(from, to)
	out := &PriceTable{Symbols: windowed.Symbols}
	for i, row := range windowed.Rows {
		if allMissing(row) {
			continue
		}
		out.Dates = append(out.Dates, windowed.Dates[i])
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func allMissing(row []float64) bool {
	for _, v := range row {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
