// Package marketdata loads, validates and cleans per-asset price history and
// turns it into the return tables the risk engine consumes.
package marketdata

import (
	"fmt"
	"math"
	"time"
)

// PriceTable is a date-indexed matrix of per-symbol values (prices or returns).
// Rows[i][j] is the value of Symbols[j] on Dates[i]; NaN marks a missing value.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Rows    [][]float64
}

// NewTable allocates a table with every cell missing.
func NewTable(dates []time.Time, symbols []string) *PriceTable {
	rows := make([][]float64, len(dates))
	for i := range rows {
		rows[i] = make([]float64, len(symbols))
		for j := range rows[i] {
			rows[i][j] = math.NaN()
		}
	}
	return &PriceTable{Dates: dates, Symbols: symbols, Rows: rows}
}

// Len returns the number of rows.
func (t *PriceTable) Len() int {
	return len(t.Rows)
}

// Column returns a copy of the j-th column.
func (t *PriceTable) Column(j int) []float64 {
	col := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col
}

// Index returns the column index of symbol, or -1.
func (t *PriceTable) Index(symbol string) int {
	for j, s := range t.Symbols {
		if s == symbol {
			return j
		}
	}
	return -1
}

// Clone returns a deep copy.
func (t *PriceTable) Clone() *PriceTable {
	out := &PriceTable{
		Dates:   append([]time.Time(nil), t.Dates...),
		Symbols: append([]string(nil), t.Symbols...),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}

// Select returns a table restricted to symbols, in the given order.
func (t *PriceTable) Select(symbols []string) (*PriceTable, error) {
	idx := make([]int, len(symbols))
	for k, s := range symbols {
		j := t.Index(s)
		if j < 0 {
			return nil, fmt.Errorf("symbol %s not present", s)
		}
		idx[k] = j
	}

	out := &PriceTable{
		Dates:   append([]time.Time(nil), t.Dates...),
		Symbols: append([]string(nil), symbols...),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = make([]float64, len(idx))
		for k, j := range idx {
			out.Rows[i][k] = row[j]
		}
	}
	return out, nil
}

// Between returns the rows whose date lies in [from, to]. Zero bounds are open.
func (t *PriceTable) Between(from, to time.Time) *PriceTable {
	out := &PriceTable{Symbols: append([]string(nil), t.Symbols...)}
	for i, d := range t.Dates {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Rows = append(out.Rows, append([]float64(nil), t.Rows[i]...))
	}
	return out
}

// Tail returns the last n rows (or all rows when n <= 0 or n >= Len).
func (t *PriceTable) Tail(n int) *PriceTable {
	if n <= 0 || n >= t.Len() {
		return t.Clone()
	}
	start := t.Len() - n
	return &PriceTable{
		Dates:   append([]time.Time(nil), t.Dates[start:]...),
		Symbols: append([]string(nil), t.Symbols...),
		Rows:    cloneRows(t.Rows[start:]),
	}
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
