package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var nan = math.NaN()

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// table builds a PriceTable with consecutive dates starting at day(0).
func table(t *testing.T, symbols []string, rows ...[]float64) *PriceTable {
	t.Helper()
	dates := make([]time.Time, len(rows))
	for i := range rows {
		dates[i] = day(i)
	}
	return &PriceTable{Dates: dates, Symbols: symbols, Rows: rows}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
