package marketdata

import (
	"context"
	"time"
)

// dateLayout is the on-disk date format for CSV price files.
const dateLayout = "2006-01-02"

// Source loads aligned daily close prices.
//
// The returned table has one column per requested symbol (in request order)
// and one row per date on which at least one symbol has a price. Zero
// from/to bounds are open.
type Source interface {
	LoadPrices(ctx context.Context, symbols []string, from, to time.Time) (*PriceTable, error)
}

// truncateDay normalizes a time to UTC midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
