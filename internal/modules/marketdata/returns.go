package marketdata

import (
	"fmt"

	"github.com/aristath/varengine/pkg/formulas"
)

// ReturnMethod selects how prices become returns.
type ReturnMethod string

const (
	LogReturns    ReturnMethod = "log"
	SimpleReturns ReturnMethod = "simple"

	// ContinuousReturns is an alias for LogReturns.
	ContinuousReturns ReturnMethod = "continuous"
)

// Returns converts a price table to a return table. The first date is
// dropped; a missing price yields a missing return on both sides of it.
func Returns(prices *PriceTable, method ReturnMethod) (*PriceTable, error) {
	var convert func([]float64) []float64
	switch method {
	case LogReturns, ContinuousReturns, "":
		convert = formulas.LogReturns
	case SimpleReturns:
		convert = formulas.SimpleReturns
	default:
		return nil, fmt.Errorf("unknown return method %q", method)
	}

	if prices.Len() < 2 {
		return &PriceTable{Symbols: append([]string(nil), prices.Symbols...)}, nil
	}

	out := NewTable(append(prices.Dates[:0:0], prices.Dates[1:]...), append([]string(nil), prices.Symbols...))
	for j := range prices.Symbols {
		for i, r := range convert(prices.Column(j)) {
			out.Rows[i][j] = r
		}
	}
	return out, nil
}
