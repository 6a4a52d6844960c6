package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Portfolio is the read-only view of portfolio state the calculator consumes.
// Columns of Returns, entries of Weights and Assets share one ordering.
type Portfolio interface {
	Assets() []string
	Returns() mat.Matrix
	Weights() []float64
	PortfolioReturns() []float64
	Value() float64
}

// ValidatePortfolio checks the shape invariants of a portfolio and that it
// carries at least minObservations periods.
func ValidatePortfolio(p Portfolio, minObservations int) error {
	if p == nil {
		return fmt.Errorf("portfolio is nil")
	}

	assets := p.Assets()
	if len(assets) == 0 {
		return fmt.Errorf("portfolio has no assets")
	}

	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if _, dup := seen[a]; dup {
			return fmt.Errorf("duplicate asset %q", a)
		}
		seen[a] = struct{}{}
	}

	weights := p.Weights()
	if len(weights) != len(assets) {
		return fmt.Errorf("weights length %d does not match %d assets", len(weights), len(assets))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %s is not finite", assets[i])
		}
	}

	value := p.Value()
	if !(value > 0) || math.IsInf(value, 0) {
		return fmt.Errorf("portfolio value must be positive and finite, got %v", value)
	}

	returns := p.Returns()
	if returns == nil {
		return insufficient("portfolio", 0, minObservations)
	}
	rows, cols := returns.Dims()
	if cols != len(assets) {
		return fmt.Errorf("returns have %d columns for %d assets", cols, len(assets))
	}
	if rows < minObservations {
		return insufficient("portfolio", rows, minObservations)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := returns.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("return for %s at row %d is not finite", assets[j], i)
			}
		}
	}

	if n := len(p.PortfolioReturns()); n != rows {
		return fmt.Errorf("portfolio return series has %d periods, returns have %d", n, rows)
	}
	return nil
}
