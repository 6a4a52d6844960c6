// Package portfolio builds the return matrix, weights and value that the risk
// calculator consumes, and derives descriptive analytics from them.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/risk"
	"gonum.org/v1/gonum/mat"
)

// Portfolio holds aligned per-asset log returns, weights and a market value.
// It implements risk.Portfolio.
type Portfolio struct {
	assets           []string
	dates            []time.Time
	returns          *mat.Dense
	weights          []float64
	portfolioReturns []float64
	value            float64
	scheme           WeightScheme
	lastPrices       []float64 // nil when built from returns
}

var _ risk.Portfolio = (*Portfolio)(nil)

// New builds a portfolio from a price table: log returns are computed, rows
// with any missing return are dropped and weights are assigned by scheme.
func New(prices *marketdata.PriceTable, value float64, scheme WeightScheme) (*Portfolio, error) {
	if prices == nil || len(prices.Symbols) == 0 {
		return nil, fmt.Errorf("price table has no symbols")
	}
	if err := checkValue(value); err != nil {
		return nil, err
	}

	returns, err := marketdata.Returns(prices, marketdata.LogReturns)
	if err != nil {
		return nil, err
	}
	returns = marketdata.DropMissing(returns)
	if returns.Len() == 0 {
		return nil, &risk.InsufficientDataError{Operation: "portfolio returns", Observations: 0, Required: 1}
	}

	p := &Portfolio{
		assets:     append([]string(nil), prices.Symbols...),
		dates:      returns.Dates,
		returns:    mat.NewDense(returns.Len(), len(returns.Symbols), flatten(returns.Rows)),
		value:      value,
		lastPrices: lastPrices(prices),
	}
	if err := p.Rebalance(scheme); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFromReturns builds a portfolio from a T×N return matrix (rows are
// periods) and explicit weights. Weights are used as given.
func NewFromReturns(assets []string, returns [][]float64, weights []float64, value float64) (*Portfolio, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("portfolio has no assets")
	}
	if len(returns) == 0 {
		return nil, &risk.InsufficientDataError{Operation: "portfolio returns", Observations: 0, Required: 1}
	}
	if err := checkValue(value); err != nil {
		return nil, err
	}
	for i, row := range returns {
		if len(row) != len(assets) {
			return nil, fmt.Errorf("return row %d has %d values for %d assets", i, len(row), len(assets))
		}
	}

	p := &Portfolio{
		assets:  append([]string(nil), assets...),
		returns: mat.NewDense(len(returns), len(assets), flatten(returns)),
		value:   value,
		scheme:  SchemeCustom,
	}
	if err := p.SetWeights(weights); err != nil {
		return nil, err
	}
	return p, nil
}

// Assets returns the asset identifiers in column order.
func (p *Portfolio) Assets() []string {
	return append([]string(nil), p.assets...)
}

// Returns returns the T×N return matrix. Callers must not modify it.
func (p *Portfolio) Returns() mat.Matrix {
	return p.returns
}

// Weights returns a copy of the current weights.
func (p *Portfolio) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

// PortfolioReturns returns the weighted return series.
func (p *Portfolio) PortfolioReturns() []float64 {
	return append([]float64(nil), p.portfolioReturns...)
}

// Value returns the portfolio's market value.
func (p *Portfolio) Value() float64 {
	return p.value
}

// Dates returns the return dates, or nil when built from raw returns.
func (p *Portfolio) Dates() []time.Time {
	return p.dates
}

// Periods returns the number of return observations.
func (p *Portfolio) Periods() int {
	r, _ := p.returns.Dims()
	return r
}

// Scheme returns the scheme that produced the current weights.
func (p *Portfolio) Scheme() WeightScheme {
	return p.scheme
}

// SetWeights replaces the weights with an explicit vector.
func (p *Portfolio) SetWeights(weights []float64) error {
	if len(weights) != len(p.assets) {
		return fmt.Errorf("got %d weights for %d assets", len(weights), len(p.assets))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %s is not finite", p.assets[i])
		}
	}
	p.weights = append([]float64(nil), weights...)
	p.scheme = SchemeCustom
	p.updatePortfolioReturns()
	return nil
}

// Rebalance recomputes weights with scheme.
func (p *Portfolio) Rebalance(scheme WeightScheme) error {
	weights, err := computeWeights(scheme, p)
	if err != nil {
		return err
	}
	p.weights = weights
	p.scheme = scheme.normalize()
	p.updatePortfolioReturns()
	return nil
}

func (p *Portfolio) updatePortfolioReturns() {
	rows, _ := p.returns.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(p.returns, mat.NewVecDense(len(p.weights), p.Weights()))
	p.portfolioReturns = out.RawVector().Data
}

func (p *Portfolio) column(j int) []float64 {
	return mat.Col(nil, j, p.returns)
}

func checkValue(value float64) error {
	if !(value > 0) || math.IsInf(value, 0) {
		return fmt.Errorf("portfolio value must be positive and finite, got %v", value)
	}
	return nil
}

func flatten(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// lastPrices returns the most recent non-missing price of each symbol.
func lastPrices(t *marketdata.PriceTable) []float64 {
	out := make([]float64, len(t.Symbols))
	for j := range t.Symbols {
		out[j] = math.NaN()
		for i := t.Len() - 1; i >= 0; i-- {
			if v := t.Rows[i][j]; !math.IsNaN(v) {
				out[j] = v
				break
			}
		}
	}
	return out
}
