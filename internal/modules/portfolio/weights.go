package portfolio

import (
	"fmt"
	"math"

	"github.com/aristath/varengine/pkg/formulas"
)

// WeightScheme selects how portfolio weights are derived.
type WeightScheme string

const (
	SchemeEqual      WeightScheme = "equal"
	SchemeMarketCap  WeightScheme = "market_cap"
	SchemeRiskParity WeightScheme = "risk_parity"
	// SchemeCustom marks explicitly supplied weights.
	SchemeCustom WeightScheme = "custom"
)

// normalize maps unknown schemes to equal weighting.
func (s WeightScheme) normalize() WeightScheme {
	switch s {
	case SchemeMarketCap, SchemeRiskParity:
		return s
	default:
		return SchemeEqual
	}
}

func computeWeights(scheme WeightScheme, p *Portfolio) ([]float64, error) {
	n := len(p.assets)

	switch scheme.normalize() {
	case SchemeMarketCap:
		// Latest prices stand in for capitalization.
		if p.lastPrices == nil {
			return nil, fmt.Errorf("market_cap weighting needs prices")
		}
		for j, px := range p.lastPrices {
			if !(px > 0) {
				return nil, fmt.Errorf("market_cap weighting: no positive price for %s", p.assets[j])
			}
		}
		return normalizeWeights(p.lastPrices), nil

	case SchemeRiskParity:
		inv := make([]float64, n)
		for j := range inv {
			vol := formulas.StdDev(p.column(j))
			if vol == 0 || math.IsNaN(vol) {
				return nil, fmt.Errorf("risk_parity weighting: %s has zero volatility", p.assets[j])
			}
			inv[j] = 1 / vol
		}
		return normalizeWeights(inv), nil

	default:
		w := make([]float64, n)
		for j := range w {
			w[j] = 1 / float64(n)
		}
		return w, nil
	}
}

func normalizeWeights(raw []float64) []float64 {
	sum := 0.0
	for _, v := range raw {
		sum += v
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v / sum
	}
	return out
}
