package portfolio

import (
	"math"
	"time"

	"github.com/aristath/varengine/pkg/formulas"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRollingWindow is the rolling volatility window in periods.
const DefaultRollingWindow = 30

// Performance summarizes the weighted return series.
type Performance struct {
	TotalReturn          float64 `json:"total_return" msgpack:"total_return"`
	AnnualizedReturn     float64 `json:"annualized_return" msgpack:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility" msgpack:"annualized_volatility"`
	Skewness             float64 `json:"skewness" msgpack:"skewness"`
	Kurtosis             float64 `json:"kurtosis" msgpack:"kurtosis"`
}

// RollingPoint is one value of a rolling series. Date is nil when the
// portfolio was built from raw returns.
type RollingPoint struct {
	Date  *time.Time `json:"date,omitempty" msgpack:"date,omitempty"`
	Value float64   `json:"value" msgpack:"value"`
}

// Analytics is the data behind the usual risk dashboard charts.
type Analytics struct {
	Performance       Performance                   `json:"performance" msgpack:"performance"`
	AssetVolatility   map[string]float64            `json:"asset_volatility" msgpack:"asset_volatility"`
	RollingVolatility []RollingPoint                `json:"rolling_volatility" msgpack:"rolling_volatility"`
	Correlation       map[string]map[string]float64 `json:"correlation" msgpack:"correlation"`
	Weights           map[string]float64            `json:"weights" msgpack:"weights"`
	Window            int                           `json:"window" msgpack:"window"`
}

// PerformanceMetrics computes return and shape statistics of the portfolio.
// Kurtosis is excess kurtosis.
func (p *Portfolio) PerformanceMetrics() Performance {
	r := p.portfolioReturns
	return Performance{
		TotalReturn:          formulas.TotalReturn(r),
		AnnualizedReturn:     formulas.AnnualizedReturn(r),
		AnnualizedVolatility: formulas.AnnualizedVolatility(r),
		Skewness:             finiteOrZero(formulas.Skewness(r)),
		Kurtosis:             finiteOrZero(formulas.ExcessKurtosis(r)),
	}
}

// CorrelationMatrix returns the Pearson correlation of asset returns.
func (p *Portfolio) CorrelationMatrix() *mat.SymDense {
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, p.returns, nil)
	return &corr
}

// Analytics assembles performance, per-asset volatility, the rolling
// annualized volatility of the portfolio and the correlation table.
// A window below 2 selects DefaultRollingWindow.
func (p *Portfolio) Analytics(window int) Analytics {
	if window < 2 {
		window = DefaultRollingWindow
	}

	out := Analytics{
		Performance:     p.PerformanceMetrics(),
		AssetVolatility: make(map[string]float64, len(p.assets)),
		Correlation:     make(map[string]map[string]float64, len(p.assets)),
		Weights:         make(map[string]float64, len(p.assets)),
		Window:          window,
	}

	for j, a := range p.assets {
		out.AssetVolatility[a] = formulas.AnnualizedVolatility(p.column(j))
		out.Weights[a] = p.weights[j]
	}

	if p.Periods() >= 2 {
		corr := p.CorrelationMatrix()
		for i, a := range p.assets {
			out.Correlation[a] = make(map[string]float64, len(p.assets))
			for j, b := range p.assets {
				out.Correlation[a][b] = finiteOrZero(corr.At(i, j))
			}
		}
	}

	rolling := formulas.RollingAnnualizedVolatility(p.portfolioReturns, window)
	out.RollingVolatility = make([]RollingPoint, len(rolling))
	for i, v := range rolling {
		out.RollingVolatility[i].Value = v
		if p.dates != nil {
			d := p.dates[i+window-1]
			out.RollingVolatility[i].Date = &d
		}
	}
	return out
}

// finiteOrZero reports shape statistics of a constant series as 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
