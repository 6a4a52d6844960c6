package risk

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// testPortfolio is a fixed in-memory portfolio.
type testPortfolio struct {
	assets  []string
	returns *mat.Dense
	weights []float64
	value   float64
}

func (p *testPortfolio) Assets() []string    { return p.assets }
func (p *testPortfolio) Returns() mat.Matrix { return p.returns }
func (p *testPortfolio) Weights() []float64  { return p.weights }
func (p *testPortfolio) Value() float64      { return p.value }

func (p *testPortfolio) PortfolioReturns() []float64 {
	rows, cols := p.returns.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i] += p.returns.At(i, j) * p.weights[j]
		}
	}
	return out
}

func newTestPortfolio(assets []string, rows [][]float64, weights []float64, value float64) *testPortfolio {
	data := make([]float64, 0, len(rows)*len(assets))
	for _, r := range rows {
		data = append(data, r...)
	}
	return &testPortfolio{
		assets:  assets,
		returns: mat.NewDense(len(rows), len(assets), data),
		weights: weights,
		value:   value,
	}
}

// gaussianReturns draws i.i.d. normal returns for n assets from a seeded generator.
func gaussianReturns(seed uint64, periods int, sigmas []float64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	rows := make([][]float64, periods)
	for i := range rows {
		rows[i] = make([]float64, len(sigmas))
		for j, s := range sigmas {
			rows[i][j] = rng.NormFloat64()*s + 0.0003
		}
	}
	return rows
}

// orthogonalPattern builds two zero-mean, uncorrelated assets whose squared
// returns are constant, so the EWMA covariance is known in closed form.
// Equal weights give a portfolio standard deviation of sigma.
func orthogonalPattern(periods int, sigma float64) [][]float64 {
	a := sigma * math.Sqrt2
	s := []float64{1, 1, -1, -1}
	u := []float64{1, -1, 1, -1}
	rows := make([][]float64, periods)
	for i := range rows {
		rows[i] = []float64{a * s[i%4], a * u[i%4]}
	}
	return rows
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Simulations = 5000
	cfg.BootstrapDraws = 200
	return cfg
}
