package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/varengine/pkg/formulas"
)

// Bounds on the fitted degrees of freedom. Above maxNu the t is numerically
// indistinguishable from the normal.
const (
	minNu = 0.5
	maxNu = 1e4
)

// StudentTParams is a location-scale Student-t distribution.
type StudentTParams struct {
	Nu    float64 `json:"nu"`
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Distribution returns the gonum distribution for the parameters.
func (p StudentTParams) Distribution() distuv.StudentsT {
	return distuv.StudentsT{Mu: p.Mu, Sigma: p.Sigma, Nu: p.Nu}
}

// FitStudentT fits ν, μ and σ by maximum likelihood.
//
// The series is standardized first so the simplex works on unit-scale
// parameters (μ, log σ, log ν); the estimate is mapped back afterwards.
func FitStudentT(x []float64) (StudentTParams, error) {
	if len(x) < 2 {
		return StudentTParams{}, insufficient("student-t fit", len(x), 2)
	}
	mean, std := stat.MeanStdDev(x, nil)
	if !(std > dispersionTolerance) {
		return StudentTParams{}, degenerate("student-t fit", "return series has zero variance")
	}

	z := make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - mean) / std
	}

	nu0 := 30.0
	if exk := formulas.ExcessKurtosis(z); exk > 0 {
		nu0 = clamp(4+6/exk, 2.5, 200)
	}
	sigma0 := math.Sqrt((nu0 - 2) / nu0)

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			dist := distuv.StudentsT{
				Mu:    p[0],
				Sigma: math.Exp(p[1]),
				Nu:    clamp(math.Exp(p[2]), minNu, maxNu),
			}
			ll := 0.0
			for _, v := range z {
				ll += dist.LogProb(v)
			}
			if math.IsNaN(ll) {
				return math.Inf(1)
			}
			return -ll
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 20000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, []float64{0, math.Log(sigma0), math.Log(nu0)}, settings, &optimize.NelderMead{})
	if result == nil {
		return StudentTParams{}, fmt.Errorf("student-t fit: %w", err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return StudentTParams{}, fmt.Errorf("student-t fit did not converge (status %v): %v", result.Status, err)
		}
	}

	return StudentTParams{
		Nu:    clamp(math.Exp(result.X[2]), minNu, maxNu),
		Mu:    mean + std*result.X[0],
		Sigma: std * math.Exp(result.X[1]),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
