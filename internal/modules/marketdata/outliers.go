package marketdata

import (
	"fmt"
	"math"

	"github.com/aristath/varengine/pkg/formulas"
)

// OutlierMethod selects the outlier rule.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
)

// DefaultZScoreThreshold flags values more than three deviations from the mean.
const DefaultZScoreThreshold = 3.0

// DetectOutliers flags each value of series.
//
// iqr flags values outside [Q1 - 1.5·IQR, Q3 + 1.5·IQR]; zscore flags
// |x - mean| / std > threshold. NaN values are never flagged.
func DetectOutliers(series []float64, method OutlierMethod, threshold float64) ([]bool, error) {
	flags := make([]bool, len(series))

	present := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return flags, nil
	}

	switch method {
	case OutlierIQR:
		q1 := formulas.Percentile(present, 25)
		q3 := formulas.Percentile(present, 75)
		iqr := q3 - q1
		lower, upper := q1-1.5*iqr, q3+1.5*iqr
		for i, v := range series {
			flags[i] = v < lower || v > upper
		}

	case OutlierZScore:
		mean, std := formulas.Mean(present), formulas.StdDev(present)
		if std == 0 {
			return flags, nil
		}
		for i, v := range series {
			flags[i] = math.Abs(v-mean)/std > threshold
		}

	default:
		return nil, fmt.Errorf("unknown outlier method %q", method)
	}
	return flags, nil
}
