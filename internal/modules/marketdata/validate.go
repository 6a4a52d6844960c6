package marketdata

import (
	"fmt"
	"math"

	"github.com/aristath/varengine/pkg/formulas"
)

// DefaultMinObservations is the history length required before a table is
// considered usable for risk estimation.
const DefaultMinObservations = 100

// maxMissingFraction is the share of missing values tolerated per column.
const maxMissingFraction = 0.1

// ValidationError describes why a table is unusable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "data validation failed: " + e.Reason
}

// Validate checks that the table is non-empty, long enough, not missing more
// than 10% of any column and has no constant column.
func Validate(t *PriceTable, minObservations int) error {
	if t == nil || t.Len() == 0 || len(t.Symbols) == 0 {
		return &ValidationError{Reason: "data is empty"}
	}
	if t.Len() < minObservations {
		return &ValidationError{Reason: fmt.Sprintf("insufficient data: %d observations (minimum: %d)", t.Len(), minObservations)}
	}

	for j, symbol := range t.Symbols {
		col := t.Column(j)
		present := col[:0:0]
		for _, v := range col {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}

		missing := float64(len(col)-len(present)) / float64(len(col))
		if missing > maxMissingFraction {
			return &ValidationError{Reason: fmt.Sprintf("excessive missing values for %s (%.1f%%)", symbol, missing*100)}
		}
		if len(present) > 0 && formulas.IsConstant(present) {
			return &ValidationError{Reason: fmt.Sprintf("constant values detected for %s", symbol)}
		}
	}
	return nil
}
