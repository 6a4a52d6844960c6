package marketdata

import (
	"fmt"
	"math"
)

// CleanMethod selects how missing values are handled.
type CleanMethod string

const (
	CleanDrop        CleanMethod = "drop"
	CleanForwardFill CleanMethod = "forward_fill"
	CleanInterpolate CleanMethod = "interpolate"
)

// ParseCleanMethod maps a name to a method; empty selects drop.
func ParseCleanMethod(name string) (CleanMethod, error) {
	switch m := CleanMethod(name); m {
	case "":
		return CleanDrop, nil
	case CleanDrop, CleanForwardFill, CleanInterpolate:
		return m, nil
	default:
		return "", fmt.Errorf("unknown clean method %q", name)
	}
}

// Clean returns a copy of the table with missing values handled by method.
//
// Forward fill and interpolation leave leading gaps (and, for interpolation,
// trailing gaps) in place, so callers typically follow them with a drop.
func Clean(t *PriceTable, method CleanMethod) *PriceTable {
	switch method {
	case CleanForwardFill:
		return forwardFill(t)
	case CleanInterpolate:
		return interpolate(t)
	default:
		return DropMissing(t)
	}
}

// DropMissing removes every row with at least one missing value.
func DropMissing(t *PriceTable) *PriceTable {
	out := &PriceTable{Symbols: append([]string(nil), t.Symbols...)}
	for i, row := range t.Rows {
		if hasMissing(row) {
			continue
		}
		out.Dates = append(out.Dates, t.Dates[i])
		out.Rows = append(out.Rows, append([]float64(nil), row...))
	}
	return out
}

func forwardFill(t *PriceTable) *PriceTable {
	out := t.Clone()
	for j := range out.Symbols {
		last := math.NaN()
		for i := range out.Rows {
			if math.IsNaN(out.Rows[i][j]) {
				out.Rows[i][j] = last
			} else {
				last = out.Rows[i][j]
			}
		}
	}
	return out
}

// interpolate fills interior gaps linearly in row position.
func interpolate(t *PriceTable) *PriceTable {
	out := t.Clone()
	for j := range out.Symbols {
		prev := -1
		for i := range out.Rows {
			if math.IsNaN(out.Rows[i][j]) {
				continue
			}
			if prev >= 0 && i-prev > 1 {
				lo, hi := out.Rows[prev][j], out.Rows[i][j]
				for k := prev + 1; k < i; k++ {
					frac := float64(k-prev) / float64(i-prev)
					out.Rows[k][j] = lo + frac*(hi-lo)
				}
			}
			prev = i
		}
	}
	return out
}

func hasMissing(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
