package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *PriceTable
		minObs  int
		wantErr string
	}{
		{
			name:    "nil",
			table:   nil,
			minObs:  1,
			wantErr: "empty",
		},
		{
			name:    "no rows",
			table:   &PriceTable{Symbols: []string{"A"}},
			minObs:  1,
			wantErr: "empty",
		},
		{
			name:    "too short",
			table:   table(t, []string{"A"}, []float64{1}, []float64{2}),
			minObs:  3,
			wantErr: "insufficient data",
		},
		{
			name: "too many missing",
			table: table(t, []string{"A", "B"},
				[]float64{1, 1}, []float64{2, nan}, []float64{3, 2}, []float64{4, 3}, []float64{5, 4},
			),
			minObs:  2,
			wantErr: "missing values for B",
		},
		{
			name:    "constant column",
			table:   table(t, []string{"A", "B"}, []float64{1, 5}, []float64{2, 5}, []float64{3, 5}),
			minObs:  2,
			wantErr: "constant values detected for B",
		},
		{
			name:   "valid",
			table:  table(t, []string{"A", "B"}, []float64{1, 5}, []float64{2, 6}, []float64{3, 5}),
			minObs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.table, tt.minObs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
