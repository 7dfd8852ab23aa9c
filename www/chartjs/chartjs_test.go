package chartjs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBarChartWithReferenceLine(t *testing.T) {
	chart := NewBarChart("", []string{"00:00", "00:30", "01:00"}).WithReferenceLine("SVT", 25.76)

	require.Len(t, chart.Data.Datasets, 2)
	bars := chart.Data.Datasets[0]
	assert.Len(t, bars.Data, 3)
	assert.Len(t, bars.BackgroundColor, 3)

	line := chart.Data.Datasets[1]
	assert.Equal(t, "line", line.Type)
	assert.Equal(t, "SVT", line.Label)
	assert.NotEmpty(t, line.BorderDash)
	for _, v := range line.Data {
		require.NotNil(t, v)
		assert.InDelta(t, 25.76, *v, 1e-9)
	}

	raw, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"borderDash":[6,4]`)
	assert.Contains(t, string(raw), `"pointRadius":0`)
	assert.NotContains(t, string(raw), `"min":`)
	assert.NotContains(t, string(raw), `"max":`)
}

func TestFixedFloat64(t *testing.T) {
	tests := []struct {
		in        float64
		precision int
		want      float64
	}{
		{12.3456, 2, 12.35},
		{-1.004, 2, -1.0},
		{7, 0, 7},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, *FixedFloat64(tt.in, tt.precision), 1e-9)
	}
}
