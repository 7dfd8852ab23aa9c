package chartjs

import (
	"math"
)

const (
	ColorCurrent        = "#2196f3"
	ColorPast           = "#9e9e9e"
	ColorPastNegative   = "#a5d6a7"
	ColorFuture         = "#000000"
	ColorFutureNegative = "#1b5e20"
	ColorReference      = "#f44336d4"
)

// NewBarChart returns a bar chart with one bar per label and an empty
// colour per bar. Callers fill Data and BackgroundColor of dataset 0.
func NewBarChart(title string, labels []string) Chart {
	chart := Chart{
		Type: "bar",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{
				{
					Type:            "bar",
					Label:           "Price",
					Data:            make([]*float64, len(labels)),
					BackgroundColor: make([]string, len(labels)),
					BorderWidth:     0,
					Order:           2,
				},
			},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: false},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				"x": {Display: true},
				"y": {Type: "linear", Display: true},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

// WithReferenceLine adds a dashed horizontal line at value across all bars.
func (c Chart) WithReferenceLine(label string, value float64) Chart {
	data := make([]*float64, len(c.Data.Labels))
	for i := range data {
		data[i] = FixedFloat64(value, 2)
	}
	noPoints := 0
	c.Data.Datasets = append(c.Data.Datasets, ChartDataset{
		Type:        "line",
		Label:       label,
		Data:        data,
		BorderWidth: 1,
		BorderColor: ColorReference,
		BorderDash:  []int{6, 4},
		PointRadius: &noPoints,
		Order:       1,
	})
	return c
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title = ChartScaleTitle{Display: true, Text: title}
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
