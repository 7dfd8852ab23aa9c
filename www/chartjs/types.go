package chartjs

type Chart struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Type            string     `json:"type,omitempty"`
	Label           string     `json:"label,omitempty"`
	Data            []*float64 `json:"data"`
	BackgroundColor []string   `json:"backgroundColor,omitempty"`
	BorderWidth     int        `json:"borderWidth"`
	BorderColor     string     `json:"borderColor,omitempty"`
	BorderDash      []int      `json:"borderDash,omitempty"`
	PointRadius     *int       `json:"pointRadius,omitempty"`
	Fill            bool       `json:"fill"`
	Order           int        `json:"order,omitempty"`
}

type ChartOptions struct {
	Responsive bool                  `json:"responsive"`
	Animation  bool                  `json:"animation"`
	Plugins    ChartPlugins          `json:"plugins"`
	Scales     map[string]ChartScale `json:"scales"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
	Title  ChartTitle  `json:"title"`
}

type ChartLegend struct {
	Display bool `json:"display"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type ChartScale struct {
	Type    string          `json:"type,omitempty"`
	Display bool            `json:"display"`
	Title   ChartScaleTitle `json:"title,omitempty"`
}

type ChartScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color,omitempty"`
}
