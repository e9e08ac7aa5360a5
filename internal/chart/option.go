// Package chart turns declarative chart options into SVG documents.
//
// A chart lives in a named container. Init binds a new Instance to the
// container, SetOption renders into it and Dispose releases it. A renderer
// never holds two live instances for the same container.
package chart

// SeriesType selects how a series is drawn.
type SeriesType string

const (
	SeriesPie  SeriesType = "pie"
	SeriesLine SeriesType = "line"
)

// DataPoint is one value of a series. Name labels pie slices.
type DataPoint struct {
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value"`
}

// Series is one data series of an Option.
type Series struct {
	Name   string      `json:"name"`
	Type   SeriesType  `json:"type"`
	Data   []DataPoint `json:"data"`
	Smooth bool        `json:"smooth,omitempty"`
	Radius string      `json:"radius,omitempty"`
}

// Option is the declarative description of a chart.
type Option struct {
	Title   string   `json:"title"`
	Tooltip string   `json:"tooltip,omitempty"` // "item" or "axis"
	Legend  []string `json:"legend,omitempty"`
	XAxis   []string `json:"xAxis,omitempty"`
	YAxis   string   `json:"yAxis,omitempty"`
	Series  []Series `json:"series"`
}

// Empty reports whether the option has nothing positive to draw.
func (o Option) Empty() bool {
	for _, s := range o.Series {
		for _, p := range s.Data {
			if s.Type == SeriesLine || p.Value > 0 {
				return false
			}
		}
	}
	return true
}
