// Package render turns trends data into charts, tables and images.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"trends-dashboard/pkg/trends"
)

const dateLayout = "2006-01-02"

// ChartOptions sizes the interest-over-time chart.
type ChartOptions struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Chart is an interest-over-time line chart, one line per term.
type Chart struct {
	Title  string   `json:"title"`
	Terms  []string `json:"terms"`
	Points int      `json:"points"`
	Width  int      `json:"width"`
	Height int      `json:"height"`

	line *charts.Line
}

// LineChart builds a chart keyed by date. It returns nil for an empty series;
// callers show a "no data" notice instead.
func LineChart(series *trends.Series, title string, o ChartOptions) *Chart {
	if series.Empty() {
		return nil
	}
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 450
	}

	dates := make([]string, len(series.Index))
	for i, ts := range series.Index {
		dates[i] = ts.Format(dateLayout)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Width:           fmt.Sprintf("%dpx", o.Width),
			Height:          fmt.Sprintf("%dpx", o.Height),
			BackgroundColor: "#FFFFFF",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Interest over time (0-100)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Interest", Min: 0, Max: 100}),
	)
	line.SetXAxis(dates)

	var terms []string
	for _, col := range series.Columns {
		if col.Name == trends.PartialColumn {
			continue
		}
		terms = append(terms, col.Name)
		data := make([]opts.LineData, len(col.Values))
		for i, v := range col.Values {
			if trends.Missing(v) {
				// echarts draws "-" as a gap
				data[i] = opts.LineData{Value: "-"}
				continue
			}
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(col.Name, data)
	}

	return &Chart{
		Title:  title,
		Terms:  terms,
		Points: len(dates),
		Width:  o.Width,
		Height: o.Height,
		line:   line,
	}
}

// Render writes the chart as a standalone HTML document.
func (c *Chart) Render(w io.Writer) error {
	if c == nil || c.line == nil {
		return fmt.Errorf("chart is empty")
	}
	return c.line.Render(w)
}

// HTML renders the chart into a string.
func (c *Chart) HTML() (string, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
