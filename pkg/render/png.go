package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"trends-dashboard/pkg/trends"
)

// ErrTooFewPoints is returned when no line has the two points a PNG
// chart needs.
var ErrTooFewPoints = errors.New("no line has enough points to draw")

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
}

// SeriesPNG draws the series as a PNG line chart. Gaps are skipped.
func SeriesPNG(series *trends.Series, title string) ([]byte, error) {
	if series.Empty() {
		return nil, fmt.Errorf("no data to draw")
	}

	var lines []chart.Series
	n := 0
	for _, col := range series.Columns {
		if col.Name == trends.PartialColumn {
			continue
		}
		var xs []time.Time
		var ys []float64
		for i, v := range col.Values {
			if i >= len(series.Index) || trends.Missing(v) {
				continue
			}
			xs = append(xs, series.Index[i])
			ys = append(ys, v)
		}
		// go-chart needs at least two points per line
		if len(xs) < 2 {
			continue
		}
		lines = append(lines, chart.TimeSeries{
			Name:    col.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: palette[n%len(palette)],
				StrokeWidth: 2,
			},
		})
		n++
	}
	if len(lines) == 0 {
		return nil, ErrTooFewPoints
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Interest",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}
