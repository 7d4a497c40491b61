package render

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-dashboard/pkg/trends"
)

func sampleSeries() *trends.Series {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := &trends.Series{}
	for i := 0; i < 12; i++ {
		s.Index = append(s.Index, start.AddDate(0, i, 0))
	}
	cats := make([]float64, 12)
	dogs := make([]float64, 12)
	for i := range cats {
		cats[i] = float64(10 + i*5)
		dogs[i] = float64(90 - i*5)
	}
	dogs[3] = math.NaN()
	s.Columns = []trends.Column{{Name: "cats", Values: cats}, {Name: "dogs", Values: dogs}}
	return s
}

func TestFormatIncrease(t *testing.T) {
	assert.Equal(t, "Breakout", FormatIncrease(trends.RisingQuery{Query: "cat meme", Increase: 4350, Breakout: true}))
	assert.Equal(t, "250% increase", FormatIncrease(trends.RisingQuery{Query: "cat hotel", Increase: 250}))
	assert.Equal(t, "0% increase", FormatIncrease(trends.RisingQuery{Query: "cat"}))
}

func TestRisingRows_Limit(t *testing.T) {
	var rising []trends.RisingQuery
	for i := 0; i < 30; i++ {
		rising = append(rising, trends.RisingQuery{Query: "q", Increase: i, Breakout: i == 0})
	}

	rows := RisingRows(rising, 0)
	require.Len(t, rows, DefaultRisingLimit)
	assert.Equal(t, RisingRow{Query: "q", Increase: "Breakout", Breakout: true}, rows[0])
	assert.Equal(t, "1% increase", rows[1].Increase)

	assert.Len(t, RisingRows(rising, 5), 5)
	assert.Empty(t, RisingRows(nil, 10))
}

func TestRisingTable(t *testing.T) {
	out := RisingTable("cats", []RisingRow{
		{Query: "cat meme", Increase: "Breakout", Breakout: true},
		{Query: "cat hotel", Increase: "250% increase"},
	})
	assert.Contains(t, out, "Rising queries: cats")
	assert.Contains(t, out, "cat meme")
	assert.Contains(t, out, "Breakout")
	assert.Contains(t, out, "250% increase")

	assert.Contains(t, RisingTable("dogs", nil), "no rising queries")
}

func TestLineChart(t *testing.T) {
	assert.Nil(t, LineChart(&trends.Series{}, "empty", ChartOptions{}))

	c := LineChart(sampleSeries(), "United States", ChartOptions{})
	require.NotNil(t, c)
	assert.Equal(t, []string{"cats", "dogs"}, c.Terms)
	assert.Equal(t, 12, c.Points)

	html, err := c.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "2024-01-01")
	assert.Contains(t, html, `"-"`)
	assert.True(t, strings.Contains(html, "cats") && strings.Contains(html, "dogs"))
}

func TestChartRenderNil(t *testing.T) {
	var c *Chart
	assert.Error(t, c.Render(&bytes.Buffer{}))
}

func TestSeriesPNG(t *testing.T) {
	b, err := SeriesPNG(sampleSeries(), "United States")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())

	_, err = SeriesPNG(&trends.Series{}, "empty")
	assert.Error(t, err)
}

func TestLineChart_AllGapsIsNoData(t *testing.T) {
	s := &trends.Series{
		Index:   []time.Time{time.Unix(0, 0), time.Unix(60, 0)},
		Columns: []trends.Column{{Name: "cats", Values: []float64{math.NaN(), math.NaN()}}},
	}
	assert.Nil(t, LineChart(s, "California", ChartOptions{}))

	_, err := SeriesPNG(s, "California")
	assert.Error(t, err)
}

func TestSeriesPNG_SingleRow(t *testing.T) {
	s := &trends.Series{
		Index:   []time.Time{time.Unix(0, 0)},
		Columns: []trends.Column{{Name: "cats", Values: []float64{42}}},
	}
	require.NotNil(t, LineChart(s, "New York", ChartOptions{}), "one point still charts in the browser")

	_, err := SeriesPNG(s, "New York")
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
