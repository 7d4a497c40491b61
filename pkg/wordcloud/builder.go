// Package wordcloud turns a related-queries "top" table into a word cloud.
package wordcloud

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"trends-dashboard/pkg/trends"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 400
	DefaultMaxWords   = 25
	DefaultBackground = "#FFFFFF"
)

// Options controls the rendered cloud.
type Options struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	MaxWords   int    `mapstructure:"max_words"`
	Background string `mapstructure:"background"`
}

// DefaultOptions returns an 800x400 white cloud capped at 25 words.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		MaxWords:   DefaultMaxWords,
		Background: DefaultBackground,
	}
}

// Builder renders word clouds with fixed options.
type Builder struct {
	opts Options
}

func NewBuilder(o Options) *Builder {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.MaxWords <= 0 {
		o.MaxWords = d.MaxWords
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	return &Builder{opts: o}
}

// Image is a rendered word cloud.
type Image struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Words  []Word `json:"words"`

	chart *charts.WordCloud
}

// Build returns nil when top is empty. Otherwise it joins every query into
// one text, keeps the most frequent words and lays them out as a cloud.
// Placement is left to the chart library and is not deterministic.
func (b *Builder) Build(title string, top []trends.TopQuery) *Image {
	if len(top) == 0 {
		return nil
	}

	queries := make([]string, 0, len(top))
	for _, q := range top {
		queries = append(queries, q.Query)
	}
	words := rank(strings.Join(queries, " "), b.opts.MaxWords)
	if len(words) == 0 {
		words = rawWords(queries, b.opts.MaxWords)
	}

	data := make([]opts.WordCloudData, 0, len(words))
	for _, w := range words {
		data = append(data, opts.WordCloudData{Name: w.Text, Value: w.Count})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Width:           fmt.Sprintf("%dpx", b.opts.Width),
			Height:          fmt.Sprintf("%dpx", b.opts.Height),
			BackgroundColor: b.opts.Background,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	wc.AddSeries("queries", data).
		SetSeriesOptions(charts.WithWorldCloudChartOpts(opts.WordCloudChart{
			Shape:     "circle",
			SizeRange: []float32{14, 72},
		}))

	return &Image{
		Title:  title,
		Width:  b.opts.Width,
		Height: b.opts.Height,
		Words:  words,
		chart:  wc,
	}
}

// Render writes the cloud as a standalone HTML document.
func (img *Image) Render(w io.Writer) error {
	if img == nil || img.chart == nil {
		return fmt.Errorf("word cloud is empty")
	}
	return img.chart.Render(w)
}

// rawWords is the fallback when every token was filtered out: each
// distinct non-blank query becomes one word.
func rawWords(queries []string, limit int) []Word {
	seen := map[string]int{}
	var words []Word
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if i, ok := seen[q]; ok {
			words[i].Count++
			continue
		}
		seen[q] = len(words)
		words = append(words, Word{Text: q, Count: 1})
	}
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}
