package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Search Trends Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.notice { padding: .5em 1em; margin: .5em 0; border-radius: 4px; }
.notice.info { background: #e8f1fb; }
.notice.warning { background: #fff4d6; }
.notice.error { background: #fde2e2; }
iframe { border: 0; }
table { border-collapse: collapse; margin-bottom: 1em; }
td, th { padding: .2em .8em; border-bottom: 1px solid #ddd; text-align: left; }
.breakout { font-weight: bold; color: #c0392b; }
</style>
</head>
<body>
<h1>Search Trends Dashboard</h1>
<form action="/dashboard" method="get">
  <label for="terms">Enter search terms (comma-separated):</label>
  <input id="terms" name="terms" size="60" value="{{.Input}}">
  <button type="submit">Show trends</button>
</form>
{{with .Error}}<div class="notice error">{{.}}</div>{{end}}
{{with .Report}}
<p>Terms: {{.Terms.String}} &middot; Timeframe: {{.Timeframe}}</p>
{{end}}
{{range .Sections}}
<section>
  <h2>{{.Label}}</h2>
  {{range .Notices}}<div class="notice {{.Level}}">{{.Message}}</div>{{end}}
  {{if .Error}}<div class="notice error">Could not load trends: {{.Error}}</div>{{end}}
  {{if .ChartHTML}}<iframe srcdoc="{{.ChartHTML}}" width="{{.ChartWidth}}" height="{{.ChartHeight}}"></iframe>{{end}}
  {{range .Panels}}
  <h3>{{.Term}}</h3>
  {{if .CloudHTML}}<iframe srcdoc="{{.CloudHTML}}" width="{{.CloudWidth}}" height="{{.CloudHeight}}"></iframe>
  {{else}}<div class="notice info">No top queries for {{.Term}}.</div>{{end}}
  {{if .Rising}}
  <table>
    <tr><th>Rising query</th><th>Increase</th></tr>
    {{range .Rising}}<tr><td>{{.Query}}</td><td{{if .Breakout}} class="breakout"{{end}}>{{.Increase}}</td></tr>{{end}}
  </table>
  {{else}}<div class="notice info">No rising queries for {{.Term}}.</div>{{end}}
  {{end}}
</section>
{{end}}
</body>
</html>
`))

type pageView struct {
	Input    string
	Error    string
	Report   *Report
	Sections []sectionView
}

type sectionView struct {
	Label       string
	Notices     []noticeView
	Error       string
	ChartHTML   string
	ChartWidth  int
	ChartHeight int
	Panels      []panelView
}

type noticeView struct {
	Level   string
	Message string
}

type panelView struct {
	Term        string
	CloudHTML   string
	CloudWidth  int
	CloudHeight int
	Rising      []risingView
}

type risingView struct {
	Query    string
	Increase string
	Breakout bool
}

// WriteHTML renders the dashboard page. A nil report renders the bare form.
func WriteHTML(w io.Writer, input string, r *Report) error {
	view := pageView{Input: input, Report: r}
	if r != nil {
		for _, s := range r.Sections {
			sv, err := newSectionView(s)
			if err != nil {
				return err
			}
			view.Sections = append(view.Sections, sv)
		}
	}
	return pageTemplate.Execute(w, view)
}

// WriteFormError renders the form with message shown above it.
func WriteFormError(w io.Writer, input, message string) error {
	return pageTemplate.Execute(w, pageView{Input: input, Error: message})
}

func newSectionView(s *Section) (sectionView, error) {
	sv := sectionView{Label: s.Geo.Label(), Error: s.Error}
	for _, n := range s.Notices {
		sv.Notices = append(sv.Notices, noticeView{Level: string(n.Level), Message: n.Message})
	}
	if s.NoData != nil {
		sv.Notices = append(sv.Notices, noticeView{Level: string(s.NoData.Level), Message: s.NoData.Message})
	}

	if s.Chart != nil {
		html, err := s.Chart.HTML()
		if err != nil {
			return sv, fmt.Errorf("render chart for %s: %w", sv.Label, err)
		}
		sv.ChartHTML = html
		sv.ChartWidth, sv.ChartHeight = s.Chart.Width+40, s.Chart.Height+40
	}

	for _, p := range s.Panels {
		pv := panelView{Term: p.Term}
		if p.WordCloud != nil {
			var buf bytes.Buffer
			if err := p.WordCloud.Render(&buf); err != nil {
				return sv, fmt.Errorf("render word cloud for %s: %w", p.Term, err)
			}
			pv.CloudHTML = buf.String()
			pv.CloudWidth = p.WordCloud.Width + 40
			pv.CloudHeight = p.WordCloud.Height + 40
		}
		for _, r := range p.Rising {
			pv.Rising = append(pv.Rising, risingView{Query: r.Query, Increase: r.Increase, Breakout: r.Breakout})
		}
		sv.Panels = append(sv.Panels, pv)
	}
	return sv, nil
}
