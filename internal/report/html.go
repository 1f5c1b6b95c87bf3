package report

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}timetrack report{{end}}</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 2px 8px; text-align: right; }
td.tag { text-align: left; }
tr.day td { font-weight: bold; text-align: left; background: #f2f2f2; }
tr.totals td { border-bottom: 2px solid #888; }
</style>
</head>
<body>
{{- if .Title}}
<h1>{{.Title}}</h1>
{{- end}}
{{- range .Charts}}
<img src="{{.Src}}" alt="{{.Alt}}"/>
{{- end}}
<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Lines}}
{{- if .Day}}
<tr class="day"><td colspan="9">{{.Day}}</td></tr>
{{- else if .TrackedTotal}}
<tr class="totals"><td></td><td></td><td></td><td></td><td></td><td>{{.TrackedTotal}}</td><td>{{.ShouldTotal}}</td><td>{{.Overtime}}</td><td>{{.OvertimeSum}}</td></tr>
{{- else}}
<tr><td></td><td>{{.Start}}</td><td>{{.End}}</td><td>{{.Duration}}</td><td class="tag">{{.Tag}}</td><td></td><td></td><td></td><td></td></tr>
{{- end}}
{{- end}}
</tbody>
</table>
{{- if .Generated}}
<p><small>Generated {{.Generated}}</small></p>
{{- end}}
</body>
</html>
`))

type htmlChart struct {
	Src template.URL
	Alt string
}

type htmlRenderer struct{}

func (htmlRenderer) Render(w io.Writer, r Report) error {
	generated := ""
	if !r.Generated.IsZero() {
		generated = r.Generated.Format(time.RFC1123)
	}
	charts := make([]htmlChart, 0, len(r.Charts))
	for _, c := range r.Charts {
		if len(r.Rows) == 0 {
			break
		}
		src, err := c.dataURI(r.Rows)
		if err != nil {
			return err
		}
		charts = append(charts, htmlChart{Src: src, Alt: fmt.Sprintf("%s (%s)", c.Variable, c.Period)})
	}
	return htmlTemplate.Execute(w, struct {
		Title     string
		Charts    []htmlChart
		Columns   []string
		Lines     []line
		Generated string
	}{
		Title:     r.Title,
		Charts:    charts,
		Columns:   detailColumns,
		Lines:     detail(r.Rows),
		Generated: generated,
	})
}
