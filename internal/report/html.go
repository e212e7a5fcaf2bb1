package report

import (
	"bytes"
	"fmt"
	"html/template"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>loadster - {{.URL}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1f2937; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; min-width: 320px; }
th, td { text-align: left; padding: 0.35rem 0.8rem; border-bottom: 1px solid #e5e7eb; }
th { background: #f3f4f6; }
.ok { color: #059669; }
.fail { color: #dc2626; }
.note { color: #d97706; }
</style>
</head>
<body>
<h1>Load test: {{.URL}}</h1>
{{if .Partial}}<p class="note">Run interrupted; results cover completed requests only.</p>{{end}}
<table>
<tr><th colspan="2">Results</th></tr>
{{if .Date}}<tr><td>Date</td><td>{{.Date}}</td></tr>{{end}}
{{if .RunID}}<tr><td>Run ID</td><td>{{.RunID}}</td></tr>{{end}}
<tr><td>Total requests</td><td>{{.TotalRequests}}</td></tr>
<tr><td>Concurrency</td><td>{{.Concurrency}}</td></tr>
<tr><td>Successful</td><td class="ok">{{.Successful}} ({{successRate .}})</td></tr>
<tr><td>Failed</td><td class="fail">{{.Failed}}</td></tr>
<tr><td>Requests/sec</td><td>{{ms .RequestsPerSec}}</td></tr>
<tr><td>Total time</td><td>{{ms .TotalDurationMs}}ms</td></tr>
</table>
<table>
<tr><th colspan="2">Latency</th></tr>
<tr><td>Average</td><td>{{ms .Latency.AvgMs}}ms</td></tr>
<tr><td>Min</td><td>{{ms .Latency.MinMs}}ms</td></tr>
<tr><td>Max</td><td>{{ms .Latency.MaxMs}}ms</td></tr>
<tr><td>P50</td><td>{{ms .Latency.P50Ms}}ms</td></tr>
<tr><td>P95</td><td>{{ms .Latency.P95Ms}}ms</td></tr>
<tr><td>P99</td><td>{{ms .Latency.P99Ms}}ms</td></tr>
</table>
{{if .StatusCodes}}<table>
<tr><th>Status</th><th>Count</th></tr>
{{range $code := .SortedStatusCodes}}<tr><td>{{$code}}</td><td>{{index $.StatusCodes $code}}</td></tr>
{{end}}</table>{{end}}
{{if .Errors}}<table>
<tr><th>Error</th><th>Count</th></tr>
{{range $kind := .SortedErrors}}<tr><td>{{$kind}}</td><td>{{index $.Errors $kind}}</td></tr>
{{end}}</table>{{end}}
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms":          formatMs,
	"successRate": successRate,
}).Parse(htmlTemplate))

// GenerateHTML renders the report as a standalone HTML page.
func GenerateHTML(r *Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMs(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func successRate(r *Report) string {
	if r.TotalRequests == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(r.Successful)/float64(r.TotalRequests)*100)
}
