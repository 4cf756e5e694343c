// Package report renders a run record as text, JSON, HTML, or CSV and
// writes the result to the output directory.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/reconai/pkg/orchestrator"
	"github.com/user/reconai/pkg/recon"
	"github.com/user/reconai/pkg/target"
)

// Format names a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatAll  Format = "all"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatHTML, FormatCSV, FormatAll:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Formatter writes rendered reports under OutputDir.
type Formatter struct {
	OutputDir string
}

func NewFormatter(outputDir string) *Formatter {
	return &Formatter{OutputDir: outputDir}
}

// Render produces the report body for a single format.
func Render(record *orchestrator.RunRecord, format Format) (string, error) {
	switch format {
	case FormatText:
		return RenderText(record), nil
	case FormatJSON:
		return RenderJSON(record)
	case FormatHTML:
		return RenderHTML(record)
	case FormatCSV:
		return RenderCSV(record)
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

const rule70 = "======================================================================"
const rule50 = "--------------------------------------------------"

// RenderText renders the detailed plain-text report: header block, scan
// results, AI analysis verbatim, closing marker.
func RenderText(record *orchestrator.RunRecord) string {
	var sb strings.Builder
	sb.WriteString(rule70 + "\n")
	sb.WriteString("RECONAI RECONNAISSANCE REPORT\n")
	sb.WriteString(rule70 + "\n\n")

	fmt.Fprintf(&sb, "Target:          %s\n", record.Target.Normalized)
	fmt.Fprintf(&sb, "Tool(s):         %s\n", record.Tool)
	fmt.Fprintf(&sb, "Status:          %s\n", statusWord(record.Succeeded))
	fmt.Fprintf(&sb, "Execution Time:  %.2f seconds\n", record.ExecutionTimeSeconds)
	fmt.Fprintf(&sb, "Generated:       %s\n\n", record.Timestamp)

	if record.ScanOutcome != nil && record.ScanOutcome.Succeeded {
		sb.WriteString(rule50 + "\n")
		sb.WriteString("SCAN RESULTS\n")
		sb.WriteString(rule50 + "\n")
		fmt.Fprintf(&sb, "Total Events Found: %d\n\n", len(record.ScanOutcome.Events))
		if len(record.ScanOutcome.EventTypeCounts) > 0 {
			sb.WriteString("Event Types:\n")
			for _, tc := range recon.CountsByFrequency(record.ScanOutcome.EventTypeCounts, record.ScanOutcome.Events) {
				fmt.Fprintf(&sb, "  %-20s : %5d\n", tc.Type, tc.Count)
			}
			sb.WriteString("\n")
		}
	} else if record.ScanOutcome != nil {
		fmt.Fprintf(&sb, "Scan failed: %s\n\n", record.ScanOutcome.ErrorMessage)
	}

	if record.Analysis != nil && record.Analysis.Succeeded {
		sb.WriteString(rule50 + "\n")
		sb.WriteString("AI ANALYSIS\n")
		sb.WriteString(rule50 + "\n")
		sb.WriteString(record.Analysis.RawText)
		sb.WriteString("\n\n")
	}

	sb.WriteString(rule70 + "\n")
	sb.WriteString("END OF REPORT\n")
	sb.WriteString(rule70 + "\n")
	return sb.String()
}

// RenderJSON serializes the record losslessly; optional fields are emitted
// as null so a parse of the output round-trips field for field.
func RenderJSON(record *orchestrator.RunRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>ReconAI Report - {{.Target}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { border-bottom: 2px solid #333; padding-bottom: 20px; }
        .status-success { color: green; }
        .status-failed { color: red; }
        pre { background: #f4f4f4; padding: 16px; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="header">
        <h1>ReconAI Report</h1>
        <p>Target: {{.Target}}</p>
        <p>Tool: {{.Tool}}</p>
        <p>Status: <span class="{{.StatusClass}}">{{.Status}}</span></p>
        <p>Generated: {{.Timestamp}}</p>
    </div>
    <h2>Scan Results</h2>
    <p>Total events: {{.TotalEvents}}</p>
    {{if .Histogram}}<ul>{{range .Histogram}}<li>{{.Type}}: {{.Count}}</li>{{end}}</ul>{{end}}
    {{if .Analysis}}<h2>AI Analysis</h2><pre>{{.Analysis}}</pre>{{end}}
</body>
</html>
`))

type htmlData struct {
	Target      string
	Tool        string
	Status      string
	StatusClass string
	Timestamp   string
	TotalEvents int
	Histogram   []recon.TypeCount
	Analysis    string
}

// RenderHTML emits the HTML report. User-controlled strings pass through
// html/template and are escaped on output.
func RenderHTML(record *orchestrator.RunRecord) (string, error) {
	d := htmlData{
		Target:      record.Target.Normalized,
		Tool:        record.Tool,
		Status:      statusWord(record.Succeeded),
		StatusClass: "status-failed",
		Timestamp:   record.Timestamp,
	}
	if record.Succeeded {
		d.StatusClass = "status-success"
	}
	if record.ScanOutcome != nil {
		d.TotalEvents = len(record.ScanOutcome.Events)
		d.Histogram = recon.CountsByFrequency(record.ScanOutcome.EventTypeCounts, record.ScanOutcome.Events)
	}
	if record.Analysis != nil && record.Analysis.Succeeded {
		d.Analysis = record.Analysis.RawText
	}

	var sb strings.Builder
	if err := htmlTemplate.Execute(&sb, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderCSV emits exactly one header row and one data row summarizing the
// run; it is not a per-event table.
func RenderCSV(record *orchestrator.RunRecord) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	rows := [][]string{
		{"Target", "Tool", "Status", "Timestamp"},
		{record.Target.Normalized, record.Tool, statusWord(record.Succeeded), record.Timestamp},
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Save renders and writes a single format, returning the file path.
func (f *Formatter) Save(record *orchestrator.RunRecord, format Format) (string, error) {
	body, err := Render(record, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(f.OutputDir, fileName(record, format))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAll writes every format, collecting the paths of the ones that
// succeeded. Write failures are reported but do not stop the other formats.
func (f *Formatter) SaveAll(record *orchestrator.RunRecord) ([]string, error) {
	var paths []string
	var firstErr error
	for _, format := range []Format{FormatText, FormatJSON, FormatHTML, FormatCSV} {
		path, err := f.Save(record, format)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, path)
	}
	return paths, firstErr
}

var formatExtensions = map[Format]string{
	FormatText: ".txt",
	FormatJSON: ".json",
	FormatHTML: ".html",
	FormatCSV:  ".csv",
}

var formatPrefixes = map[Format]string{
	FormatText: "report",
	FormatJSON: "recon",
	FormatHTML: "report",
	FormatCSV:  "summary",
}

func fileName(record *orchestrator.RunRecord, format Format) string {
	stamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s%s",
		formatPrefixes[format],
		target.SanitizeFilename(record.Target.Normalized),
		stamp,
		formatExtensions[format])
}

func statusWord(ok bool) string {
	if ok {
		return "SUCCESS"
	}
	return "FAILED"
}
