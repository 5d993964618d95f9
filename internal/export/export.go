// Package export renders risk reports to downloadable JSON and HTML
// files. Files are written under a single validated export directory
// with timestamped, sanitized names; downloads are served only from
// that directory.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// Format selects the export output type.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Disclaimer is attached to every exported report.
const Disclaimer = "All data sourced from public records. Not financial or legal advice."

var filenameSafeRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Result describes one generated export file.
type Result struct {
	Filename    string `json:"filename"`
	Format      Format `json:"format"`
	SizeBytes   int64  `json:"size_bytes"`
	GeneratedAt string `json:"generated_at"`
}

// envelope is the JSON export payload.
type envelope struct {
	GeneratedAt string         `json:"generated_at"`
	Disclaimer  string         `json:"disclaimer"`
	Report      *entity.Report `json:"report"`
}

// Service generates export files for risk reports.
type Service struct {
	dir    string
	logger *zap.Logger
	tmpl   *template.Template
	now    func() time.Time
}

// NewService creates an export service writing into dir, creating it
// if needed.
func NewService(dir string, logger *zap.Logger) (*Service, error) {
	if dir == "" {
		dir = "exports"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve export dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	tmpl, err := template.New("report").Parse(reportHTML)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Service{dir: abs, logger: logger, tmpl: tmpl, now: time.Now}, nil
}

// Export writes the report in the requested format and returns the
// file metadata.
func (s *Service) Export(rep *entity.Report, format Format) (*Result, error) {
	if rep == nil {
		return nil, fmt.Errorf("nil report")
	}

	generated := s.now().UTC()
	filename := fmt.Sprintf("%s_%s.%s",
		sanitizeFilename(rep.Name),
		generated.Format("2006-01-02_15-04-05"),
		format,
	)
	path := filepath.Join(s.dir, filename)

	var err error
	switch format {
	case FormatJSON:
		err = s.writeJSON(path, rep, generated)
	case FormatHTML:
		err = s.writeHTML(path, rep, generated)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat export file: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("report exported",
			zap.String("entity", rep.Name),
			zap.String("file", filename),
			zap.Int64("bytes", info.Size()),
		)
	}
	return &Result{
		Filename:    filename,
		Format:      format,
		SizeBytes:   info.Size(),
		GeneratedAt: generated.Format(time.RFC3339),
	}, nil
}

// Open returns the export file for download. Only plain filenames
// inside the export directory are served.
func (s *Service) Open(filename string) (*os.File, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return nil, fmt.Errorf("invalid export filename %q", filename)
	}
	path := filepath.Join(s.dir, filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return f, nil
}

func (s *Service) writeJSON(path string, rep *entity.Report, generated time.Time) error {
	data, err := json.MarshalIndent(envelope{
		GeneratedAt: generated.Format(time.RFC3339),
		Disclaimer:  Disclaimer,
		Report:      rep,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func (s *Service) writeHTML(path string, rep *entity.Report, generated time.Time) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	data := struct {
		*entity.Report
		GeneratedAt string
		Disclaimer  string
	}{rep, generated.Format(time.RFC3339), Disclaimer}

	if err := s.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// sanitizeFilename collapses anything outside [a-zA-Z0-9_-] to a
// single underscore.
func sanitizeFilename(name string) string {
	clean := filenameSafeRe.ReplaceAllString(name, "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		clean = "entity"
	}
	const maxLen = 80
	if len(clean) > maxLen {
		clean = clean[:maxLen]
	}
	return clean
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>LedgerTrace Report: {{.Name}}</title>
</head>
<body>
<h1>LedgerTrace Risk Report</h1>
<h2>{{.Name}}</h2>
<p>Generated: {{.GeneratedAt}}</p>
<p><strong>Risk Score:</strong> {{.RiskScore}} / 100 ({{.Tier}})</p>
{{if .Anomalies}}
<h3>Anomalies</h3>
<ul>
{{range .Anomalies}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
{{if .ClassificationFlags}}
<h3>Classification Findings</h3>
<ul>
{{range .ClassificationFlags}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
{{if .EntityType.IsTrust}}
<p><strong>Trust Types:</strong> {{range $i, $t := .EntityType.TrustTypes}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
{{end}}
{{if .SourceLinks}}
<h3>Source Verification</h3>
<ul>
{{range $name, $url := .SourceLinks}}<li>{{$name}}: <a href="{{$url}}">{{$url}}</a></li>
{{end}}</ul>
{{end}}
<hr>
<p><em>{{.Disclaimer}}</em></p>
</body>
</html>
`
