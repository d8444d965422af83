package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTMLFileName is the name of the rendered report inside the output directory.
const HTMLFileName = "report.html"

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: report name)
}

// GenerateHTML renders report.json in reportDir as a standalone HTML page.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	r, err := Read(filepath.Join(reportDir, FileName))
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = r.Name
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, HTMLFileName)
	}

	html, err := renderHTML(buildHTMLData(r, reportDir, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title       string
	GeneratedAt string
	Report      *Report
	StatusClass string
	Duration    string
	Commands    []CommandHTMLData
}

// CommandHTMLData contains command data formatted for HTML.
type CommandHTMLData struct {
	Command
	StatusClass string
	DurationStr string
	Screenshot  string // data URI or relative path
}

func buildHTMLData(r *Report, reportDir string, cfg HTMLConfig) HTMLData {
	cmds := make([]CommandHTMLData, len(r.Commands))
	for i, c := range r.Commands {
		cmd := CommandHTMLData{
			Command:     c,
			StatusClass: string(c.Status),
			DurationStr: formatDuration(c.Duration),
		}
		if shot := c.Artifacts.Screenshot; shot != "" {
			path := shot
			if !filepath.IsAbs(path) {
				path = filepath.Join(reportDir, shot)
			}
			if cfg.EmbedAssets {
				cmd.Screenshot = loadAsBase64(path)
			} else {
				cmd.Screenshot = shot
			}
		}
		cmds[i] = cmd
	}

	return HTMLData{
		Title:       cfg.Title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Report:      r,
		StatusClass: string(r.Status),
		Duration:    formatDuration(r.Duration),
		Commands:    cmds,
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", *ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func loadAsBase64(path string) string {
	data, err := os.ReadFile(path) //#nosec G304 -- screenshot written by this run
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"uri": func(s string) template.URL { return template.URL(s) }, //#nosec G203 -- data URI built from a local file
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --warned: #f97316;
            --failed: #ef4444;
            --skipped: #eab308;
            --running: #06b6d4;
            --pending: #6b7280;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--bg-secondary); color: var(--text-primary); padding: 24px; }
        header { margin-bottom: 24px; }
        h1 { font-size: 20px; margin-bottom: 8px; }
        .meta { color: var(--text-muted); font-size: 13px; }
        .badge { display: inline-block; padding: 2px 10px; border-radius: 999px; color: #fff; font-size: 12px; text-transform: uppercase; }
        .badge.passed { background: var(--passed); }
        .badge.warned { background: var(--warned); }
        .badge.failed { background: var(--failed); }
        .badge.skipped { background: var(--skipped); }
        .badge.running { background: var(--running); }
        .badge.pending { background: var(--pending); }
        .error { background: #fff; border-left: 4px solid var(--failed); padding: 12px; margin-bottom: 16px; }
        .step { background: var(--bg-primary); border: 1px solid var(--border-color); border-radius: 6px; padding: 12px; margin-bottom: 8px; }
        .step h2 { font-size: 14px; display: flex; gap: 8px; align-items: center; }
        .step .detail { color: var(--text-muted); font-size: 12px; margin-top: 6px; }
        .step img { max-width: 480px; margin-top: 8px; border: 1px solid var(--border-color); }
    </style>
</head>
<body>
    <header>
        <h1>{{.Title}} <span class="badge {{.StatusClass}}">{{.Report.Status}}</span></h1>
        <div class="meta">
            Run {{.Report.RunID}} &middot; {{.Duration}} &middot; final state {{.Report.FinalState}}
            {{with .Report.Session}}&middot; session {{.Source}} ({{.Cookies}} cookies){{end}}
            {{with .Report.Media}}&middot; media {{.}}{{end}}
        </div>
        <div class="meta">
            {{.Report.Summary.Passed}} passed, {{.Report.Summary.Warned}} warned,
            {{.Report.Summary.Failed}} failed, {{.Report.Summary.Skipped}} skipped &middot; generated {{.GeneratedAt}}
        </div>
    </header>
    {{with .Report.Error}}<div class="error"><strong>{{.Type}}</strong>: {{.Message}}</div>{{end}}
    {{range .Commands}}
    <div class="step">
        <h2><span class="badge {{.StatusClass}}">{{.Status}}</span> {{.Index}}. {{if .Describe}}{{.Describe}}{{else}}{{.Type}}{{end}} <span class="meta">{{.DurationStr}}</span></h2>
        {{with .Element}}{{if .Found}}<div class="detail">matched {{.Locator}} (candidate {{.Candidate}} of {{.Candidates}})</div>{{end}}{{end}}
        {{with .Warning}}<div class="detail">{{.}}</div>{{end}}
        {{with .Error}}<div class="detail">{{.Type}}: {{.Message}}</div>{{end}}
        {{with .Screenshot}}<img src="{{uri .}}" alt="screenshot">{{end}}
    </div>
    {{end}}
</body>
</html>
`
