package tokens

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": FormatNum,
	"kb":  FormatKB,
}).Parse(`# LMAgent Token Report v{{.Report.Version}}

> Generated: {{.Date}}

## Installed agents
{{range .Report.Tools}}
- {{.}}{{else}}
- none detected{{end}}

## Usage by category

| Category | Files | Tokens (est.) | Size |
|:---|---:|---:|---:|
| Entry Points | {{.Report.Categories.EntryPoints.Files}} | ~{{num .Report.Categories.EntryPoints.Tokens}} | {{kb .Report.Categories.EntryPoints.Bytes}} |
| Skills | {{.Report.Categories.Skills.Files}} | ~{{num .Report.Categories.Skills.Tokens}} | {{kb .Report.Categories.Skills.Bytes}} |
| Rules | {{.Report.Categories.Rules.Files}} | ~{{num .Report.Categories.Rules.Tokens}} | {{kb .Report.Categories.Rules.Bytes}} |
| Workflows | {{.Report.Categories.Workflows.Files}} | ~{{num .Report.Categories.Workflows.Tokens}} | {{kb .Report.Categories.Workflows.Bytes}} |
| **TOTAL** | **{{.Report.Total.Files}}** | **~{{num .Report.Total.Tokens}}** | **{{kb .Report.Total.Bytes}}** |

## Session overhead

| Component | Tokens |
|:---|---:|
| Entry points (always loaded) | ~{{num .Report.Session.EntryPoints}} |
| Active skill (average, on demand) | ~{{num .Report.Session.AvgSkill}} |
| **Total per session** | **~{{num .Report.Session.Tokens}}** |
{{if .Report.Largest}}
## Largest files

| File | Tokens |
|:---|---:|
{{range .Report.Largest}}| {{.Path}} | ~{{num .Tokens}} |
{{end}}{{end}}
> Skills are not all loaded at once. Only the skill the agent invokes is active.
`))

// Markdown renders the report as a markdown document dated now
func (r *Report) Markdown(now time.Time) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Report *Report
		Date   string
	}{r, now.Format("2006-01-02")})
	return buf.String(), errors.Wrap(err, "failed to render token report")
}

// WriteReport writes the markdown report into dir and returns its path
func (r *Report) WriteReport(dir string, now time.Time) (string, error) {
	md, err := r.Markdown(now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	path := filepath.Join(dir, ReportFilename)
	if err := os.WriteFile(path, []byte(md), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// FormatNum groups thousands with commas
func FormatNum(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// FormatKB renders a byte count in kilobytes with one decimal
func FormatKB(b int64) string {
	return fmt.Sprintf("%.1f KB", float64(b)/1024)
}
