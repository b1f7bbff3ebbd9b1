package installer

import (
	"bytes"
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/schema"
)

const (
	// BootstrapSentinel marks a config file that already carries the section
	BootstrapSentinel = "QUICK START TRIGGERS"
	// BootstrapStart and BootstrapEnd delimit the appended section
	BootstrapStart = "<!-- lmagent:bootstrap:start -->"
	BootstrapEnd   = "<!-- lmagent:bootstrap:end -->"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// QuickTrigger is one row of the trigger table in bootstrap and bridge documents
type QuickTrigger struct {
	Trigger string
	Name    string
	Purpose string
}

// DefaultTriggers is the table used when no skills are selected
var DefaultTriggers = []QuickTrigger{
	{"/orch", "Orchestrator", "Classify and delegate."},
	{"/dev", "Backend", "APIs and logic."},
	{"/front", "Frontend", "UI/UX, React."},
	{"/pm", "Product", "PRDs and roadmap."},
	{"/fix", "Debugger", "Bug analysis."},
	{"/arch", "Architect", "System design."},
}

// QuickTriggers reads the first trigger of each selected skill. Skills
// without frontmatter or triggers are left out.
func QuickTriggers(skillsDir string, skills []string) []QuickTrigger {
	var out []QuickTrigger
	for _, name := range skills {
		data, err := os.ReadFile(filepath.Join(skillsDir, name, artifact.SkillFilename))
		if err != nil {
			continue
		}
		fm, ok := schema.ParseFrontmatter(string(data))
		if !ok {
			continue
		}
		d := fm.Descriptor()
		trigger := d.PrimaryTrigger()
		if trigger == "" {
			continue
		}
		label := d.Name
		if label == "" {
			label = name
		}
		purpose := d.Role
		if purpose == "" {
			purpose = d.Description
		}
		out = append(out, QuickTrigger{Trigger: trigger, Name: label, Purpose: purpose})
	}
	return out
}

type docData struct {
	Version     string
	CatalogLink string
	Triggers    []QuickTrigger
}

func render(name string, data docData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return buf.String(), nil
}

// relLink returns a markdown link from the document at fromRel to toRel.
// Both are root-relative. The result uses forward slashes and starts with
// "." so editors resolve it against the document.
func relLink(fromRel, toRel string) string {
	fromDir := path.Dir(filepath.ToSlash(fromRel))
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(toRel))
	if err != nil {
		rel = toRel
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// writeBootstrap appends the bootstrap section to a profile's config file.
// Structured configs are skipped; files that already carry the sentinel
// are left alone.
func writeBootstrap(root string, p config.ToolProfile, triggers []QuickTrigger) (Status, string, error) {
	if p.ConfigFile == "" || p.HasStructuredConfig() {
		return StatusSkip, "", nil
	}

	target, err := resolve(root, p.ConfigFile)
	if err != nil {
		return StatusError, "", err
	}

	section, err := render("bootstrap.md.tmpl", docData{
		Version:     config.FrameworkVersion,
		CatalogLink: relLink(p.ConfigFile, artifact.CatalogDocument),
		Triggers:    triggers,
	})
	if err != nil {
		return StatusError, target, err
	}

	info, err := os.Stat(target)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return StatusError, target, errors.Wrapf(err, "failed to create %s", filepath.Dir(target))
		}
		if err := os.WriteFile(target, []byte(section), 0644); err != nil {
			return StatusError, target, errors.Wrapf(err, "failed to write %s", target)
		}
		return StatusCreated, target, nil
	case err != nil:
		return StatusError, target, errors.Wrapf(err, "failed to stat %s", target)
	case info.IsDir():
		return StatusError, target, errors.Errorf("cannot bootstrap %s: is a directory", p.ConfigFile)
	}

	existing, err := os.ReadFile(target)
	if err != nil {
		return StatusError, target, errors.Wrapf(err, "failed to read %s", target)
	}
	if strings.Contains(string(existing), BootstrapSentinel) {
		return StatusOK, target, nil
	}

	prefix := "\n"
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		prefix = "\n\n"
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return StatusError, target, errors.Wrapf(err, "failed to open %s", target)
	}
	if _, err := f.WriteString(prefix + section); err != nil {
		f.Close()
		return StatusError, target, errors.Wrapf(err, "failed to append to %s", target)
	}
	if err := f.Close(); err != nil {
		return StatusError, target, err
	}
	return StatusUpdated, target, nil
}

// writeBridge rewrites the bridge document in the profile's rules dir
func writeBridge(root string, p config.ToolProfile, triggers []QuickTrigger) (string, error) {
	name := p.BridgeName()
	rel := path.Join(p.RulesDir, name)
	target, err := resolve(root, rel)
	if err != nil {
		return "", err
	}

	tmpl := "bridge.md.tmpl"
	if strings.EqualFold(filepath.Ext(name), ".mdc") {
		tmpl = "bridge.mdc.tmpl"
	}
	content, err := render(tmpl, docData{
		Version:     config.FrameworkVersion,
		CatalogLink: relLink(rel, artifact.CatalogDocument),
		Triggers:    triggers,
	})
	if err != nil {
		return target, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return target, errors.Wrapf(err, "failed to create %s", filepath.Dir(target))
	}
	return target, errors.Wrapf(os.WriteFile(target, []byte(content), 0644), "failed to write %s", target)
}

// StripBootstrap removes the delimited bootstrap section from a document.
// The second result is false when no complete section is present.
func StripBootstrap(doc string) (string, bool) {
	start := strings.Index(doc, BootstrapStart)
	if start < 0 {
		return doc, false
	}
	rest := doc[start:]
	end := strings.Index(rest, BootstrapEnd)
	if end < 0 {
		return doc, false
	}
	after := rest[end+len(BootstrapEnd):]
	after = strings.TrimPrefix(after, "\n")

	before := strings.TrimRight(doc[:start], "\n")
	if before == "" {
		return after, true
	}
	if after == "" {
		return before + "\n", true
	}
	return before + "\n\n" + after, true
}
