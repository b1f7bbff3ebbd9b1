package cmd

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/ui"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var projectTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare a project for lmagent",
	Long: `Create AGENTS.md (with the skills catalog markers), CLAUDE.md,
.env.example and the content root with skills/, rules/ and workflows/.

Existing entry documents are kept unless --force is given.

Examples:
  lmagent init
  lmagent init --force`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite AGENTS.md and CLAUDE.md")
}

// projectFile is a document init writes into the project root
type projectFile struct {
	name      string
	template  string
	overwrite bool // --force applies
}

var projectFiles = []projectFile{
	{name: artifact.CatalogDocument, template: "AGENTS.md.tmpl", overwrite: true},
	{name: artifact.ContextDocument, template: "CLAUDE.md.tmpl", overwrite: true},
	{name: ".env.example", template: "env.example.tmpl"},
}

func runInit(cmd *cobra.Command, args []string) {
	e := loadEnv()
	paths := *e.paths
	if e.settings.Source == "" {
		// A fresh project owns its content; never fall back to ~/.agents here
		paths.ContentRoot = filepath.Join(paths.ProjectRoot, artifact.ContentDirName)
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Initializing Project"))
	fmt.Println()

	for _, typ := range artifact.AllTypes() {
		dir := paths.SourceDir(typ)
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(fmt.Sprintf("failed to create %s: %v", dir, err))
		}
		fmt.Println(ui.SuccessLine(displayPath(paths.ProjectRoot, dir) + "/"))
	}

	data := templateData(&paths)
	for _, f := range projectFiles {
		created, err := writeProjectFile(paths.ProjectRoot, f, data, initForce && f.overwrite)
		switch {
		case err != nil:
			exitWithError(err.Error())
		case created:
			fmt.Println(ui.SuccessLine(f.name))
		default:
			fmt.Println(ui.InfoLine(f.name + " exists, kept"))
		}
	}

	syncCatalog(&paths, false)

	fmt.Println()
	fmt.Println(ui.Muted.Render("  Next steps:"))
	fmt.Println(ui.Muted.Render("    1. ") + ui.RenderCode("lmagent add owner/repo:skills/name") + ui.Muted.Render(" or ") + ui.RenderCode("lmagent create-skill"))
	fmt.Println(ui.Muted.Render("    2. ") + ui.RenderCode("lmagent install"))
	fmt.Println(ui.Muted.Render("    3. Copy .env.example to .env and fill in your credentials"))
	fmt.Println(ui.PageFooter())
}

func templateData(paths *config.Paths) map[string]string {
	rel := func(dir string) string {
		return displayPath(paths.ProjectRoot, dir)
	}
	return map[string]string{
		"Version":      config.FrameworkVersion,
		"ContentDir":   rel(paths.ContentRoot),
		"RulesDir":     rel(paths.SourceDir(artifact.TypeRule)),
		"WorkflowsDir": rel(paths.SourceDir(artifact.TypeWorkflow)),
	}
}

// writeProjectFile renders f into root unless it already exists and
// overwrite is false. It reports whether the file was written.
func writeProjectFile(root string, f projectFile, data map[string]string, overwrite bool) (bool, error) {
	path := filepath.Join(root, f.name)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return false, nil
	}

	var buf bytes.Buffer
	if err := projectTemplates.ExecuteTemplate(&buf, f.template, data); err != nil {
		return false, errors.Wrapf(err, "failed to render %s", f.name)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", f.name)
	}
	return true, nil
}
