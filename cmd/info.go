package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/detect"
	"github.com/kennyg/lmagent/internal/doctor"
	"github.com/kennyg/lmagent/internal/schema"
	"github.com/kennyg/lmagent/internal/ui"
	"github.com/kennyg/lmagent/internal/validate"
)

var infoCmd = &cobra.Command{
	Use:     "info <skill>",
	Aliases: []string{"show"},
	Short:   "Show a skill in detail",
	Long: `Show a skill's descriptor, its setup requirements, its validation
state and which detected tools have it installed.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) {
	e := loadEnv()
	name := args[0]
	if !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		exitWithError(fmt.Sprintf("invalid skill name %q", name))
	}

	dir := filepath.Join(e.paths.SourceDir(artifact.TypeSkill), name)
	content, err := os.ReadFile(filepath.Join(dir, artifact.SkillFilename))
	if err != nil {
		exitWithError(fmt.Sprintf("skill '%s' not found in %s", name, e.paths.SourceDir(artifact.TypeSkill)))
	}
	fm, ok := schema.ParseFrontmatter(string(content))
	if !ok {
		exitWithError(fmt.Sprintf("skill '%s' has no frontmatter", name))
	}
	d := fm.Descriptor()

	fmt.Println()
	title := d.Name
	if d.Icon != "" {
		title = d.Icon + " " + title
	}
	fmt.Println(ui.Title.Render(title))
	fmt.Println()
	fmt.Printf("%s %s\n", ui.TypeBadge(artifact.TypeSkill), ui.Muted.Render(string(d.Type)))
	fmt.Println()

	if d.Description != "" {
		fmt.Println(d.Description)
		fmt.Println()
	}

	fmt.Println(ui.Subtitle.Render("Details"))
	fmt.Println(ui.Divider(40))
	if d.Role != "" {
		fmt.Printf("  Role:       %s\n", d.Role)
	}
	if d.Version != "" {
		fmt.Printf("  Version:    %s\n", d.Version)
	}
	if len(d.Triggers) > 0 {
		fmt.Printf("  Triggers:   %s\n", ui.RenderCode(strings.Join(d.Triggers, " ")))
	}
	if len(d.Expertise) > 0 {
		fmt.Printf("  Expertise:  %s\n", strings.Join(d.Expertise, ", "))
	}
	fmt.Printf("  Path:       %s\n", displayPath(e.paths.ProjectRoot, dir))

	if reqs := doctor.SkillRequirements(dir); len(reqs) > 0 {
		envExample, _ := os.ReadFile(filepath.Join(e.paths.ProjectRoot, ".env.example"))
		fmt.Println()
		fmt.Println(ui.Subtitle.Render("Setup"))
		fmt.Println(ui.Divider(40))
		for _, req := range reqs {
			res := doctor.Verify(req, string(envExample))
			if res.Satisfied {
				fmt.Println(ui.SuccessLine(fmt.Sprintf("%s %s", req.Type, req.Value)))
			} else {
				fmt.Println(ui.WarningLine(res.Message))
			}
		}
	}

	fmt.Println()
	fmt.Println(ui.Subtitle.Render("Installed in"))
	fmt.Println(ui.Divider(40))
	installed := 0
	for _, r := range detect.Detect(e.profiles, e.paths.ProjectRoot) {
		rel := r.Profile.SkillsDir
		if rel == "" {
			continue
		}
		p := filepath.Join(e.paths.ProjectRoot, filepath.FromSlash(rel), name)
		if _, err := os.Lstat(p); err == nil {
			installed++
			fmt.Printf("  %s %s\n", r.Profile.DisplayName, ui.RenderMuted(displayPath(e.paths.ProjectRoot, p)))
		}
	}
	if installed == 0 {
		fmt.Println(ui.Muted.Render("  no detected tool, run 'lmagent install'"))
	}

	if v := validate.ValidateSkill(dir); !v.OK() || len(v.Warnings) > 0 {
		fmt.Println()
		for _, msg := range v.Errors {
			fmt.Println(ui.ErrorLine(msg))
		}
		for _, msg := range v.Warnings {
			fmt.Println(ui.WarningLine(msg))
		}
	}
	fmt.Println(ui.PageFooter())
}
