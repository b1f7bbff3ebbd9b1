package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/detect"
	"github.com/kennyg/lmagent/internal/ui"
)

var toolsCmd = &cobra.Command{
	Use:     "tools",
	Aliases: []string{"agents"},
	Short:   "List supported tools and where they keep content",
	Long: `List every tool profile, built-in and custom (tools.toml), with
its rules and skills directories. Detected tools are marked.

Examples:
  lmagent tools
  lmagent tools --detected
  lmagent tools --home --detected`,
	Args: cobra.NoArgs,
	Run:  runTools,
}

var (
	toolsDetected bool
	toolsHome     bool
)

func init() {
	toolsCmd.Flags().BoolVar(&toolsDetected, "detected", false, "Show only tools found in the project")
	toolsCmd.Flags().BoolVar(&toolsHome, "home", false, "Detect in the home directory instead of the project")
}

func runTools(cmd *cobra.Command, args []string) {
	e := loadEnv()

	scope, root := detect.ScopeProject, e.paths.ProjectRoot
	if toolsHome {
		scope, root = detect.ScopeHome, e.paths.Home
	}
	evidence := make(map[config.Tool]string)
	for _, r := range detect.In(scope, e.profiles, root) {
		evidence[r.Profile.ID] = r.Evidence
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Tools"))
	fmt.Println()
	fmt.Println("    " + ui.TableHeader(
		fmt.Sprintf("%-14s", "ID"),
		fmt.Sprintf("%-22s", "Name"),
		fmt.Sprintf("%-28s", "Rules"),
		"Skills",
	))

	shown := 0
	for _, p := range e.profiles {
		ev, found := evidence[p.ID]
		if toolsDetected && !found {
			continue
		}
		shown++

		mark := " "
		if found {
			mark = ui.Success.Render("●")
			if !ui.IsTTY {
				mark = "*"
			}
		}
		skills := p.SkillsDir
		if skills == "" {
			skills = "-"
		}
		row := ui.TableRow(
			fmt.Sprintf("%-14s", p.ID),
			fmt.Sprintf("%-22s", ui.Truncate(p.DisplayName, 22)),
			fmt.Sprintf("%-28s", p.RulesDir),
			skills,
		)
		if p.Manual {
			row += " " + ui.RenderMuted("(manual)")
		}
		if found {
			row += " " + ui.RenderMuted("found "+ev)
		}
		fmt.Printf("  %s %s\n", mark, row)
	}

	fmt.Println()
	if shown == 0 {
		fmt.Println(ui.Muted.Render("  No tools detected. Try 'lmagent tools' for the full list."))
	} else {
		fmt.Println(ui.Muted.Render(fmt.Sprintf("  %d shown, %d detected", shown, len(evidence))))
	}
	fmt.Println(ui.PageFooter())
}
