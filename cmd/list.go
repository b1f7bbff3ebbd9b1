package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/doctor"
	"github.com/kennyg/lmagent/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the content root's skills, rules and workflows",
	Long:    `Display everything the content root offers for installation.`,
	Args:    cobra.NoArgs,
	Run:     runList,
}

var (
	listSkills    bool
	listRules     bool
	listWorkflows bool
	listShort     bool
)

func init() {
	listCmd.Flags().BoolVar(&listSkills, "skills", false, "Show only skills")
	listCmd.Flags().BoolVar(&listRules, "rules", false, "Show only rules")
	listCmd.Flags().BoolVar(&listWorkflows, "workflows", false, "Show only workflows")
	listCmd.Flags().BoolVar(&listShort, "short", false, "Truncate descriptions to one line")
}

func runList(cmd *cobra.Command, args []string) {
	e := loadEnv()

	cat, err := catalog.Load(e.paths.ContentRoot)
	if err != nil {
		exitWithError(err.Error())
	}

	showAll := !listSkills && !listRules && !listWorkflows
	show := map[artifact.Type]bool{
		artifact.TypeSkill:    showAll || listSkills,
		artifact.TypeRule:     showAll || listRules,
		artifact.TypeWorkflow: showAll || listWorkflows,
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Content"))
	fmt.Println(ui.Muted.Render("  " + e.paths.ContentRoot))
	fmt.Println()

	if cat.Len() == 0 {
		fmt.Println(ui.Muted.Render("  Nothing here yet. Try 'lmagent add' or 'lmagent create-skill'."))
		fmt.Println(ui.PageFooter())
		return
	}

	records := make(map[string]catalog.Record)
	if show[artifact.TypeSkill] {
		recs, err := catalog.Records(e.paths.SourceDir(artifact.TypeSkill))
		if err != nil {
			exitWithError(err.Error())
		}
		for _, r := range recs {
			records[r.ID] = r
		}
	}
	envExample, _ := os.ReadFile(filepath.Join(e.paths.ProjectRoot, ".env.example"))

	descWidth := min(ui.TerminalWidth(), 100) - 8
	shown := 0
	for _, t := range artifact.AllTypes() {
		items := cat.Items(t)
		if !show[t] || len(items) == 0 {
			continue
		}

		count := lipgloss.NewStyle().Foreground(ui.DarkGray).Render(fmt.Sprintf("(%d)", len(items)))
		fmt.Printf("  %s %s\n", ui.TypeBadge(t), count)
		fmt.Println()

		for _, item := range items {
			shown++
			name := ui.Render(lipgloss.NewStyle().Foreground(ui.White).Bold(true), item.Name)
			if t != artifact.TypeSkill {
				fmt.Printf("    %s\n", name)
				continue
			}

			rec := records[item.Name]
			line := fmt.Sprintf("    %s %s", name, ui.RenderCode(rec.Trigger()))
			if needsSetup(item.Path, string(envExample)) {
				line += " " + ui.Render(lipgloss.NewStyle().Foreground(ui.Amber), "[needs setup]")
			}
			fmt.Println(line)

			if rec.Description == "" {
				continue
			}
			if listShort {
				fmt.Printf("    %s\n", ui.RenderMuted(ui.Truncate(rec.Description, descWidth)))
			} else {
				for _, l := range ui.WrapText(rec.Description, descWidth) {
					fmt.Printf("    %s\n", ui.RenderMuted(l))
				}
			}
		}
		fmt.Println()
	}

	fmt.Println(lipgloss.NewStyle().Foreground(ui.DarkGray).Render(fmt.Sprintf("  %d shown, %d skills, %d rules, %d workflows",
		shown, len(cat.Skills), len(cat.Rules), len(cat.Workflows))))
	fmt.Println(ui.PageFooter())
}

// needsSetup reports whether a skill has a runtime or env requirement the
// machine does not meet
func needsSetup(skillDir, envExample string) bool {
	for _, req := range doctor.SkillRequirements(skillDir) {
		if !doctor.Verify(req, envExample).Satisfied {
			return true
		}
	}
	return false
}
