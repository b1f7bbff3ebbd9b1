package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/doctor"
	"github.com/kennyg/lmagent/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project setup",
	Long: `Check entry documents, the content root, installed tools,
environment hygiene and the setup needs of each skill.

Nothing is modified. Exits 1 when an issue is found.

Examples:
  lmagent doctor
  lmagent doctor --json`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}

func runDoctor(cmd *cobra.Command, args []string) {
	e := loadEnv()

	report := doctor.Run(doctor.Options{
		ProjectRoot: e.paths.ProjectRoot,
		ContentRoot: e.paths.ContentRoot,
		Profiles:    e.profiles,
	})

	if doctorJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			exitWithError(err.Error())
		}
		if report.Issues() > 0 {
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Diagnosing"))

	for _, group := range report.Groups() {
		fmt.Println()
		fmt.Println("  " + ui.Render(ui.Subtitle, string(group)))
		for _, c := range report.InGroup(group) {
			line := fmt.Sprintf("    %s %s", doctorIcon(c.Status), c.Name)
			if c.Detail != "" {
				line += " " + ui.RenderMuted(c.Detail)
			}
			fmt.Println(line)
		}
	}

	fmt.Println()
	issues, warnings := report.Issues(), report.Count(doctor.StatusWarn)
	switch {
	case issues > 0:
		fmt.Println(ui.ErrorLine(fmt.Sprintf("%d issues, %d warnings", issues, warnings)))
	case warnings > 0:
		fmt.Println(ui.WarningLine(fmt.Sprintf("No issues, %d warnings", warnings)))
	default:
		fmt.Println(ui.SuccessLine("All checks passed"))
	}
	fmt.Println(ui.PageFooter())

	if issues > 0 {
		os.Exit(1)
	}
}

func doctorIcon(s doctor.Status) string {
	if !ui.IsTTY {
		return ui.StatusBadge(string(s))
	}
	switch s {
	case doctor.StatusOK:
		return ui.Success.Render("✓")
	case doctor.StatusWarn:
		return ui.Warning.Render("!")
	case doctor.StatusIssue:
		return ui.Error.Render("✗")
	default:
		return ui.Info.Render("·")
	}
}
