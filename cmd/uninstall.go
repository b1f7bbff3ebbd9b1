package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/detect"
	"github.com/kennyg/lmagent/internal/uninstall"
	"github.com/kennyg/lmagent/internal/ui"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove installed content from the project's tools",
	Long: `Remove what lmagent placed in each detected tool: catalog skills,
rules and workflows, bridge files, legacy bootstrap files and the
bootstrap section of config files.

With --all, the tool directories and root entry documents go as well.
Shared rules directories and the content root are never removed.

Examples:
  lmagent uninstall
  lmagent uninstall --all --force`,
	Args: cobra.NoArgs,
	Run:  runUninstall,
}

var (
	uninstallForce bool
	uninstallAll   bool
)

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallForce, "force", "f", false, "Skip confirmation")
	uninstallCmd.Flags().BoolVar(&uninstallAll, "all", false, "Also remove tool directories and root entry documents")
}

func runUninstall(cmd *cobra.Command, args []string) {
	e := loadEnv()
	root := e.paths.ProjectRoot

	cat, err := catalog.Load(e.paths.ContentRoot)
	if err != nil {
		exitWithError(err.Error())
	}

	profiles := detect.Profiles(detect.Detect(e.profiles, root))
	entries := uninstall.Plan(root, e.paths.ContentRoot, profiles, cat, uninstallAll)

	fmt.Println()
	fmt.Println(ui.SectionHeader("Uninstall"))
	fmt.Println()
	if len(entries) == 0 {
		fmt.Println(ui.Muted.Render("  Nothing to remove."))
		fmt.Println(ui.PageFooter())
		return
	}

	for _, entry := range entries {
		fmt.Printf("    %s %s %s\n",
			ui.RenderMuted(fmt.Sprintf("%-9s", entry.Tool)),
			ui.RenderMuted(fmt.Sprintf("%-8s", entry.Kind)),
			displayPath(root, entry.Path))
	}
	fmt.Println()

	if !uninstallForce {
		ok, err := newPrompter().Confirm(fmt.Sprintf("Remove %d paths?", len(entries)), false)
		exitIfCancelled(err)
		if !ok {
			fmt.Println(ui.Muted.Render("  Nothing removed."))
			return
		}
		fmt.Println()
	}

	executeUninstall(root, entries)
}

// executeUninstall removes the entries and prints the outcomes. Failures
// are listed and do not change the exit code.
func executeUninstall(root string, entries []uninstall.Entry) *uninstall.Report {
	report := uninstall.Execute(entries)
	for _, o := range report.Outcomes {
		line := fmt.Sprintf("    %s %s", ui.StatusBadge(string(o.Status)), displayPath(root, o.Path))
		if o.Err != nil {
			line += " " + ui.RenderMuted(o.Err.Error())
		}
		fmt.Println(line)
	}

	fmt.Println()
	summary := fmt.Sprintf("Removed %d, cleaned %d",
		report.Count(uninstall.StatusRemoved), report.Count(uninstall.StatusExcised))
	if err := report.Err(); err != nil {
		fmt.Println(ui.ErrorLine(fmt.Sprintf("%s, %d errors", summary, report.Count(uninstall.StatusError))))
		printErrorBlock(err)
	} else {
		fmt.Println(ui.SuccessLine(summary))
	}
	fmt.Println(ui.PageFooter())
	return report
}
