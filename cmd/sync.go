package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/logger"
	"github.com/kennyg/lmagent/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate the skills table in AGENTS.md",
	Long: `Rebuild the skills catalog between the registry markers of
AGENTS.md and the content root's catalog document from each
skill's frontmatter.

Examples:
  lmagent sync
  lmagent sync --dry-run    # Show the diff, write nothing
  lmagent sync --watch      # Re-sync whenever a skill changes`,
	Args: cobra.NoArgs,
	Run:  runSync,
}

var (
	syncDry   bool
	syncWatch bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncDry, "dry-run", false, "Show what would change without writing")
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "Keep running and sync on every change")
}

func runSync(cmd *cobra.Command, args []string) {
	e := loadEnv()

	if syncDry && syncWatch {
		exitWithError("--dry-run and --watch cannot be combined")
	}

	results := syncCatalog(e.paths, syncDry)
	if syncDry {
		printDiffs(results)
	}

	if !syncWatch {
		fmt.Println(ui.PageFooter())
		return
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	skillsDir := e.paths.SourceDir(artifact.TypeSkill)
	fmt.Println()
	fmt.Println(ui.InfoLine("Watching " + skillsDir + " (Ctrl+C to stop)"))

	err := catalog.Watch(ctx, skillsDir, catalog.DefaultDebounce, func() {
		logger.G(ctx).Debug("re-syncing catalog")
		fmt.Println()
		fmt.Println(ui.RenderMuted("  " + time.Now().Format("15:04:05")))
		syncCatalog(e.paths, false)
	})
	if err != nil {
		exitWithError(err.Error())
	}
	fmt.Println(ui.PageFooter())
}

func printDiffs(results []catalog.Result) {
	for _, r := range results {
		if r.Diff == "" {
			continue
		}
		fmt.Println()
		for _, line := range strings.Split(strings.TrimRight(r.Diff, "\n"), "\n") {
			switch {
			case len(line) > 0 && line[0] == '+':
				fmt.Println(ui.RenderSuccess(line))
			case len(line) > 0 && line[0] == '-':
				fmt.Println(ui.RenderError(line))
			case strings.HasPrefix(line, "@@"):
				fmt.Println(ui.RenderCode(line))
			default:
				fmt.Println(ui.RenderMuted(line))
			}
		}
	}
}
