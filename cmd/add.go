package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/fetch"
	"github.com/kennyg/lmagent/internal/source"
	"github.com/kennyg/lmagent/internal/ui"
	"github.com/kennyg/lmagent/internal/validate"
)

var addCmd = &cobra.Command{
	Use:   "add <source>",
	Short: "Add a skill from GitHub or a local directory",
	Long: `Fetch a skill directory into the content root's skills/.

Sources can be:
  owner/repo:path         Skill directory in a GitHub repo
  owner/repo:path@ref     Specific branch, tag or commit
  https://github.com/...  tree/blob URL of the skill or its SKILL.md
  ./local/path            Local skill directory (copied)

The directory must contain SKILL.md. Only text and script files are
accepted (100KB each, 1MB per skill). Private repos use GITHUB_TOKEN,
GH_TOKEN or your gh CLI login.

Examples:
  lmagent add acme/agent-skills:skills/backend-engineer
  lmagent add acme/agent-skills:skills/qa@v2 --force
  lmagent add ../shared/skills/reviewer`,
	Args: cobra.ExactArgs(1),
	Run:  runAdd,
}

var (
	addTimeout time.Duration
	addForce   bool
)

func init() {
	addCmd.Flags().DurationVar(&addTimeout, "timeout", 60*time.Second, "Give up after this long")
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "Replace an existing skill of the same name")
}

func runAdd(cmd *cobra.Command, args []string) {
	src, err := source.Parse(args[0])
	if err != nil {
		exitWithError(err.Error())
	}
	e := loadEnv()

	fmt.Println()
	fmt.Println(ui.SectionHeader("Adding Skill"))
	fmt.Println()
	fmt.Println(ui.InfoLine("Source: " + src.String()))
	fmt.Println()

	ctx, cancel := context.WithTimeout(commandContext(cmd), addTimeout)
	defer cancel()

	res, err := fetch.New().Skill(ctx, src, e.paths.SourceDir(artifact.TypeSkill), fetch.Options{Force: addForce})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			exitWithError(fmt.Sprintf("timed out after %s (raise --timeout)", addTimeout))
		}
		exitWithError(err.Error())
	}

	for _, f := range res.Files {
		fmt.Printf("  %s %s\n", ui.Success.Render("✓"), f)
	}
	for _, f := range res.Skipped {
		fmt.Println(ui.Muted.Render("  - " + f + " (skipped)"))
	}
	fmt.Println()
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Added %s to %s", ui.RenderHighlight(res.Name), displayPath(e.paths.ProjectRoot, res.Dir))))

	if v := validate.ValidateSkill(res.Dir); !v.OK() {
		fmt.Println(ui.WarningLine(fmt.Sprintf("%s has %d validation errors, see 'lmagent validate %s'", res.Name, len(v.Errors), res.Name)))
	}

	syncCatalog(e.paths, false)

	fmt.Println()
	fmt.Println(ui.Muted.Render("  Run ") + ui.RenderCode("lmagent install") + ui.Muted.Render(" to place it in your tools"))
	fmt.Println(ui.PageFooter())
}
