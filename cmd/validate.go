package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/ui"
	"github.com/kennyg/lmagent/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [filter]",
	Short: "Validate skill descriptors",
	Long: `Check every skill in the content root: required frontmatter
fields, the skill type, triggers, body sections and length.

The optional filter is a name substring or a glob.

Examples:
  lmagent validate
  lmagent validate backend
  lmagent validate 'qa-*' --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output as JSON")
}

func runValidate(cmd *cobra.Command, args []string) {
	e := loadEnv()

	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	summary, err := validate.ValidateAll(e.paths.SourceDir(artifact.TypeSkill), filter)
	if err != nil {
		if errors.Cause(err) == validate.ErrNoMatch {
			exitWithError(fmt.Sprintf("no skills match %q (see 'lmagent validate' for the full list)", filter))
		}
		exitWithError(err.Error())
	}

	if validateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			exitWithError(err.Error())
		}
		if !summary.Passed() {
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Validating Skills"))
	fmt.Println()

	for _, r := range summary.Results {
		switch {
		case !r.OK():
			fmt.Printf("  %s %s\n", ui.Error.Render("✗"), r.Name)
		case len(r.Warnings) > 0:
			fmt.Printf("  %s %s\n", ui.Warning.Render("!"), r.Name)
		default:
			extras := ""
			if len(r.Extras) > 0 {
				extras = " " + ui.RenderMuted("+"+strings.Join(r.Extras, ", "))
			}
			fmt.Printf("  %s %s%s\n", ui.Success.Render("✓"), r.Name, extras)
		}
		for _, msg := range r.Errors {
			fmt.Println(ui.RenderError("      " + msg))
		}
		for _, msg := range r.Warnings {
			fmt.Println(ui.RenderWarning("      " + msg))
		}
	}

	fmt.Println()
	counts := fmt.Sprintf("%d skills, %d errors, %d warnings", len(summary.Results), summary.Errors, summary.Warnings)
	if !summary.Passed() {
		fmt.Println(ui.ErrorLine(counts))
		fmt.Println(ui.PageFooter())
		os.Exit(1)
	}
	fmt.Println(ui.SuccessLine(counts))
	fmt.Println(ui.PageFooter())
}
