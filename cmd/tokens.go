package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/detect"
	"github.com/kennyg/lmagent/internal/tokens"
	"github.com/kennyg/lmagent/internal/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Estimate the context cost of installed content",
	Long: `Estimate how many tokens the entry documents, skills, rules and
workflows cost (about 4 characters per token), and what one agent
session loads: every entry document plus one active skill.

Examples:
  lmagent tokens
  lmagent tokens --json
  lmagent tokens --report   # Write token-report.md into the content root`,
	Args: cobra.NoArgs,
	Run:  runTokens,
}

var (
	tokensJSON   bool
	tokensReport bool
	tokensTop    int
)

func init() {
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "Output as JSON")
	tokensCmd.Flags().BoolVar(&tokensReport, "report", false, "Write a markdown report into the content root")
	tokensCmd.Flags().IntVar(&tokensTop, "top", 5, "Number of largest files to list")
}

func runTokens(cmd *cobra.Command, args []string) {
	e := loadEnv()

	report, err := tokens.Analyze(tokens.Options{
		ProjectRoot: e.paths.ProjectRoot,
		ContentRoot: e.paths.ContentRoot,
		Profiles:    detect.Profiles(detect.Detect(e.profiles, e.paths.ProjectRoot)),
		Largest:     tokensTop,
	})
	if err != nil {
		exitWithError(err.Error())
	}

	if tokensJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			exitWithError(err.Error())
		}
		return
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("Token Usage"))
	fmt.Println()

	fmt.Println("  " + ui.TableHeader(fmt.Sprintf("%-14s", "Category"), fmt.Sprintf("%6s", "Files"), fmt.Sprintf("%10s", "Tokens"), fmt.Sprintf("%9s", "Size")))
	rows := []struct {
		name string
		cat  tokens.Category
	}{
		{"Entry points", report.Categories.EntryPoints},
		{"Skills", report.Categories.Skills},
		{"Rules", report.Categories.Rules},
		{"Workflows", report.Categories.Workflows},
		{"Total", report.Total},
	}
	for _, row := range rows {
		fmt.Println("  " + ui.TableRow(
			fmt.Sprintf("%-14s", row.name),
			fmt.Sprintf("%6d", row.cat.Files),
			fmt.Sprintf("%10s", "~"+tokens.FormatNum(row.cat.Tokens)),
			fmt.Sprintf("%9s", tokens.FormatKB(row.cat.Bytes)),
		))
	}

	fmt.Println()
	fmt.Println("  " + ui.Render(ui.Subtitle, "Per session"))
	fmt.Println(ui.TableRow("    Entry points  ", "~"+tokens.FormatNum(report.Session.EntryPoints)))
	fmt.Println(ui.TableRow("    Active skill  ", "~"+tokens.FormatNum(report.Session.AvgSkill)+" (average)"))
	fmt.Println(ui.TableRow("    Total         ", ui.RenderHighlight("~"+tokens.FormatNum(report.Session.Tokens))))

	if len(report.Largest) > 0 {
		fmt.Println()
		fmt.Println("  " + ui.Render(ui.Subtitle, "Largest files"))
		for _, f := range report.Largest {
			fmt.Println(ui.TableRow("    "+ui.Truncate(f.Path, 56), "~"+tokens.FormatNum(f.Tokens)))
		}
	}

	if tokensReport {
		path, err := report.WriteReport(e.paths.ContentRoot, time.Now())
		if err != nil {
			exitWithError(err.Error())
		}
		fmt.Println()
		fmt.Println(ui.SuccessLine("Report written to " + displayPath(e.paths.ProjectRoot, path)))
	}
	fmt.Println(ui.PageFooter())
}
