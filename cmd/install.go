package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/detect"
	"github.com/kennyg/lmagent/internal/installer"
	"github.com/kennyg/lmagent/internal/tui"
	"github.com/kennyg/lmagent/internal/ui"
)

var installCmd = &cobra.Command{
	Use:     "install",
	Aliases: []string{"update"},
	Short:   "Install skills, rules and workflows into your tools",
	Long: `Install the content root into every selected tool.

Tools are detected from the project (or the home directory with
--target user). On a terminal you pick tools, method and content
interactively; with --yes everything detected gets everything.

Examples:
  lmagent install
  lmagent install --yes
  lmagent install --tools cursor,claude --method copy
  lmagent install --skills dev,qa --rules none --yes
  lmagent install --target user --yes`,
	Args: cobra.NoArgs,
	Run:  runInstall,
}

var (
	installForce     bool
	installYes       bool
	installMethod    string
	installTarget    string
	installTools     []string
	installSkills    []string
	installRules     []string
	installWorkflows []string
)

const (
	targetProject = "project"
	targetUser    = "user"
)

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "Skip confirmation; with --yes, fall back to the default tool when none is detected")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Non-interactive: detected tools, all content")
	installCmd.Flags().StringVarP(&installMethod, "method", "m", "", "Install method: symlink or copy (default from config)")
	installCmd.Flags().StringVarP(&installTarget, "target", "t", targetProject, "Install into the project or the user's home: project or user")
	installCmd.Flags().StringSliceVar(&installTools, "tools", nil, "Comma-separated tool ids (see 'lmagent tools')")
	installCmd.Flags().StringSliceVar(&installSkills, "skills", nil, "Skills to install: names, 'all' or 'none'")
	installCmd.Flags().StringSliceVar(&installRules, "rules", nil, "Rules to install: names, 'all' or 'none'")
	installCmd.Flags().StringSliceVar(&installWorkflows, "workflows", nil, "Workflows to install: names, 'all' or 'none'")
}

func runInstall(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	e := loadEnv()

	var root string
	var scope detect.Scope
	switch installTarget {
	case targetProject:
		root, scope = e.paths.ProjectRoot, detect.ScopeProject
	case targetUser:
		root, scope = e.paths.Home, detect.ScopeHome
	default:
		exitWithError(fmt.Sprintf("unknown target %q (want project or user)", installTarget))
	}

	cat, err := catalog.Load(e.paths.ContentRoot)
	if err != nil {
		exitWithError(err.Error())
	}
	if cat.Len() == 0 {
		exitWithError(fmt.Sprintf("no skills, rules or workflows in %s (try 'lmagent init' or --source)", e.paths.ContentRoot))
	}

	interactive := !installYes
	var ask prompter
	if interactive {
		ask = newPrompter()
	}

	fmt.Println(ui.Logo(config.FrameworkVersion))
	fmt.Println(ui.InfoLine("Content: " + e.paths.ContentRoot))
	fmt.Println(ui.InfoLine("Target:  " + root))
	fmt.Println()

	profiles := selectTools(ask, e, scope, root)

	method := e.settings.Method
	if installMethod != "" {
		if method, err = config.ParseMethod(installMethod); err != nil {
			exitWithError(err.Error())
		}
	} else if interactive {
		method = selectMethod(ask, method)
	}

	selection := artifact.Selection{
		Skills:    selectItems(ask, cat, artifact.TypeSkill, installSkills, cmd.Flags().Changed("skills")),
		Rules:     selectItems(ask, cat, artifact.TypeRule, installRules, cmd.Flags().Changed("rules")),
		Workflows: selectItems(ask, cat, artifact.TypeWorkflow, installWorkflows, cmd.Flags().Changed("workflows")),
	}
	if selection.IsEmpty() {
		exitWithError("nothing selected to install")
	}

	printPlanSummary(profiles, method, selection)
	if interactive && !installForce {
		ok, err := ask.Confirm("Proceed with the installation?", true)
		exitIfCancelled(err)
		if !ok {
			fmt.Println(ui.Muted.Render("  Nothing installed."))
			return
		}
		fmt.Println()
	}

	plan := installer.Plan{
		Root:        root,
		ContentRoot: e.paths.ContentRoot,
		Profiles:    profiles,
		Selection:   selection,
		Method:      method,
		Triggers:    installer.QuickTriggers(e.paths.SourceDir(artifact.TypeSkill), selection.Skills),
	}
	if _, err := executeInstall(ctx, e.paths, plan); err != nil {
		exitWithError(err.Error())
	}
}

// executeInstall runs the plan and prints its outcomes. Per-item failures
// are reported and leave the exit code alone; only a hard failure is
// returned.
func executeInstall(ctx context.Context, paths *config.Paths, plan installer.Plan) (*installer.Report, error) {
	report, err := installer.New(ctx).Install(ctx, plan)
	if err != nil {
		return nil, err
	}

	fmt.Println(ui.SectionHeader("Installing"))
	for _, p := range plan.Profiles {
		printToolOutcomes(p, plan.Root, report.ForTool(p.ID))
	}

	syncCatalog(paths, false)

	fmt.Println()
	summary := fmt.Sprintf("%d items placed in %d tools", report.Placed(), len(plan.Profiles))
	if n := report.Count(installer.StatusError); n > 0 {
		fmt.Println(ui.ErrorLine(fmt.Sprintf("%s, %d errors", summary, n)))
		printErrorBlock(report.Err())
	} else {
		fmt.Println(ui.SuccessLine(summary))
	}
	fmt.Println(ui.PageFooter())
	return report, nil
}

// printErrorBlock lists an aggregated error one failure per line
func printErrorBlock(err error) {
	if err == nil {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(err.Error()), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Println("    " + ui.RenderMuted(line))
		}
	}
}

// selectTools resolves --tools, or detects tools and lets the user adjust
func selectTools(ask prompter, e *env, scope detect.Scope, root string) []config.ToolProfile {
	if len(installTools) > 0 {
		var out []config.ToolProfile
		for _, id := range installTools {
			p := config.FindProfile(e.profiles, config.Tool(strings.TrimSpace(id)))
			if p == nil {
				exitWithError(fmt.Sprintf("unknown tool %q (known: %s)", id, strings.Join(config.ToolIDs(e.profiles), ", ")))
			}
			out = append(out, *p)
		}
		return out
	}

	detected := detect.In(scope, e.profiles, root)

	if ask == nil {
		if len(detected) > 0 {
			return detect.Profiles(detected)
		}
		if installForce {
			p := config.FindProfile(e.profiles, e.settings.DefaultTool)
			if p == nil {
				exitWithError(fmt.Sprintf("default tool %q has no profile", e.settings.DefaultTool))
			}
			fmt.Println(ui.WarningLine(fmt.Sprintf("No tools detected, using %s", p.DisplayName)))
			return []config.ToolProfile{*p}
		}
		exitWithError("no tools detected (pass --tools, or --yes --force for the default tool)")
	}

	evidence := make(map[config.Tool]string, len(detected))
	for _, r := range detected {
		evidence[r.Profile.ID] = r.Evidence
	}
	items := make([]tui.CheckItem, 0, len(e.profiles))
	for _, p := range e.profiles {
		detail := p.RulesDir
		ev, found := evidence[p.ID]
		if found {
			detail = "found " + ev
		}
		items = append(items, tui.CheckItem{
			Key:     string(p.ID),
			Label:   p.DisplayName,
			Detail:  detail,
			Checked: found,
		})
	}
	if len(detected) == 0 {
		// Nothing to pre-check, so offer the default
		for i := range items {
			if items[i].Key == string(e.settings.DefaultTool) {
				items[i].Checked = true
			}
		}
	}

	keys, err := ask.Checklist("Install into which tools?", items)
	exitIfCancelled(err)
	if len(keys) == 0 {
		exitWithError("no tools selected")
	}
	out := make([]config.ToolProfile, 0, len(keys))
	for _, k := range keys {
		out = append(out, *config.FindProfile(e.profiles, config.Tool(k)))
	}
	return out
}

func selectMethod(ask prompter, def config.Method) config.Method {
	options := []tui.Option{
		{Key: string(config.MethodSymlink), Name: "Symlink", Help: "Link to the content root; edits show up everywhere"},
		{Key: string(config.MethodCopy), Name: "Copy", Help: "Independent copies; re-run install to update"},
	}
	if def == config.MethodCopy {
		options[0], options[1] = options[1], options[0]
	}
	key, err := ask.Choose("Install method", options)
	exitIfCancelled(err)
	m, err := config.ParseMethod(key)
	if err != nil {
		exitWithError(err.Error())
	}
	return m
}

// selectItems resolves a content flag, or asks when the flag was not given.
// Non-interactive runs take everything.
func selectItems(ask prompter, cat *catalog.Catalog, t artifact.Type, flag []string, changed bool) []string {
	available := cat.Names(t)
	if changed {
		names, err := resolveNames(flag, available, t)
		if err != nil {
			exitWithError(err.Error())
		}
		return names
	}
	if ask == nil || len(available) == 0 {
		return available
	}

	items := make([]tui.CheckItem, 0, len(available))
	for _, name := range available {
		items = append(items, tui.CheckItem{Key: name, Label: name, Checked: true})
	}
	names, err := ask.Checklist(fmt.Sprintf("Which %s?", t.Plural()), items)
	exitIfCancelled(err)
	return names
}

// resolveNames expands 'all' and 'none' and checks names against the catalog
func resolveNames(flag, available []string, t artifact.Type) ([]string, error) {
	known := make(map[string]bool, len(available))
	for _, n := range available {
		known[n] = true
	}
	var out []string
	for _, raw := range flag {
		name := strings.TrimSpace(raw)
		switch name {
		case "":
			continue
		case "all":
			return available, nil
		case "none":
			return nil, nil
		}
		if !known[name] {
			return nil, errors.Errorf("unknown %s %q", t, name)
		}
		out = append(out, name)
	}
	return out, nil
}

func printPlanSummary(profiles []config.ToolProfile, method config.Method, sel artifact.Selection) {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.DisplayName)
	}
	fmt.Println(ui.SectionHeader("Plan"))
	fmt.Println(ui.TableRow("  Tools", strings.Join(names, ", ")))
	fmt.Println(ui.TableRow("  Method", string(method)))
	fmt.Println(ui.TableRow("  Content", fmt.Sprintf("%d skills, %d rules, %d workflows",
		len(sel.Skills), len(sel.Rules), len(sel.Workflows))))
	fmt.Println()
}

func printToolOutcomes(p config.ToolProfile, root string, outcomes []installer.Outcome) {
	fmt.Println()
	fmt.Println("  " + ui.Render(ui.Subtitle, p.DisplayName))
	for _, o := range outcomes {
		label := o.Item
		if label == "" {
			label = displayPath(root, o.Path)
		}
		if o.Type != "" {
			label = string(o.Type) + " " + label
		}
		detail := o.Detail
		if o.Err != nil {
			detail = o.Err.Error()
		}
		line := fmt.Sprintf("    %s %s", ui.StatusBadge(string(o.Status)), label)
		if detail != "" {
			line += " " + ui.RenderMuted(detail)
		}
		fmt.Println(line)
	}
}

// displayPath shortens a path to its form relative to root when possible
func displayPath(root, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// syncCatalog regenerates the skills table of the catalog documents
func syncCatalog(paths *config.Paths, dryRun bool) []catalog.Result {
	results, err := catalog.Sync(
		paths.SourceDir(artifact.TypeSkill),
		catalog.DefaultTargets(paths.ProjectRoot, paths.ContentRoot),
		catalog.Options{DryRun: dryRun},
	)
	if err != nil {
		fmt.Println(ui.WarningLine("Catalog sync skipped: " + err.Error()))
		return nil
	}
	fmt.Println()
	fmt.Println(ui.SectionHeader("Catalog"))
	for _, r := range results {
		line := fmt.Sprintf("    %s %s", ui.StatusBadge(strings.ToUpper(string(r.Status))), displayPath(paths.ProjectRoot, r.Path))
		if r.Err != nil {
			line += " " + ui.RenderMuted(r.Err.Error())
		}
		fmt.Println(line)
	}
	return results
}
