package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/scaffold"
	"github.com/kennyg/lmagent/internal/schema"
	"github.com/kennyg/lmagent/internal/tui"
	"github.com/kennyg/lmagent/internal/ui"
	"github.com/kennyg/lmagent/internal/validate"
)

var createSkillCmd = &cobra.Command{
	Use:     "create-skill",
	Aliases: []string{"new-skill"},
	Short:   "Scaffold a new skill in the content root",
	Long: `Create skills/<slug>/SKILL.md with complete frontmatter and a body
that passes 'lmagent validate', plus scripts/, references/ and assets/.

Without --name on a terminal, the details are asked for interactively.

Examples:
  lmagent create-skill
  lmagent create-skill --name "Security Auditor" --role "Finds vulnerabilities" --trigger /sec`,
	Args: cobra.NoArgs,
	Run:  runCreateSkill,
}

var (
	createName        string
	createDescription string
	createRole        string
	createType        string
	createIcon        string
	createTriggers    []string
	createDirs        bool
)

func init() {
	createSkillCmd.Flags().StringVarP(&createName, "name", "n", "", "Skill display name")
	createSkillCmd.Flags().StringVarP(&createDescription, "description", "d", "", "One-line description")
	createSkillCmd.Flags().StringVarP(&createRole, "role", "r", "", "The role the agent takes on")
	createSkillCmd.Flags().StringVarP(&createType, "type", "t", "", "Skill type: agent_persona or methodology")
	createSkillCmd.Flags().StringVar(&createIcon, "icon", "", "Icon shown in the catalog")
	createSkillCmd.Flags().StringSliceVar(&createTriggers, "trigger", nil, "Slash triggers (repeatable)")
	createSkillCmd.Flags().BoolVar(&createDirs, "dirs", true, "Create scripts/, references/ and assets/")
}

func runCreateSkill(cmd *cobra.Command, args []string) {
	e := loadEnv()

	opts := scaffold.Options{
		Name:        createName,
		Description: createDescription,
		Role:        createRole,
		Type:        schema.SkillType(createType),
		Icon:        createIcon,
		Triggers:    createTriggers,
		SubDirs:     createDirs,
	}

	if opts.Name == "" {
		if !tui.Interactive() {
			exitWithError("--name is required when not running in a terminal")
		}
		opts = askSkillOptions(terminalPrompter{}, opts)
	}
	if opts.Type != "" && !opts.Type.IsValid() {
		exitWithError(fmt.Sprintf("unknown skill type %q (want agent_persona or methodology)", opts.Type))
	}

	dir, err := scaffold.Create(e.paths.SourceDir(artifact.TypeSkill), opts)
	if err != nil {
		exitWithError(err.Error())
	}

	fmt.Println()
	fmt.Println(ui.SectionHeader("New Skill"))
	fmt.Println()
	fmt.Println(ui.SuccessLine("Created " + displayPath(e.paths.ProjectRoot, dir)))

	res := validate.ValidateSkill(dir)
	for _, msg := range append(res.Errors, res.Warnings...) {
		fmt.Println(ui.WarningLine(msg))
	}

	fmt.Println()
	fmt.Println(ui.Muted.Render("  Next:"))
	fmt.Println(ui.Muted.Render("    Edit ") + ui.RenderCode(displayPath(e.paths.ProjectRoot, dir)+"/SKILL.md"))
	fmt.Println(ui.Muted.Render("    Run  ") + ui.RenderCode("lmagent sync") + ui.Muted.Render(" to list it in AGENTS.md"))
	fmt.Println(ui.PageFooter())
}

// askSkillOptions fills the options from a form, then asks for the type
func askSkillOptions(ask prompter, opts scaffold.Options) scaffold.Options {
	values, err := ask.Form("New skill", []tui.Field{
		{Key: "name", Label: "Name", Placeholder: "Security Auditor", Required: true},
		{Key: "description", Label: "Description", Placeholder: "Reviews code for vulnerabilities", Value: opts.Description},
		{Key: "role", Label: "Role", Placeholder: "Application security expert", Value: opts.Role},
		{Key: "icon", Label: "Icon", Placeholder: scaffold.DefaultIcon, Value: opts.Icon},
		{Key: "triggers", Label: "Triggers", Placeholder: "/sec, /audit", Value: strings.Join(opts.Triggers, ", ")},
	})
	exitIfCancelled(err)

	opts.Name = values["name"]
	opts.Description = values["description"]
	opts.Role = values["role"]
	opts.Icon = values["icon"]
	opts.Triggers = nil
	for _, t := range strings.Split(values["triggers"], ",") {
		if t = strings.TrimSpace(t); t != "" {
			opts.Triggers = append(opts.Triggers, t)
		}
	}

	if opts.Type == "" {
		key, err := ask.Choose("Skill type", []tui.Option{
			{Key: string(schema.TypeAgentPersona), Name: "Agent persona", Help: "A role the agent takes on, like /dev or /arch"},
			{Key: string(schema.TypeMethodology), Name: "Methodology", Help: "A process the agent follows"},
		})
		exitIfCancelled(err)
		opts.Type = schema.SkillType(key)
	}
	return opts
}
