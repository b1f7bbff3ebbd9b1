package artifact

// File and directory name constants used throughout lmagent.
const (
	// ContentDirName is the default content root inside a project or home
	ContentDirName = ".agents"

	// SkillFilename is the descriptor every skill directory carries
	SkillFilename = "SKILL.md"

	// SkillsDirName is the standard directory name for skills
	SkillsDirName = "skills"

	// RulesDirName is the standard directory name for rules
	RulesDirName = "rules"

	// WorkflowsDirName is the standard directory name for workflows
	WorkflowsDirName = "workflows"

	// CatalogDocument is the canonical entry document bridges point to
	CatalogDocument = "AGENTS.md"

	// ContextDocument is the project context document
	ContextDocument = "CLAUDE.md"

	// MasterRulesFilename is the compact rules index inside the rules dir
	MasterRulesFilename = "00-master.md"

	// DefaultBridgeFilename is written into rules dirs of tools without a config file
	DefaultBridgeFilename = "lmagent.md"
)

// OptionalSkillDirs are sub-resources a skill may carry next to SKILL.md
var OptionalSkillDirs = []string{"scripts", "references", "assets"}

// FlatExtensions are the file extensions recognized as rules and workflows
var FlatExtensions = []string{".md", ".txt", ".cursorrules", ".toml"}

// LegacyRuleFiles are bootstrap files written by earlier generations
var LegacyRuleFiles = []string{"_bootstrap.md", "_bootstrap.mdc", "00-bootstrap.md"}
