package config

import (
	"path/filepath"
	"strings"

	"github.com/kennyg/lmagent/internal/artifact"
)

// Tool identifies a supported AI coding assistant
type Tool string

const (
	ToolCursor   Tool = "cursor"
	ToolWindsurf Tool = "windsurf"
	ToolCline    Tool = "cline"
	ToolVSCode   Tool = "vscode"
	ToolClaude   Tool = "claude"
	ToolGemini   Tool = "gemini"
	ToolGeneric  Tool = "generic"
)

// DefaultTool is used by non-interactive installs when nothing is detected
const DefaultTool = ToolCursor

// ToolProfile describes where one assistant expects its content.
// All paths are relative to an installation root (project or home).
type ToolProfile struct {
	ID           Tool     `toml:"id" json:"id"`
	DisplayName  string   `toml:"name" json:"name"`
	RulesDir     string   `toml:"rules_dir" json:"rules_dir,omitempty"`
	SkillsDir    string   `toml:"skills_dir" json:"skills_dir,omitempty"`
	WorkflowsDir string   `toml:"workflows_dir" json:"workflows_dir,omitempty"`
	Marker       string   `toml:"marker" json:"marker,omitempty"`           // File or dir whose presence signals the tool
	ConfigFile   string   `toml:"config_file" json:"config_file,omitempty"` // Root document the tool reads at startup
	BridgeFile   string   `toml:"bridge_file" json:"bridge_file,omitempty"` // Pointer document written into RulesDir
	ForceCopy    bool     `toml:"force_copy" json:"force_copy,omitempty"`   // Links are unreliable in this ecosystem
	HomeMarkers  []string `toml:"home_markers" json:"home_markers,omitempty"`
	Manual       bool     `toml:"-" json:"manual,omitempty"` // Never auto-detected
}

// Dir returns the profile directory for a content type
func (p ToolProfile) Dir(t artifact.Type) string {
	switch t {
	case artifact.TypeSkill:
		return p.SkillsDir
	case artifact.TypeRule:
		return p.RulesDir
	case artifact.TypeWorkflow:
		return p.WorkflowsDir
	default:
		return ""
	}
}

// BridgeName returns the bridge filename to write, or "" for none.
// Tools that read neither a config file nor an explicit bridge still get
// the default bridge in their rules dir.
func (p ToolProfile) BridgeName() string {
	if p.RulesDir == "" {
		return ""
	}
	if p.BridgeFile != "" {
		return p.BridgeFile
	}
	if p.ConfigFile == "" {
		return artifact.DefaultBridgeFilename
	}
	return ""
}

// HasStructuredConfig returns true if the config file is JSON or YAML,
// which must never receive markdown.
func (p ToolProfile) HasStructuredConfig() bool {
	switch strings.ToLower(filepath.Ext(p.ConfigFile)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// projectProfile builds the common `.<name>/{rules,skills,workflows}` layout
func projectProfile(id Tool, name, dir string) ToolProfile {
	return ToolProfile{
		ID:           id,
		DisplayName:  name,
		RulesDir:     dir + "/rules",
		SkillsDir:    dir + "/skills",
		WorkflowsDir: dir + "/workflows",
		Marker:       dir,
		HomeMarkers:  []string{dir},
	}
}

func withBridge(p ToolProfile, bridge string) ToolProfile {
	p.BridgeFile = bridge
	return p
}

// KnownTools returns all built-in tool profiles. The slice is rebuilt on
// every call so callers can never mutate the table.
func KnownTools() []ToolProfile {
	return []ToolProfile{
		// Editors with a root config file
		{
			ID:           ToolCursor,
			DisplayName:  "Cursor",
			RulesDir:     ".cursor/rules",
			SkillsDir:    ".cursor/skills",
			WorkflowsDir: ".cursor/workflows",
			Marker:       ".cursorrules",
			ConfigFile:   ".cursorrules",
			BridgeFile:   "lmagent.mdc",
			ForceCopy:    true,
			HomeMarkers:  []string{".cursor"},
		},
		{
			ID:           ToolWindsurf,
			DisplayName:  "Windsurf",
			RulesDir:     ".windsurf/rules",
			SkillsDir:    ".windsurf/skills",
			WorkflowsDir: ".windsurf/workflows",
			Marker:       ".windsurfrules",
			ConfigFile:   ".windsurfrules",
			BridgeFile:   "lmagent.md",
			ForceCopy:    true,
			HomeMarkers:  []string{".windsurf", ".codeium/windsurf"},
		},
		{
			ID:           ToolCline,
			DisplayName:  "Cline",
			RulesDir:     ".clinerules",
			SkillsDir:    ".cline/skills",
			WorkflowsDir: ".cline/workflows",
			Marker:       ".clinerules",
			BridgeFile:   "00-lmagent.md",
			ForceCopy:    true,
			HomeMarkers:  []string{".cline"},
		},
		{
			ID:           "roo",
			DisplayName:  "Roo Code",
			RulesDir:     ".clinerules",
			SkillsDir:    ".roo/skills",
			WorkflowsDir: ".roo/workflows",
			Marker:       ".roo",
			BridgeFile:   "00-lmagent.md",
			ForceCopy:    true,
			HomeMarkers:  []string{".roo"},
		},
		{
			ID:           ToolVSCode,
			DisplayName:  "VSCode Copilot",
			RulesDir:     ".github/instructions",
			SkillsDir:    ".github/skills",
			WorkflowsDir: ".github/prompts",
			Marker:       ".vscode",
			ConfigFile:   ".github/copilot-instructions.md",
			HomeMarkers:  []string{".vscode"},
		},
		withForceCopy(withBridge(projectProfile("trae", "Trae", ".trae"), "lmagent.md")),
		{
			ID:           ToolClaude,
			DisplayName:  "Claude Code",
			RulesDir:     ".claude/rules",
			SkillsDir:    ".claude/skills",
			WorkflowsDir: ".claude/workflows",
			Marker:       ".claude",
			ConfigFile:   artifact.ContextDocument,
			ForceCopy:    true,
			HomeMarkers:  []string{".claude"},
		},

		// Agents following the dot-directory layout
		withoutHome(projectProfile("amp", "Amp / Kimi / Replit", ".agents")),
		withHome(projectProfile("antigravity", "Antigravity", ".agent"), ".gemini/antigravity"),
		projectProfile("augment", "Augment", ".augment"),
		{
			ID:           "openclaw",
			DisplayName:  "OpenClaw",
			RulesDir:     "rules",
			SkillsDir:    "skills",
			WorkflowsDir: "workflows",
			Marker:       "openclaw.yaml",
			HomeMarkers:  []string{".openclaw", ".config/openclaw"},
		},
		projectProfile("codebuddy", "CodeBuddy", ".codebuddy"),
		projectProfile("codex", "Codex", ".codex"),
		projectProfile("command-code", "Command Code", ".commandcode"),
		withBridge(projectProfile("continue", "Continue", ".continue"), "00-lmagent.md"),
		projectProfile("crush", "Crush", ".crush"),
		projectProfile("droid", "Droid", ".factory"),
		{
			ID:           ToolGemini,
			DisplayName:  "Gemini CLI",
			RulesDir:     ".agents/rules",
			SkillsDir:    ".agents/skills",
			WorkflowsDir: ".agents/workflows",
			Marker:       ".gemini",
			HomeMarkers:  []string{".gemini"},
		},
		withHome(withBridge(projectProfile("goose", "Goose", ".goose"), "lmagent.md"), ".config/goose"),
		projectProfile("junie", "Junie", ".junie"),
		projectProfile("iflow", "iFlow CLI", ".iflow"),
		projectProfile("kilo", "Kilo Code", ".kilocode"),
		projectProfile("kiro", "Kiro CLI", ".kiro"),
		projectProfile("kode", "Kode", ".kode"),
		projectProfile("mcpjam", "MCPJam", ".mcpjam"),
		withHome(projectProfile("mistral", "Mistral Vibe", ".vibe"), ".mistral"),
		projectProfile("mux", "Mux", ".mux"),
		projectProfile("opencode", "OpenCode", ".opencode"),
		{
			ID:           "openhands",
			DisplayName:  "OpenHands",
			RulesDir:     ".openhands/microagents",
			SkillsDir:    ".openhands/skills",
			WorkflowsDir: ".openhands/workflows",
			Marker:       ".openhands",
			BridgeFile:   "repo.md",
			HomeMarkers:  []string{".openhands"},
		},
		projectProfile("pi", "Pi", ".pi"),
		projectProfile("qoder", "Qoder", ".qoder"),
		projectProfile("qwen", "Qwen Code", ".qwen"),
		withBridge(projectProfile("trae-cn", "Trae CN", ".trae-cn"), "lmagent.md"),
		projectProfile("zencoder", "Zencoder", ".zencoder"),
		projectProfile("neovate", "Neovate", ".neovate"),
		projectProfile("pochi", "Pochi", ".pochi"),
		projectProfile("adal", "AdaL", ".adal"),
		{
			ID:           "zed",
			DisplayName:  "Zed",
			RulesDir:     ".zed/rules",
			SkillsDir:    ".zed/skills",
			WorkflowsDir: ".zed/workflows",
			Marker:       ".zed",
			ConfigFile:   ".rules",
			HomeMarkers:  []string{".config/zed"},
		},

		// Fallback layout, only installed on request
		{
			ID:           ToolGeneric,
			DisplayName:  "Generic / Other",
			RulesDir:     artifact.ContentDirName + "/" + artifact.RulesDirName,
			SkillsDir:    artifact.ContentDirName + "/" + artifact.SkillsDirName,
			WorkflowsDir: artifact.ContentDirName + "/" + artifact.WorkflowsDirName,
			Marker:       artifact.ContentDirName,
			ConfigFile:   artifact.CatalogDocument,
			Manual:       true,
		},
	}
}

func withForceCopy(p ToolProfile) ToolProfile {
	p.ForceCopy = true
	return p
}

func withHome(p ToolProfile, extra ...string) ToolProfile {
	p.HomeMarkers = append(p.HomeMarkers, extra...)
	return p
}

// withoutHome drops home markers for tools whose dot-dir doubles as the
// global content root.
func withoutHome(p ToolProfile) ToolProfile {
	p.HomeMarkers = nil
	return p
}

// GetToolProfile returns the built-in profile for a tool, or nil
func GetToolProfile(id Tool) *ToolProfile {
	return FindProfile(KnownTools(), id)
}

// FindProfile returns the profile with the given ID from a list, or nil
func FindProfile(profiles []ToolProfile, id Tool) *ToolProfile {
	for _, p := range profiles {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

// ToolIDs returns the IDs of the given profiles, in order
func ToolIDs(profiles []ToolProfile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = string(p.ID)
	}
	return ids
}
