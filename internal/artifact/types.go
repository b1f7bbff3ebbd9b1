package artifact

// Type represents the kind of content item
type Type string

const (
	TypeSkill    Type = "skill"
	TypeRule     Type = "rule"
	TypeWorkflow Type = "workflow"
)

// AllTypes returns the content types in install order
func AllTypes() []Type {
	return []Type{TypeSkill, TypeRule, TypeWorkflow}
}

// DirName returns the content-root subdirectory holding this type
func (t Type) DirName() string {
	switch t {
	case TypeSkill:
		return SkillsDirName
	case TypeRule:
		return RulesDirName
	case TypeWorkflow:
		return WorkflowsDirName
	default:
		return ""
	}
}

// Nested returns true for types stored as directories
func (t Type) Nested() bool {
	return t == TypeSkill
}

// Plural returns a human label, e.g. "skills"
func (t Type) Plural() string {
	return string(t) + "s"
}

// Item is a single skill directory or rule/workflow file under a content root
type Item struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
	Path string `json:"path"` // Absolute source path
}

// Selection is the set of item names chosen for an install
type Selection struct {
	Skills    []string `json:"skills,omitempty"`
	Rules     []string `json:"rules,omitempty"`
	Workflows []string `json:"workflows,omitempty"`
}

// Names returns the selected names for a type
func (s Selection) Names(t Type) []string {
	switch t {
	case TypeSkill:
		return s.Skills
	case TypeRule:
		return s.Rules
	case TypeWorkflow:
		return s.Workflows
	default:
		return nil
	}
}

// Count returns the total number of selected items
func (s Selection) Count() int {
	return len(s.Skills) + len(s.Rules) + len(s.Workflows)
}

// IsEmpty returns true if nothing is selected
func (s Selection) IsEmpty() bool {
	return s.Count() == 0
}
