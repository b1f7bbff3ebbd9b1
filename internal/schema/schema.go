// Package schema defines the skill descriptor and the frontmatter format
// that carries it.
package schema

// SkillType classifies what a skill describes
type SkillType string

const (
	TypeAgentPersona SkillType = "agent_persona" // A role the agent takes on (/dev, /arch)
	TypeMethodology  SkillType = "methodology"   // A process the agent follows
)

// AllTypes returns the recognized skill types
func AllTypes() []SkillType {
	return []SkillType{TypeAgentPersona, TypeMethodology}
}

// IsValid returns true if the type is recognized
func (t SkillType) IsValid() bool {
	switch t {
	case TypeAgentPersona, TypeMethodology:
		return true
	default:
		return false
	}
}

// Frontmatter field names
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldRole        = "role"
	FieldType        = "type"
	FieldVersion     = "version"
	FieldIcon        = "icon"
	FieldExpertise   = "expertise"
	FieldActivatesOn = "activates_on"
	FieldTriggers    = "triggers"
)

// RequiredFields lists every field a valid skill must carry, in report order.
var RequiredFields = []string{
	FieldName,
	FieldDescription,
	FieldRole,
	FieldType,
	FieldVersion,
	FieldIcon,
	FieldExpertise,
	FieldActivatesOn,
	FieldTriggers,
}

// ListFields are the required fields that must be written as lists.
var ListFields = []string{FieldExpertise, FieldActivatesOn, FieldTriggers}

// SkillDescriptor is the typed view of a SKILL.md frontmatter block.
// Field order here is the order used when serializing.
type SkillDescriptor struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Role        string    `yaml:"role"`
	Type        SkillType `yaml:"type"`
	Version     string    `yaml:"version"`
	Icon        string    `yaml:"icon"`
	Expertise   []string  `yaml:"expertise"`
	ActivatesOn []string  `yaml:"activates_on"`
	Triggers    []string  `yaml:"triggers"`
}

// PrimaryTrigger returns the first trigger, or "" if there is none
func (d *SkillDescriptor) PrimaryTrigger() string {
	if len(d.Triggers) == 0 {
		return ""
	}
	return d.Triggers[0]
}

// Descriptor projects parsed frontmatter onto a SkillDescriptor.
// Missing fields are left zero; list fields given as scalars are dropped.
func (fm Frontmatter) Descriptor() *SkillDescriptor {
	return &SkillDescriptor{
		Name:        fm.String(FieldName),
		Description: fm.String(FieldDescription),
		Role:        fm.String(FieldRole),
		Type:        SkillType(fm.String(FieldType)),
		Version:     fm.String(FieldVersion),
		Icon:        fm.String(FieldIcon),
		Expertise:   fm.List(FieldExpertise),
		ActivatesOn: fm.List(FieldActivatesOn),
		Triggers:    fm.List(FieldTriggers),
	}
}
