package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kennyg/lmagent/internal/schema"
	"github.com/kennyg/lmagent/internal/validate"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Backend Engineer", "backend-engineer"},
		{"  API   Designer!! ", "api-designer"},
		{"Diseño Técnico", "diseno-tecnico"},
		{"QA/Automation", "qa-automation"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCreatePassesValidation(t *testing.T) {
	skillsDir := t.TempDir()

	dir, err := Create(skillsDir, Options{Name: "Data Engineer", SubDirs: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Base(dir) != "data-engineer" {
		t.Errorf("dir = %s, want data-engineer", dir)
	}

	r := validate.ValidateSkill(dir)
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Errorf("scaffolded skill: errors = %v, warnings = %v", r.Errors, r.Warnings)
	}
	if len(r.Extras) != 3 {
		t.Errorf("Extras = %v, want scripts, references and assets", r.Extras)
	}
}

func TestCreateRoundTripsFrontmatter(t *testing.T) {
	skillsDir := t.TempDir()
	opts := Options{
		Name:        "Security Auditor",
		Description: "Audits code: finds vulnerabilities",
		Role:        "Security",
		Type:        schema.TypeMethodology,
		Icon:        "🛡️",
		Expertise:   []string{"OWASP", "threat modeling"},
		ActivatesOn: []string{"security review"},
		Triggers:    []string{"sec", "/audit"},
	}

	dir, err := Create(skillsDir, opts)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	if err != nil {
		t.Fatal(err)
	}

	fm, ok := schema.ParseFrontmatter(string(data))
	if !ok {
		t.Fatal("no frontmatter")
	}
	d := fm.Descriptor()
	if d.Description != opts.Description {
		t.Errorf("Description = %q, want %q", d.Description, opts.Description)
	}
	if d.Icon != "🛡️" {
		t.Errorf("Icon = %q", d.Icon)
	}
	if d.Type != schema.TypeMethodology {
		t.Errorf("Type = %q", d.Type)
	}
	if strings.Join(d.Triggers, ",") != "/sec,/audit" {
		t.Errorf("Triggers = %v, want [/sec /audit]", d.Triggers)
	}
	if strings.Join(d.Expertise, ",") != "OWASP,threat modeling" {
		t.Errorf("Expertise = %v", d.Expertise)
	}
	if opts.Triggers[0] != "sec" {
		t.Error("Create() modified the caller's triggers")
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	skillsDir := t.TempDir()
	if _, err := Create(skillsDir, Options{Name: "Dev"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(skillsDir, Options{Name: "dev"}); err == nil {
		t.Error("Create() over an existing skill succeeded")
	}
	if _, err := Create(skillsDir, Options{Name: "  "}); err == nil {
		t.Error("Create() with a blank name succeeded")
	}
}

func TestDefaultTrigger(t *testing.T) {
	if got := DefaultTrigger("backend-engineer"); got != "/backend" {
		t.Errorf("DefaultTrigger() = %q, want /backend", got)
	}
	if got := DefaultTrigger("pm"); got != "/pm" {
		t.Errorf("DefaultTrigger() = %q, want /pm", got)
	}
}
