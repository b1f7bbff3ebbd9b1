package source

import (
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Source
		wantErr bool
	}{
		{
			name:  "owner/repo",
			input: "acme/skills",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Ref: "main"},
		},
		{
			name:  "owner/repo with path",
			input: "acme/skills:skills/backend-engineer",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/backend-engineer", Ref: "main"},
		},
		{
			name:  "owner/repo with path and ref",
			input: "acme/skills:skills/dev/@v3.0.0",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/dev", Ref: "v3.0.0"},
		},
		{
			name:  "tree URL",
			input: "https://github.com/acme/skills/tree/develop/skills/qa",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/qa", Ref: "develop"},
		},
		{
			name:  "blob URL to SKILL.md",
			input: "https://github.com/acme/skills/blob/main/skills/qa/SKILL.md",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/qa", Ref: "main"},
		},
		{
			name:  "raw URL",
			input: "https://raw.githubusercontent.com/acme/skills/v1/skills/pm/SKILL.md",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/pm", Ref: "v1"},
		},
		{
			name:  "repo URL",
			input: "https://github.com/acme/pm-skill.git",
			want:  &Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "pm-skill", Ref: "main"},
		},
		{
			name:  "enterprise tree URL",
			input: "https://github.corp.example.com/team/agents/tree/main/skills/ops",
			want:  &Source{Type: TypeGitHub, Host: "github.corp.example.com", Owner: "team", Repo: "agents", Path: "skills/ops", Ref: "main"},
		},
		{name: "empty", input: "  ", wantErr: true},
		{name: "non GitHub URL", input: "https://example.com/skill.md", wantErr: true},
		{name: "garbage", input: "not a source", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Type != tt.want.Type {
				t.Errorf("Type = %v, want %v", got.Type, tt.want.Type)
			}
			if got.Host != tt.want.Host {
				t.Errorf("Host = %v, want %v", got.Host, tt.want.Host)
			}
			if got.Owner != tt.want.Owner || got.Repo != tt.want.Repo {
				t.Errorf("Owner/Repo = %s/%s, want %s/%s", got.Owner, got.Repo, tt.want.Owner, tt.want.Repo)
			}
			if got.Path != tt.want.Path {
				t.Errorf("Path = %q, want %q", got.Path, tt.want.Path)
			}
			if got.Ref != tt.want.Ref {
				t.Errorf("Ref = %v, want %v", got.Ref, tt.want.Ref)
			}
			if got.Original != tt.input {
				t.Errorf("Original = %v, want %v", got.Original, tt.input)
			}
		})
	}
}

func TestParseLocalPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		input string
	}{
		{"dot path", "./local/skill"},
		{"absolute path", filepath.Join(dir, "dev")},
		{"home path", "~/skills/test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Type != TypeLocal {
				t.Errorf("Type = %v, want %v", got.Type, TypeLocal)
			}
			if !filepath.IsAbs(got.Path) {
				t.Errorf("Path = %q, want absolute", got.Path)
			}
		})
	}
}

func TestSource_SkillName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"acme/skills:skills/backend-engineer", "backend-engineer"},
		{"acme/pm-skill", "pm-skill"},
		{"https://github.com/acme/skills/tree/main/qa", "qa"},
		{"/opt/skills/devops", "devops"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := src.SkillName(); got != tt.want {
				t.Errorf("SkillName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{
			name: "default ref omitted",
			src:  Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Path: "skills/dev", Ref: "main"},
			want: "acme/skills:skills/dev",
		},
		{
			name: "ref kept",
			src:  Source{Type: TypeGitHub, Host: "github.com", Owner: "acme", Repo: "skills", Ref: "v2"},
			want: "acme/skills@v2",
		},
		{
			name: "enterprise host",
			src:  Source{Type: TypeGitHub, Host: "ghe.corp.io", Owner: "t", Repo: "r", Ref: "main"},
			want: "ghe.corp.io/t/r",
		},
		{
			name: "local",
			src:  Source{Type: TypeLocal, Path: "/opt/skills/dev"},
			want: "/opt/skills/dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsGitHubHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"github.com", true},
		{"raw.githubusercontent.com", true},
		{"github.company.com", true},
		{"ghe.example.org", true},
		{"git.corp.io", true},
		{"gitlab.com", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		if got := isGitHubHost(tt.host); got != tt.want {
			t.Errorf("isGitHubHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
