package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kennyg/lmagent/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func findCheck(r *Report, name string) *Check {
	for i := range r.Checks {
		if r.Checks[i].Name == name {
			return &r.Checks[i]
		}
	}
	return nil
}

// healthyProject returns a project with entry docs, a content root with
// two skills, and cursor holding both skills.
func healthyProject(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	content := filepath.Join(root, ".agents")
	for _, name := range []string{"a", "b"} {
		writeFile(t, filepath.Join(content, "skills", name, "SKILL.md"), "---\nname: "+name+"\n---\n")
		writeFile(t, filepath.Join(root, ".cursor", "skills", name, "SKILL.md"), "---\nname: "+name+"\n---\n")
	}
	writeFile(t, filepath.Join(root, "AGENTS.md"), "# Agents\n")
	writeFile(t, filepath.Join(root, "CLAUDE.md"), "# Claude\n")
	writeFile(t, filepath.Join(root, ".env.example"), "API_TOKEN=\n")
	writeFile(t, filepath.Join(root, ".gitignore"), "node_modules\n.env\n")

	cursor := config.GetToolProfile(config.ToolCursor)
	return Options{ProjectRoot: root, ContentRoot: content, Profiles: []config.ToolProfile{*cursor}}
}

func TestRunHealthyProject(t *testing.T) {
	opts := healthyProject(t)

	r := Run(opts)
	if r.Issues() != 0 {
		t.Errorf("Issues() = %d, want 0: %+v", r.Issues(), r.Checks)
	}
	if c := findCheck(r, "Cursor"); c == nil || c.Status != StatusOK {
		t.Errorf("Cursor check = %+v, want ok", c)
	}
	if c := findCheck(r, "docs/"); c == nil || c.Status != StatusInfo {
		t.Errorf("docs/ check = %+v, want info", c)
	}
}

func TestRunCountsIssues(t *testing.T) {
	tests := []struct {
		name       string
		breakIt    func(t *testing.T, opts Options)
		wantIssues int
		check      string
		wantStatus Status
	}{
		{
			name:       "missing AGENTS.md",
			breakIt:    func(t *testing.T, o Options) { os.Remove(filepath.Join(o.ProjectRoot, "AGENTS.md")) },
			wantIssues: 1,
			check:      "AGENTS.md",
			wantStatus: StatusIssue,
		},
		{
			name: "env not ignored",
			breakIt: func(t *testing.T, o Options) {
				writeFile(t, filepath.Join(o.ProjectRoot, ".gitignore"), "node_modules\n")
			},
			wantIssues: 1,
			check:      ".gitignore",
			wantStatus: StatusIssue,
		},
		{
			name: "env without gitignore",
			breakIt: func(t *testing.T, o Options) {
				os.Remove(filepath.Join(o.ProjectRoot, ".gitignore"))
				writeFile(t, filepath.Join(o.ProjectRoot, ".env"), "API_TOKEN=x\n")
			},
			wantIssues: 1,
			check:      ".gitignore",
			wantStatus: StatusIssue,
		},
		{
			name:       "skill shortfall is a warning",
			breakIt:    func(t *testing.T, o Options) { os.RemoveAll(filepath.Join(o.ProjectRoot, ".cursor", "skills", "b")) },
			wantIssues: 0,
			check:      "Cursor",
			wantStatus: StatusWarn,
		},
		{
			name: "no tools detected",
			breakIt: func(t *testing.T, o Options) {
				os.RemoveAll(filepath.Join(o.ProjectRoot, ".cursor"))
			},
			wantIssues: 1,
			check:      "detected tools",
			wantStatus: StatusIssue,
		},
		{
			name:       "missing .env.example",
			breakIt:    func(t *testing.T, o Options) { os.Remove(filepath.Join(o.ProjectRoot, ".env.example")) },
			wantIssues: 0,
			check:      ".env.example",
			wantStatus: StatusWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := healthyProject(t)
			tt.breakIt(t, opts)

			r := Run(opts)
			if r.Issues() != tt.wantIssues {
				t.Errorf("Issues() = %d, want %d: %+v", r.Issues(), tt.wantIssues, r.Checks)
			}
			c := findCheck(r, tt.check)
			if c == nil {
				t.Fatalf("no %q check in %+v", tt.check, r.Checks)
			}
			if c.Status != tt.wantStatus {
				t.Errorf("%s status = %s, want %s (%s)", tt.check, c.Status, tt.wantStatus, c.Detail)
			}
		})
	}
}

func TestRunMissingContentRoot(t *testing.T) {
	opts := healthyProject(t)
	opts.ContentRoot = filepath.Join(opts.ProjectRoot, "nowhere")

	r := Run(opts)
	if c := findCheck(r, "content root"); c == nil || c.Status != StatusIssue {
		t.Errorf("content root check = %+v, want issue", c)
	}
}

func TestRunDoesNotModify(t *testing.T) {
	opts := healthyProject(t)
	before := listTree(t, opts.ProjectRoot)
	Run(opts)
	after := listTree(t, opts.ProjectRoot)
	if len(before) != len(after) {
		t.Errorf("tree changed: %d entries before, %d after", len(before), len(after))
	}
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		out = append(out, path)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSkillRequirements(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deployer")
	writeFile(t, filepath.Join(dir, "SKILL.md"), "Set $DEPLOY_TOKEN and ${HOME}.\n\nexport REGION_NAME=eu\n")
	writeFile(t, filepath.Join(dir, "scripts", "deploy.py"), "print()\n")
	writeFile(t, filepath.Join(dir, "scripts", "helper.py"), "print()\n")
	writeFile(t, filepath.Join(dir, "scripts", "run.sh"), "#!/bin/sh\n")

	reqs := SkillRequirements(dir)

	want := map[string]bool{
		"env:DEPLOY_TOKEN": true,
		"env:REGION_NAME":  true,
		"runtime:python3":  true,
		"runtime:bash":     true,
	}
	if len(reqs) != len(want) {
		t.Fatalf("SkillRequirements() = %+v, want %d entries", reqs, len(want))
	}
	for _, r := range reqs {
		if !want[string(r.Type)+":"+r.Value] {
			t.Errorf("unexpected requirement %+v", r)
		}
	}
}

func TestEnvFromScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "reads only",
			script: "#!/bin/bash\ncurl -H \"Authorization: $API_TOKEN\" \"${API_URL}/v1\"\n",
			want:   []string{"API_TOKEN", "API_URL"},
		},
		{
			name:   "assigned locally",
			script: "OUT_DIR=build\nmkdir -p \"$OUT_DIR\"\necho \"$RELEASE_TAG\"\n",
			want:   []string{"RELEASE_TAG"},
		},
		{
			name:   "loop variable and positional args",
			script: "for ITEM in a b; do echo \"$ITEM $1 $HOME\"; done\n",
			want:   nil,
		},
		{
			name:   "unparsable falls back to scanning",
			script: "if [ \"$SECRET_KEY\" ; then\n",
			want:   []string{"SECRET_KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range EnvFromScript([]byte(tt.script), "s/scripts/x.sh") {
				if r.Type != TypeEnv {
					t.Errorf("unexpected type %q", r.Type)
				}
				got = append(got, r.Value)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EnvFromScript() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()
	lookPath = func(name string) (string, error) {
		if name == "python3" {
			return "/usr/bin/python3", nil
		}
		return "", exec.ErrNotFound
	}

	envExample := "# comment\nDOCUMENTED_KEY=\nexport EXPORTED_KEY=1\n"

	tests := []struct {
		req  Requirement
		want bool
	}{
		{Requirement{Type: TypeRuntime, Value: "python3"}, true},
		{Requirement{Type: TypeRuntime, Value: "ruby"}, false},
		{Requirement{Type: TypeEnv, Value: "DOCUMENTED_KEY"}, true},
		{Requirement{Type: TypeEnv, Value: "EXPORTED_KEY"}, true},
		{Requirement{Type: TypeEnv, Value: "LMAGENT_TEST_UNSET_VAR"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.req.Value, func(t *testing.T) {
			got := Verify(tt.req, envExample)
			if got.Satisfied != tt.want {
				t.Errorf("Verify(%+v).Satisfied = %v, want %v", tt.req, got.Satisfied, tt.want)
			}
			if !got.Satisfied && got.Message == "" {
				t.Error("unsatisfied result has no message")
			}
		})
	}
}
