package installer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
)

const backendSkill = `---
name: Backend Engineer
description: Builds APIs
role: APIs and services
type: agent_persona
version: 3.0.11
icon: 🛠️
expertise:
  - go
activates_on:
  - api
triggers:
  - /dev
  - /backend
---

# Backend Engineer
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// newContent lays out a content root with one skill, one rule and one workflow
func newContent(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "content")
	writeFile(t, filepath.Join(root, "skills", "backend-engineer", "SKILL.md"), backendSkill)
	writeFile(t, filepath.Join(root, "skills", "backend-engineer", "scripts", "run.sh"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(root, "rules", "style.md"), "# Style\n")
	writeFile(t, filepath.Join(root, "workflows", "release.md"), "# Release\n")
	return root
}

func profile(t *testing.T, id config.Tool) config.ToolProfile {
	t.Helper()
	p := config.GetToolProfile(id)
	require.NotNil(t, p, "profile %s", id)
	return *p
}

func fullSelection() artifact.Selection {
	return artifact.Selection{
		Skills:    []string{"backend-engineer"},
		Rules:     []string{"style.md"},
		Workflows: []string{"release.md"},
	}
}

func TestInstallCursorCopiesAndBridges(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolCursor)},
		Selection:   fullSelection(),
		Method:      config.MethodSymlink,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	installed := filepath.Join(root, ".cursor", "skills", "backend-engineer")
	info, err := os.Lstat(installed)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "cursor forces copies, not links")
	assert.Equal(t, backendSkill, readFile(t, filepath.Join(installed, "SKILL.md")))
	assert.FileExists(t, filepath.Join(installed, "scripts", "run.sh"))
	assert.FileExists(t, filepath.Join(root, ".cursor", "rules", "style.md"))
	assert.FileExists(t, filepath.Join(root, ".cursor", "workflows", "release.md"))

	bridge := readFile(t, filepath.Join(root, ".cursor", "rules", "lmagent.mdc"))
	assert.True(t, strings.HasPrefix(bridge, "---\ndescription:"))
	assert.Contains(t, bridge, "globs: **/*")
	assert.Contains(t, bridge, "](../../AGENTS.md)")
	assert.Contains(t, bridge, "`/dev`", "falls back to the default trigger table")

	cursorrules := readFile(t, filepath.Join(root, ".cursorrules"))
	assert.Contains(t, cursorrules, BootstrapSentinel)
	assert.Contains(t, cursorrules, "](./AGENTS.md)")

	var notice bool
	for _, o := range report.ForTool(config.ToolCursor) {
		if o.Action == ActionMethod {
			notice = true
		}
	}
	assert.True(t, notice, "forced copy is reported")
	assert.Equal(t, 3, report.Count(StatusCopied))
}

func TestInstallIsIdempotent(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()
	plan := Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolCursor)},
		Selection:   fullSelection(),
		Method:      config.MethodCopy,
	}
	in := New(context.Background())

	_, err := in.Install(context.Background(), plan)
	require.NoError(t, err)
	firstRules := readFile(t, filepath.Join(root, ".cursorrules"))
	firstBridge := readFile(t, filepath.Join(root, ".cursor", "rules", "lmagent.mdc"))

	report, err := in.Install(context.Background(), plan)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, firstRules, readFile(t, filepath.Join(root, ".cursorrules")))
	assert.Equal(t, firstBridge, readFile(t, filepath.Join(root, ".cursor", "rules", "lmagent.mdc")))
	assert.Equal(t, backendSkill, readFile(t, filepath.Join(root, ".cursor", "skills", "backend-engineer", "SKILL.md")))
	assert.Equal(t, 1, report.Count(StatusOK), "bootstrap already present")
}

func TestInstallSelfInstallGuard(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, artifact.ContentDirName)
	skill := filepath.Join(content, "skills", "backend-engineer", "SKILL.md")
	writeFile(t, skill, backendSkill)

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolGeneric)},
		Selection:   artifact.Selection{Skills: []string{"backend-engineer"}},
		Method:      config.MethodCopy,
	})
	require.NoError(t, err)

	assert.Equal(t, backendSkill, readFile(t, skill), "source must survive")
	assert.Equal(t, 0, report.Placed())

	var guarded bool
	for _, o := range report.Outcomes {
		if o.Action == ActionGuard && o.Type == artifact.TypeSkill {
			guarded = true
		}
	}
	assert.True(t, guarded)
}

func TestInstallSelfInstallGuardFollowsLinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	content := newContent(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(content, "skills"), filepath.Join(root, ".claude", "skills")))

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolClaude)},
		Selection:   artifact.Selection{Skills: []string{"backend-engineer"}},
		Method:      config.MethodCopy,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, backendSkill, readFile(t, filepath.Join(content, "skills", "backend-engineer", "SKILL.md")), "source must survive")
	assert.Equal(t, 0, report.Placed())

	var guarded bool
	for _, o := range report.Outcomes {
		if o.Action == ActionGuard && o.Type == artifact.TypeSkill {
			guarded = true
		}
	}
	assert.True(t, guarded)
}

func TestSameEntry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	src := filepath.Join(base, "content", "skills")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "dev"), 0755))
	linked := filepath.Join(base, "tool", "skills")
	require.NoError(t, os.MkdirAll(filepath.Dir(linked), 0755))
	require.NoError(t, os.Symlink(src, linked))

	// A placed link to the source is a different entry
	placed := filepath.Join(base, "other", "dev")
	require.NoError(t, os.MkdirAll(filepath.Dir(placed), 0755))
	require.NoError(t, os.Symlink(filepath.Join(src, "dev"), placed))

	assert.True(t, sameEntry(filepath.Join(src, "dev"), filepath.Join(linked, "dev")))
	assert.True(t, samePath(src, linked))
	assert.False(t, sameEntry(filepath.Join(src, "dev"), placed))
	assert.True(t, samePath(filepath.Join(linked, "missing", "x"), filepath.Join(src, "missing", "x")))
}

func TestInstallCleansLegacyRules(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()
	for _, name := range artifact.LegacyRuleFiles {
		writeFile(t, filepath.Join(root, ".cursor", "rules", name), "old\n")
	}

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolCursor)},
		Selection:   artifact.Selection{Rules: []string{"style.md"}},
		Method:      config.MethodCopy,
	})
	require.NoError(t, err)

	for _, name := range artifact.LegacyRuleFiles {
		assert.NoFileExists(t, filepath.Join(root, ".cursor", "rules", name))
	}
	assert.Equal(t, len(artifact.LegacyRuleFiles), report.Count(StatusRemoved))
}

func TestInstallLinkFallback(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()

	in := New(context.Background())
	in.link = func(src, dst string, dir bool) error {
		return errors.New("links not permitted")
	}

	report, err := in.Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, "codex")},
		Selection:   artifact.Selection{Skills: []string{"backend-engineer"}},
		Method:      config.MethodSymlink,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, 1, report.Count(StatusFallback))
	assert.Equal(t, backendSkill, readFile(t, filepath.Join(root, ".codex", "skills", "backend-engineer", "SKILL.md")))
}

func TestInstallSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	content := newContent(t)
	root := t.TempDir()

	// A stale link from an earlier install must be replaced
	stale := filepath.Join(root, ".codex", "skills", "backend-engineer")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), stale))

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, "codex")},
		Selection:   artifact.Selection{Skills: []string{"backend-engineer"}},
		Method:      config.MethodSymlink,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	info, err := os.Lstat(stale)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	dest, err := os.Readlink(stale)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(content, "skills", "backend-engineer"), dest)
	assert.Equal(t, 1, report.Count(StatusLinked))

	// codex has no config file, so it gets the default bridge
	assert.FileExists(t, filepath.Join(root, ".codex", "rules", artifact.DefaultBridgeFilename))
}

func TestInstallMissingSourceIsSkipped(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, "codex")},
		Selection:   artifact.Selection{Skills: []string{"nope"}},
		Method:      config.MethodCopy,
	})
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Equal(t, 1, report.Count(StatusSkip))
	assert.NoDirExists(t, filepath.Join(root, ".codex", "skills", "nope"))
}

func TestInstallErrorsDoNotAbort(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()
	// A directory where the config file belongs
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cursorrules"), 0755))

	escaping := config.ToolProfile{ID: "escape", SkillsDir: "../outside"}

	report, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{escaping, profile(t, config.ToolCursor)},
		Selection:   artifact.Selection{Skills: []string{"backend-engineer"}},
		Method:      config.MethodCopy,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count(StatusError))
	assert.Error(t, report.Err())
	assert.FileExists(t, filepath.Join(root, ".cursor", "skills", "backend-engineer", "SKILL.md"))
}

func TestInstallTriggersFromSkills(t *testing.T) {
	content := newContent(t)
	root := t.TempDir()
	selection := artifact.Selection{Skills: []string{"backend-engineer"}}

	_, err := New(context.Background()).Install(context.Background(), Plan{
		Root:        root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{profile(t, config.ToolClaude)},
		Selection:   selection,
		Method:      config.MethodCopy,
		Triggers:    QuickTriggers(filepath.Join(content, "skills"), selection.Skills),
	})
	require.NoError(t, err)

	doc := readFile(t, filepath.Join(root, "CLAUDE.md"))
	assert.Contains(t, doc, "| `/dev` | **Backend Engineer** | APIs and services |")
	assert.NotContains(t, doc, "/orch")
}

func TestStructuredConfigSkipped(t *testing.T) {
	root := t.TempDir()
	p := config.ToolProfile{ID: "json-tool", ConfigFile: "settings.json"}

	status, _, err := writeBootstrap(root, p, DefaultTriggers)
	require.NoError(t, err)
	assert.Equal(t, StatusSkip, status)
	assert.NoFileExists(t, filepath.Join(root, "settings.json"))
}

func TestBootstrapAppendAndStrip(t *testing.T) {
	root := t.TempDir()
	p := profile(t, config.ToolWindsurf)
	original := "Always write tests."
	writeFile(t, filepath.Join(root, ".windsurfrules"), original)

	status, path, err := writeBootstrap(root, p, DefaultTriggers)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, status)

	doc := readFile(t, path)
	assert.True(t, strings.HasPrefix(doc, original+"\n\n"+BootstrapStart))

	status, _, err = writeBootstrap(root, p, DefaultTriggers)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	stripped, ok := StripBootstrap(readFile(t, path))
	assert.True(t, ok)
	assert.Equal(t, original+"\n", stripped)
}

func TestStripBootstrap(t *testing.T) {
	section := BootstrapStart + "\nbody\n" + BootstrapEnd + "\n"

	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{"only section", section, "", true},
		{"before", "# Mine\n\n" + section, "# Mine\n", true},
		{"before and after", "# Mine\n\n" + section + "tail\n", "# Mine\n\ntail\n", true},
		{"no section", "# Mine\n", "# Mine\n", false},
		{"unterminated", "# Mine\n" + BootstrapStart + "\nbody\n", "# Mine\n" + BootstrapStart + "\nbody\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripBootstrap(tt.doc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelLink(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"CLAUDE.md", "./AGENTS.md"},
		{".cursor/rules/lmagent.mdc", "../../AGENTS.md"},
		{".github/copilot-instructions.md", "../AGENTS.md"},
		{".clinerules/00-lmagent.md", "../AGENTS.md"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, relLink(tt.from, artifact.CatalogDocument))
		})
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	root := t.TempDir()

	_, err := resolve(root, "../x")
	assert.Error(t, err)
	_, err = resolve(root, "/etc")
	assert.Error(t, err)

	got, err := resolve(root, ".cursor/skills")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".cursor", "skills"), got)
}
