package tokens

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennyg/lmagent/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
		{"🔧🔧🔧🔧", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Estimate(tt.text), "Estimate(%q)", tt.text)
	}
}

func TestAnalyze(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, ".agents")

	writeFile(t, filepath.Join(root, "AGENTS.md"), strings.Repeat("a", 400))
	writeFile(t, filepath.Join(root, "CLAUDE.md"), strings.Repeat("c", 200))
	writeFile(t, filepath.Join(content, "skills", "dev", "SKILL.md"), strings.Repeat("d", 800))
	writeFile(t, filepath.Join(content, "skills", "dev", "references", "api.md"), strings.Repeat("r", 400))
	writeFile(t, filepath.Join(content, "skills", "pm", "SKILL.md"), strings.Repeat("p", 400))
	writeFile(t, filepath.Join(content, "skills", "pm", "scripts", "run.py"), "print()\n")
	writeFile(t, filepath.Join(content, "rules", "style.md"), strings.Repeat("s", 40))
	writeFile(t, filepath.Join(content, "workflows", "ship.md"), strings.Repeat("w", 4))

	// The same skill copied into cursor counts once
	writeFile(t, filepath.Join(root, ".cursor", "skills", "dev", "SKILL.md"), strings.Repeat("d", 800))
	// A rule only cursor has counts
	writeFile(t, filepath.Join(root, ".cursor", "rules", "lmagent.mdc"), strings.Repeat("m", 80))

	cursor := config.GetToolProfile(config.ToolCursor)
	r, err := Analyze(Options{
		ProjectRoot: root,
		ContentRoot: content,
		Profiles:    []config.ToolProfile{*cursor},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cursor"}, r.Tools)
	assert.Equal(t, Category{Files: 2, Tokens: 150, Bytes: 600}, r.Categories.EntryPoints)
	assert.Equal(t, 3, r.Categories.Skills.Files)
	assert.Equal(t, 200+100+100, r.Categories.Skills.Tokens)
	assert.Equal(t, 2, r.Categories.Rules.Files)
	assert.Equal(t, 10+20, r.Categories.Rules.Tokens)
	assert.Equal(t, 1, r.Categories.Workflows.Tokens)
	assert.Equal(t, 8, r.Total.Files)
	assert.Equal(t, 150+400+30+1, r.Total.Tokens)

	// dev = 300, pm = 100
	assert.Equal(t, 150, r.Session.EntryPoints)
	assert.Equal(t, 200, r.Session.AvgSkill)
	assert.Equal(t, 350, r.Session.Tokens)

	require.Len(t, r.Largest, 5)
	assert.Equal(t, ".agents/skills/dev/SKILL.md", r.Largest[0].Path)
}

func TestAnalyzeEmptyProject(t *testing.T) {
	root := t.TempDir()
	r, err := Analyze(Options{ProjectRoot: root, ContentRoot: filepath.Join(root, ".agents")})
	require.NoError(t, err)
	assert.Zero(t, r.Total.Tokens)
	assert.Zero(t, r.Session.AvgSkill)
	assert.Empty(t, r.Largest)
}

func TestWriteReport(t *testing.T) {
	r := &Report{
		Version: "3.0.11",
		Tools:   []string{"Cursor"},
		Total:   Category{Files: 3, Tokens: 12345, Bytes: 2048},
		Session: Session{Tokens: 1500, EntryPoints: 1000, AvgSkill: 500},
		Largest: []File{{Path: "AGENTS.md", Tokens: 1000}},
	}
	dir := t.TempDir()

	path, err := r.WriteReport(dir, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFilename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "# LMAgent Token Report v3.0.11")
	assert.Contains(t, md, "> Generated: 2026-01-02")
	assert.Contains(t, md, "- Cursor")
	assert.Contains(t, md, "| **TOTAL** | **3** | **~12,345** | **2.0 KB** |")
	assert.Contains(t, md, "| AGENTS.md | ~1,000 |")
}

func TestFormatNum(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-1234:   "-1,234",
	}
	for n, want := range tests {
		assert.Equal(t, want, FormatNum(n))
	}
}
