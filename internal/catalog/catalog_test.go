package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func skillDoc(name, trigger string) string {
	return "---\nname: " + name + "\ndescription: Does " + name + " things\nrole: " + name +
		" Role\nicon: 🛠️\ntriggers:\n  - " + trigger + "\n---\n\n# " + name + "\n"
}

func TestScanNested(t *testing.T) {
	dir := t.TempDir()
	for _, valid := range []string{"backend-engineer", "qa-engineer", "devops"} {
		writeFile(t, filepath.Join(dir, valid, "SKILL.md"), skillDoc(valid, "/x"))
	}
	// Invalid: no descriptor, descriptor is a dir, plain file
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty-skill"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "weird", "SKILL.md"), 0755))
	writeFile(t, filepath.Join(dir, "README.md"), "readme")

	names, err := Scan(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend-engineer", "devops", "qa-engineer"}, names)
}

func TestScanFlat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"00-master.md", "notes.txt", "legacy.cursorrules", "agent.toml", "image.png", "script.sh"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.md"), 0755))

	names, err := Scan(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"00-master.md", "agent.toml", "legacy.cursorrules", "notes.txt"}, names)
}

func TestScanMissingDir(t *testing.T) {
	names, err := Scan(filepath.Join(t.TempDir(), "nope"), true)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "skills", "backend-engineer", "SKILL.md"), skillDoc("Backend", "/dev"))
	writeFile(t, filepath.Join(root, "rules", "00-master.md"), "# rules")
	writeFile(t, filepath.Join(root, "workflows", "release.md"), "# release")

	c, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"backend-engineer"}, c.All().Skills)
	assert.Equal(t, filepath.Join(root, "rules", "00-master.md"), c.Rules[0].Path)
	assert.Equal(t, []string{"release.md"}, c.All().Workflows)
}

func TestExtractRecord(t *testing.T) {
	rec, ok := ExtractRecord("backend-engineer", skillDoc("Backend Engineer", "/dev"))
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", rec.Name)
	assert.Equal(t, "/dev", rec.Trigger())
	assert.Equal(t, "🛠️", rec.Icon)

	rec, ok = ExtractRecord("data-engineer", "---\nname: 'Data'\ntriggers: [\"/data\", /etl]\n---\n")
	require.True(t, ok)
	assert.Equal(t, "Data", rec.Name)
	assert.Equal(t, []string{"/data", "/etl"}, rec.Triggers)
	assert.Equal(t, "No description", rec.Description)
	assert.Equal(t, "-", rec.Role)

	rec, ok = ExtractRecord("security-analyst", "---\nname: Security\n---\n")
	require.True(t, ok)
	assert.Equal(t, "/security", rec.Trigger())

	_, ok = ExtractRecord("x", "no frontmatter here")
	assert.False(t, ok)
	_, ok = ExtractRecord("x", "---\ndescription: nameless\n---\n")
	assert.False(t, ok)
}

func TestSplice(t *testing.T) {
	doc := "# Title\n" + SectionStart + "\nstale\n" + SectionEnd + "\nfooter\n"
	got, ok := Splice(doc, "TABLE")
	require.True(t, ok)
	assert.Equal(t, "# Title\n"+SectionStart+"\n\nTABLE\n\n"+SectionEnd+"\nfooter\n", got)

	again, ok := Splice(got, "TABLE")
	require.True(t, ok)
	assert.Equal(t, got, again)

	for _, broken := range []string{
		"no markers",
		SectionStart + " only start",
		SectionEnd + " before " + SectionStart,
	} {
		out, ok := Splice(broken, "TABLE")
		assert.False(t, ok, broken)
		assert.Equal(t, broken, out)
	}
}

func TestRenderEscapesPipes(t *testing.T) {
	table := Render([]Record{{ID: "a", Name: "A|B", Description: "x | y", Role: "r", Icon: "i"}}, LayoutFull)
	assert.Contains(t, table, `**A\|B**`)
	assert.Contains(t, table, `x \| y`)
	assert.False(t, strings.HasSuffix(table, "\n"))

	compact := Render([]Record{{ID: "a-b", Name: "A"}}, LayoutCompact)
	assert.Equal(t, "| Trigger | Skill |\n|:---|:---|\n| `/a` | **A** |", compact)
}

func setupSync(t *testing.T) (skillsDir string, targets []Target) {
	t.Helper()
	root := t.TempDir()
	skillsDir = filepath.Join(root, ".agents", "skills")
	writeFile(t, filepath.Join(skillsDir, "qa-engineer", "SKILL.md"), skillDoc("QA", "/qa"))
	writeFile(t, filepath.Join(skillsDir, "backend-engineer", "SKILL.md"), skillDoc("Backend", "/dev"))

	agents := filepath.Join(root, "AGENTS.md")
	writeFile(t, agents, "# Agents\n\n"+SectionStart+"\n"+SectionEnd+"\n")
	master := filepath.Join(root, ".agents", "rules", "00-master.md")
	writeFile(t, master, "# Master\n"+SectionStart+SectionEnd)
	plain := filepath.Join(root, "README.md")
	writeFile(t, plain, "# Readme\n")

	return skillsDir, []Target{
		{Path: agents, Layout: LayoutFull},
		{Path: master, Layout: LayoutCompact},
		{Path: plain, Layout: LayoutFull},
		{Path: filepath.Join(root, "missing.md"), Layout: LayoutFull},
	}
}

func TestSyncIdempotent(t *testing.T) {
	skillsDir, targets := setupSync(t)

	results, err := Sync(skillsDir, targets, Options{})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, StatusUpdated, results[0].Status)
	assert.Equal(t, StatusUpdated, results[1].Status)
	assert.Equal(t, StatusNoSection, results[2].Status)
	assert.Equal(t, StatusMissing, results[3].Status)

	first, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(first), "Backend"), strings.Index(string(first), "QA"), "rows sorted by id")

	results, err = Sync(skillsDir, targets, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, results[0].Status)
	assert.Equal(t, StatusUnchanged, results[1].Status)

	second, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	readme, err := os.ReadFile(targets[2].Path)
	require.NoError(t, err)
	assert.Equal(t, "# Readme\n", string(readme))
}

func TestSyncDryRun(t *testing.T) {
	skillsDir, targets := setupSync(t)
	before, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)

	results, err := Sync(skillsDir, targets[:1], Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusUpdated, results[0].Status)
	assert.Contains(t, results[0].Diff, "+| `/dev` | **Backend**")

	after, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestWatchRunsOnChange(t *testing.T) {
	skillsDir, _ := setupSync(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, skillsDir, 20*time.Millisecond, func() {
			calls.Add(1)
			cancel()
		})
	}()

	// Give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(skillsDir, "qa-engineer", "SKILL.md"), skillDoc("QA v2", "/qa"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
