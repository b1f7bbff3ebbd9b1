package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// RequirementType represents the kind of requirement detected
type RequirementType string

const (
	TypeRuntime RequirementType = "runtime" // Interpreter a skill script needs on PATH
	TypeEnv     RequirementType = "env"     // Environment variable a skill references
)

// Requirement is a setup need inferred from skill content
type Requirement struct {
	Type   RequirementType `json:"type"`
	Value  string          `json:"value"`
	Source string          `json:"source"` // skill name, or skill/scripts/file
}

var (
	envVarRe    = regexp.MustCompile(`\$\{?([A-Z][A-Z0-9_]{2,})\}?`)
	envNameRe   = regexp.MustCompile(`^[A-Z][A-Z0-9_]{2,}$`)
	envExportRe = regexp.MustCompile(`export\s+([A-Z][A-Z0-9_]+)=`)

	// Too generic or system-level to be worth reporting
	ignoredEnvVars = map[string]bool{
		"PATH": true, "HOME": true, "USER": true, "SHELL": true,
		"PWD": true, "OLDPWD": true, "TERM": true, "LANG": true,
		"LC_ALL": true, "EDITOR": true, "VISUAL": true,
		"XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true,
		"TMPDIR": true, "TMP": true, "TEMP": true,
	}

	runtimeByExt = map[string]string{
		".py":   "python3",
		".js":   "node",
		".mjs":  "node",
		".cjs":  "node",
		".ts":   "node",
		".rb":   "ruby",
		".sh":   "bash",
		".bash": "bash",
	}
)

// lookPath is swapped in tests
var lookPath = exec.LookPath

// EnvFromContent returns the environment variables referenced in content
func EnvFromContent(content, source string) []Requirement {
	var reqs []Requirement
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{envVarRe, envExportRe} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if ignoredEnvVars[name] || seen[name] {
				continue
			}
			seen[name] = true
			reqs = append(reqs, Requirement{Type: TypeEnv, Value: name, Source: source})
		}
	}
	return reqs
}

// EnvFromScript returns the environment variables a shell script reads
// but never assigns. Scripts that do not parse are scanned like markdown.
func EnvFromScript(src []byte, source string) []Requirement {
	file, err := syntax.NewParser().Parse(strings.NewReader(string(src)), source)
	if err != nil {
		return EnvFromContent(string(src), source)
	}

	assigned := make(map[string]bool)
	var read []string
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.Assign:
			if n.Name != nil {
				assigned[n.Name.Value] = true
			}
		case *syntax.ForClause:
			if wi, ok := n.Loop.(*syntax.WordIter); ok && wi.Name != nil {
				assigned[wi.Name.Value] = true
			}
		case *syntax.ParamExp:
			if n.Param != nil {
				read = append(read, n.Param.Value)
			}
		}
		return true
	})

	var reqs []Requirement
	seen := make(map[string]bool)
	for _, name := range read {
		if assigned[name] || seen[name] || ignoredEnvVars[name] || !envNameRe.MatchString(name) {
			continue
		}
		seen[name] = true
		reqs = append(reqs, Requirement{Type: TypeEnv, Value: name, Source: source})
	}
	return reqs
}

// RuntimesFromFiles infers interpreters from script file extensions
func RuntimesFromFiles(files []string, source string) []Requirement {
	var reqs []Requirement
	seen := make(map[string]bool)

	for _, f := range files {
		rt, ok := runtimeByExt[strings.ToLower(filepath.Ext(f))]
		if !ok || seen[rt] {
			continue
		}
		seen[rt] = true
		reqs = append(reqs, Requirement{Type: TypeRuntime, Value: rt, Source: source + "/" + filepath.ToSlash(f)})
	}
	return reqs
}

// SkillRequirements scans a skill's SKILL.md and scripts/ dir
func SkillRequirements(skillDir string) []Requirement {
	name := filepath.Base(skillDir)
	var reqs []Requirement

	if data, err := os.ReadFile(filepath.Join(skillDir, "SKILL.md")); err == nil {
		reqs = append(reqs, EnvFromContent(string(data), name)...)
	}

	scripts := filepath.Join(skillDir, "scripts")
	var files []string
	_ = filepath.WalkDir(scripts, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if rel, err := filepath.Rel(skillDir, path); err == nil {
				files = append(files, rel)
			}
		}
		return nil
	})
	sort.Strings(files)
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".sh", ".bash":
			if data, err := os.ReadFile(filepath.Join(skillDir, f)); err == nil {
				reqs = append(reqs, EnvFromScript(data, name+"/"+filepath.ToSlash(f))...)
			}
		}
	}
	reqs = append(reqs, RuntimesFromFiles(files, name)...)

	return Merge(reqs)
}

// VerifyResult contains the result of verifying a requirement
type VerifyResult struct {
	Requirement Requirement
	Satisfied   bool
	Message     string
}

// Verify checks a requirement. Env vars count as satisfied when set in
// the environment or documented in the given .env.example content.
func Verify(req Requirement, envExample string) VerifyResult {
	result := VerifyResult{Requirement: req}

	switch req.Type {
	case TypeRuntime:
		_, err := lookPath(req.Value)
		result.Satisfied = err == nil
		if !result.Satisfied {
			result.Message = "command not found: " + req.Value
		}

	case TypeEnv:
		result.Satisfied = os.Getenv(req.Value) != "" || documented(envExample, req.Value)
		if !result.Satisfied {
			result.Message = req.Value + " is neither set nor listed in .env.example"
		}

	default:
		result.Satisfied = true
	}

	return result
}

func documented(envExample, name string) bool {
	for _, line := range strings.Split(envExample, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "export "))
		if strings.HasPrefix(line, name+"=") || line == name {
			return true
		}
	}
	return false
}

// Merge deduplicates requirements by type and value, keeping the first
func Merge(groups ...[]Requirement) []Requirement {
	seen := make(map[string]bool)
	var result []Requirement
	for _, g := range groups {
		for _, req := range g {
			key := string(req.Type) + ":" + req.Value
			if !seen[key] {
				seen[key] = true
				result = append(result, req)
			}
		}
	}
	return result
}
