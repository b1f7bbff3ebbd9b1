// Package installer places content from a content root into the
// directories of each selected tool, then writes the config bootstrap and
// bridge documents that point the tool at the catalog.
package installer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/logger"
)

// Plan is everything one install run needs
type Plan struct {
	// Root is the installation root (project dir or home)
	Root string
	// ContentRoot holds the skills/, rules/ and workflows/ to install
	ContentRoot string
	Profiles    []config.ToolProfile
	Selection   artifact.Selection
	Method      config.Method
	// Triggers fills the quick-start table; DefaultTriggers when empty
	Triggers []QuickTrigger
}

// Target is a profile bound to a root, with its paths resolved
type Target struct {
	Profile config.ToolProfile
	Root    string
	Method  config.Method
	Dirs    map[artifact.Type]string // Absolute; missing when the profile has no dir
}

// Installer executes install plans
type Installer struct {
	log  *logrus.Entry
	link linkFunc
}

// New creates an Installer
func New(ctx context.Context) *Installer {
	return &Installer{
		log:  logger.G(ctx).WithField("component", "installer"),
		link: makeLink,
	}
}

// resolve joins a root with a profile-relative path. Absolute paths and
// paths escaping the root are rejected.
func resolve(root, rel string) (string, error) {
	native := filepath.FromSlash(rel)
	if !filepath.IsLocal(native) {
		return "", errors.Errorf("path %q escapes the install root", rel)
	}
	return filepath.Join(root, native), nil
}

// NewTarget resolves a profile against a root. ForceCopy profiles never
// receive links.
func NewTarget(p config.ToolProfile, root string, method config.Method) (*Target, error) {
	t := &Target{
		Profile: p,
		Root:    root,
		Method:  method,
		Dirs:    make(map[artifact.Type]string),
	}
	if p.ForceCopy && method == config.MethodSymlink {
		t.Method = config.MethodCopy
	}
	for _, typ := range artifact.AllTypes() {
		rel := p.Dir(typ)
		if rel == "" {
			continue
		}
		dir, err := resolve(root, rel)
		if err != nil {
			return nil, errors.Wrapf(err, "tool %s", p.ID)
		}
		t.Dirs[typ] = dir
	}
	return t, nil
}

// Install runs the plan. Per-item failures are recorded in the report and
// never stop the run; only an unusable root returns an error.
func (in *Installer) Install(ctx context.Context, plan Plan) (*Report, error) {
	if err := os.MkdirAll(plan.Root, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create install root %s", plan.Root)
	}

	triggers := plan.Triggers
	if len(triggers) == 0 {
		triggers = DefaultTriggers
	}

	report := &Report{}
	for _, p := range plan.Profiles {
		target, err := NewTarget(p, plan.Root, plan.Method)
		if err != nil {
			report.add(Outcome{Tool: p.ID, Action: ActionGuard, Err: err})
			continue
		}
		in.installTarget(target, plan, triggers, report)
	}

	in.log.WithFields(logrus.Fields{
		"tools":  len(plan.Profiles),
		"placed": report.Placed(),
		"errors": report.Count(StatusError),
	}).Debug("install finished")
	return report, nil
}

func (in *Installer) installTarget(t *Target, plan Plan, triggers []QuickTrigger, report *Report) {
	p := t.Profile
	log := in.log.WithField("tool", p.ID)

	if t.Method != plan.Method {
		report.add(Outcome{
			Tool:   p.ID,
			Action: ActionMethod,
			Status: StatusNotice,
			Detail: "links are unreliable for this tool, copying instead",
		})
	}

	for _, typ := range artifact.AllTypes() {
		names := plan.Selection.Names(typ)
		destDir, ok := t.Dirs[typ]
		if len(names) == 0 || !ok {
			continue
		}
		srcDir := filepath.Join(plan.ContentRoot, typ.DirName())

		if samePath(destDir, srcDir) {
			log.WithField("dir", destDir).Debug("destination is the content source, skipping")
			report.add(Outcome{
				Tool:   p.ID,
				Type:   typ,
				Action: ActionGuard,
				Status: StatusNotice,
				Path:   destDir,
				Detail: typ.Plural() + " dir is the content source",
			})
			continue
		}

		if typ == artifact.TypeRule {
			in.cleanLegacy(p.ID, destDir, report)
		}

		for _, name := range names {
			src := filepath.Join(srcDir, name)
			dst := filepath.Join(destDir, name)
			o := Outcome{Tool: p.ID, Type: typ, Item: name, Action: ActionPlace, Path: dst}

			switch {
			case !exists(src):
				o.Status = StatusSkip
				o.Detail = "not found in content root"
			case sameEntry(src, dst):
				o.Status = StatusSkip
				o.Detail = "source and destination are the same"
			default:
				o.Status, o.Err = in.place(src, dst, t.Method)
			}
			log.WithFields(logrus.Fields{"item": name, "status": o.Status}).Debug("placed")
			report.add(o)
		}
	}

	if p.ConfigFile != "" {
		status, path, err := writeBootstrap(t.Root, p, triggers)
		report.add(Outcome{Tool: p.ID, Action: ActionBootstrap, Status: status, Path: path, Err: err})
	}

	if p.BridgeName() != "" {
		rulesDir := t.Dirs[artifact.TypeRule]
		if samePath(rulesDir, filepath.Join(plan.ContentRoot, artifact.RulesDirName)) {
			return
		}
		path, err := writeBridge(t.Root, p, triggers)
		report.add(Outcome{Tool: p.ID, Action: ActionBridge, Status: StatusCreated, Path: path, Err: err})
	}
}

// cleanLegacy removes bootstrap files written by earlier generations
func (in *Installer) cleanLegacy(id config.Tool, rulesDir string, report *Report) {
	for _, name := range artifact.LegacyRuleFiles {
		path := filepath.Join(rulesDir, name)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		err := os.Remove(path)
		report.add(Outcome{Tool: id, Item: name, Action: ActionCleanup, Status: StatusRemoved, Path: path, Err: err})
	}
}
