package installer

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
)

// Action is the step an outcome belongs to
type Action string

const (
	ActionPlace     Action = "place"
	ActionCleanup   Action = "cleanup"
	ActionBootstrap Action = "bootstrap"
	ActionBridge    Action = "bridge"
	ActionMethod    Action = "method"
	ActionGuard     Action = "guard"
)

// Status is the result of one step
type Status string

const (
	StatusLinked   Status = "LINKED"
	StatusCopied   Status = "COPIED"
	StatusFallback Status = "FALLBACK" // Link failed, content was copied instead
	StatusRemoved  Status = "REMOVED"
	StatusCreated  Status = "CREATED"
	StatusUpdated  Status = "UPDATED"
	StatusOK       Status = "OK"
	StatusSkip     Status = "SKIP"
	StatusNotice   Status = "NOTICE"
	StatusError    Status = "ERROR"
)

// Outcome records what happened to one item or document of one tool
type Outcome struct {
	Tool   config.Tool
	Type   artifact.Type // Empty for documents and notices
	Item   string
	Action Action
	Status Status
	Path   string
	Detail string
	Err    error
}

// Report collects every outcome of an install run
type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	if o.Err != nil {
		o.Status = StatusError
	}
	r.Outcomes = append(r.Outcomes, o)
}

// ForTool returns the outcomes for one tool, in order
func (r *Report) ForTool(id config.Tool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Tool == id {
			out = append(out, o)
		}
	}
	return out
}

// Count returns how many outcomes have the given status
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Placed returns the number of items linked, copied or copied as fallback
func (r *Report) Placed() int {
	return r.Count(StatusLinked) + r.Count(StatusCopied) + r.Count(StatusFallback)
}

// Err aggregates every per-item failure, or returns nil
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Err == nil {
			continue
		}
		label := string(o.Tool)
		if o.Item != "" {
			label += "/" + o.Item
		}
		result = multierror.Append(result, errors.Wrap(o.Err, label))
	}
	return result.ErrorOrNil()
}
