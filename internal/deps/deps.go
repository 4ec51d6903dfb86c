package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional binaries only feed diagnostics; their absence never blocks a render.
	Optional bool
}

// Status is the outcome of looking a Requirement up. Command holds the
// resolved absolute path when Available.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Blocking reports whether the status should stop a render.
func (s Status) Blocking() bool {
	return !s.Available && !s.Optional
}

// CheckBinaries resolves every requirement against PATH, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		statuses[i] = lookup(req)
	}
	return statuses
}

func lookup(req Requirement) Status {
	if req.Command == "" {
		return Status{Requirement: req, Detail: "command not configured"}
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		return Status{Requirement: req, Detail: fmt.Sprintf("binary %q not found", req.Command)}
	}
	req.Command = path
	return Status{Requirement: req, Available: true}
}

// MissingRequired filters statuses down to the blocking ones.
func MissingRequired(statuses []Status) []Status {
	var blocking []Status
	for _, s := range statuses {
		if s.Blocking() {
			blocking = append(blocking, s)
		}
	}
	return blocking
}
