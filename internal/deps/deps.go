package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external executable ocwrap relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// A command containing a path separator is checked as an explicit path;
// anything else is searched on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if strings.ContainsAny(cmd, `/\`) {
			info, err := os.Stat(cmd)
			switch {
			case err != nil:
				status.Detail = fmt.Sprintf("path %q not found", cmd)
			case info.IsDir():
				status.Detail = fmt.Sprintf("path %q is a directory", cmd)
			case info.Mode().Perm()&0o111 == 0:
				status.Detail = fmt.Sprintf("path %q is not executable", cmd)
			default:
				status.Available = true
			}
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
