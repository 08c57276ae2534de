package container

import "strings"

// MissingDepsError is returned by Build and Validate when a service the
// server cannot run without was never wired
type MissingDepsError struct {
	Deps []string
}

func (e *MissingDepsError) Error() string {
	return "container: missing required dependencies: " + strings.Join(e.Deps, ", ")
}
