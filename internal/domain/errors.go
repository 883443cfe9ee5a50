package domain

import (
	"fmt"
	"strings"
)

// NetworkError indicates public-address resolution exhausted every lookup
// endpoint. Callers must treat this as "address unknown", not as a crash.
type NetworkError struct {
	Endpoints []string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("could not determine public address after querying %s: %v",
		strings.Join(e.Endpoints, ", "), e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ToolInvocationError indicates an external command was missing, exited
// non-zero, or produced unparseable output.
type ToolInvocationError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// NotFoundError indicates a named profile or stack is absent from the
// current catalog listing.
type NotFoundError struct {
	Kind      string
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// ConfigurationError indicates a stack is missing a required published
// output, such as its firewall reference.
type ConfigurationError struct {
	Stack  string
	Output string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stack %s does not export a %q output", e.Stack, e.Output)
}
