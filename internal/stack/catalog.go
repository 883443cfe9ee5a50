// Package stack enumerates Pulumi stacks deployed from InfraUtilX
// blueprints. The Pulumi CLI is treated as a black box with a JSON
// contract; a missing binary or unparseable output degrades to an empty
// listing rather than an error.
package stack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
)

const pulumiBinary = "pulumi"

// Catalog lists deployed stacks, optionally narrowed to projects whose name
// starts with ProjectFilter. Each List call re-queries the tool; nothing is
// cached.
type Catalog struct {
	ProjectFilter string

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, args ...string) ([]byte, error)
	tagScan  func(ctx context.Context, project string) map[string]any
}

// NewCatalog builds a catalog backed by the real Pulumi CLI and the EC2
// tag-scan fallback.
func NewCatalog(projectFilter string) *Catalog {
	return &Catalog{
		ProjectFilter: projectFilter,
		lookPath:      exec.LookPath,
		run:           runPulumi,
		tagScan:       scanTaggedResources,
	}
}

// rawStack is one entry of `pulumi stack ls --all --json`.
type rawStack struct {
	Name          string `json:"name"`
	ProjectName   string `json:"projectName"`
	LastUpdate    string `json:"lastUpdate"`
	ResourceCount int    `json:"resourceCount"`
}

// List enumerates all stacks visible to the Pulumi backend, with each
// retained stack's published outputs attached.
func (c *Catalog) List(ctx context.Context) []domain.StackSummary {
	if _, err := c.lookPath(pulumiBinary); err != nil {
		logging.LogWarn("Pulumi CLI is not installed or not in PATH; install it from https://www.pulumi.com/docs/install/")
		return nil
	}

	out, err := c.run(ctx, "stack", "ls", "--all", "--json")
	if err != nil {
		logging.LogWarn("Could not list stacks; make sure you're logged in to Pulumi (run 'pulumi login')",
			map[string]any{"error": err.Error()})
		return nil
	}

	var raw []rawStack
	if err := json.Unmarshal(out, &raw); err != nil {
		logging.LogWarn("Could not parse Pulumi stack listing", map[string]any{"error": err.Error()})
		return nil
	}

	stacks := make([]domain.StackSummary, 0, len(raw))
	for _, r := range filterByProject(raw, c.ProjectFilter) {
		if r.Name == "" || r.ProjectName == "" {
			continue
		}
		stacks = append(stacks, domain.StackSummary{
			Name:          r.ProjectName + "/" + r.Name,
			Project:       r.ProjectName,
			LastUpdate:    r.LastUpdate,
			ResourceCount: r.ResourceCount,
			Outputs:       c.outputs(ctx, r.ProjectName, r.Name),
		})
	}
	return stacks
}

// filterByProject retains entries whose project name starts with the filter.
// Prefix match, not equality; an empty filter retains everything.
func filterByProject(raw []rawStack, filter string) []rawStack {
	if filter == "" {
		return raw
	}
	kept := make([]rawStack, 0, len(raw))
	for _, r := range raw {
		if strings.HasPrefix(r.ProjectName, filter) {
			kept = append(kept, r)
		}
	}
	return kept
}

// outputs fetches a stack's published outputs, retrying with the fully
// qualified project/stack name before falling back to a best-effort scan of
// live resources tagged with the project name. An empty map means "no data";
// a stack with no exports and one whose outputs could not be read are
// indistinguishable here.
func (c *Catalog) outputs(ctx context.Context, project, name string) map[string]any {
	out, err := c.run(ctx, "stack", "output", "--json", "--stack", name, "--show-secrets")
	if err != nil {
		out, err = c.run(ctx, "stack", "output", "--json", "--stack", project+"/"+name, "--show-secrets")
	}
	if err == nil {
		var outputs map[string]any
		if jsonErr := json.Unmarshal(out, &outputs); jsonErr == nil {
			return outputs
		}
	}

	logging.LogDebug("Could not get stack outputs, falling back to tagged-resource scan", map[string]any{
		"stack": project + "/" + name,
	})
	return c.tagScan(ctx, project)
}

// runPulumi invokes the Pulumi CLI with update checks suppressed and returns
// its stdout.
func runPulumi(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, pulumiBinary, args...)
	cmd.Env = append(os.Environ(), "PULUMI_SKIP_UPDATE_CHECK=true")

	start := time.Now()
	out, err := cmd.Output()
	logging.LogToolCall(pulumiBinary, args, err == nil, time.Since(start), err)

	if err != nil {
		stderr := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, &domain.ToolInvocationError{
			Tool:   pulumiBinary,
			Args:   args,
			Output: stderr,
			Err:    err,
		}
	}
	return out, nil
}

// String formats a one-line summary for logs and errors.
func (c *Catalog) String() string {
	if c.ProjectFilter == "" {
		return "stack catalog (all projects)"
	}
	return fmt.Sprintf("stack catalog (projects %s*)", c.ProjectFilter)
}
