package profile

import (
	"context"
	"fmt"
)

// Switch makes name the active profile for this process only. The caller is
// responsible for exporting AWS_PROFILE into their own shell; nothing is
// persisted and other processes are unaffected. Returns false when the name
// is not in the current listing.
func (c *Catalog) Switch(ctx context.Context, name string) bool {
	if !c.exists(ctx, name) {
		return false
	}
	if err := c.setenv(envProfile, name); err != nil {
		return false
	}
	return true
}

// Validate issues a live credential check for the named profile (or the
// current one when name is empty). Success means the credentials are
// minimally well-formed and usable. The check is scoped to the request and
// never moves the process's active-profile signal.
func (c *Catalog) Validate(ctx context.Context, name string) (bool, string) {
	target := name
	if target == "" {
		target = c.Current()
	}
	if name != "" && !c.exists(ctx, name) {
		return false, fmt.Sprintf("Profile '%s' not found", name)
	}

	if _, err := c.identity(ctx, target); err != nil {
		return false, fmt.Sprintf("Credential validation failed: %v", err)
	}
	return true, "Credentials are valid"
}

// RefreshSSO runs the external SSO login flow for an SSO-classified profile
// and reports the outcome. Non-SSO profiles fail fast without invoking
// anything.
func (c *Catalog) RefreshSSO(ctx context.Context, name string) (bool, string) {
	var found bool
	var isSSO bool
	for _, p := range c.List(ctx, false) {
		if p.Name == name {
			found = true
			isSSO = p.IsSSO
			break
		}
	}
	if !found {
		return false, fmt.Sprintf("Profile '%s' not found", name)
	}
	if !isSSO {
		return false, fmt.Sprintf("Profile '%s' is not an SSO profile", name)
	}

	if err := c.ssoLogin(ctx, name); err != nil {
		return false, fmt.Sprintf("SSO login failed: %v", err)
	}
	return true, "SSO login successful"
}

func (c *Catalog) exists(ctx context.Context, name string) bool {
	for _, p := range c.List(ctx, false) {
		if p.Name == name {
			return true
		}
	}
	return false
}
