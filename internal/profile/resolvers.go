package profile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
)

// resolveAccount fills in the profile's account ID (and, opportunistically,
// its auth method and identity) by applying an ordered list of sources and
// stopping at the first success:
//
//  1. the profile's explicit sso_account_id field
//  2. any entry in the local SSO token cache carrying an account ID
//  3. a live STS identity check scoped to the profile
//
// The STS source only runs for the active profile unless fetchAll is set,
// and its failure degrades the field to unresolved rather than aborting the
// listing.
func (c *Catalog) resolveAccount(ctx context.Context, p *domain.ProfileInfo, section *ini.Section, fetchAll bool) {
	if p.IsSSO {
		if section != nil {
			if id := section.Key("sso_account_id").String(); id != "" {
				p.AccountID = id
				return
			}
		}
		if id, ok := c.accountFromSSOCache(); ok {
			p.AccountID = id
			return
		}
	}

	if !fetchAll && !p.IsActive {
		return
	}

	identity, err := c.identity(ctx, p.Name)
	if err != nil {
		logging.LogDebug("Identity check failed, leaving account unresolved", map[string]any{
			"profile": p.Name,
			"error":   err.Error(),
		})
		return
	}

	p.AccountID = identity.AccountID
	method, who := classifyIdentityARN(identity.ARN)
	if p.AuthMethod == "" {
		p.AuthMethod = method
	}
	if p.UserIdentity == "" {
		p.UserIdentity = who
	}
}

// accountFromSSOCache scans ~/.aws/sso/cache for any cached entry carrying
// an account ID. First match wins; no ordering across cache files is
// guaranteed beyond "some match".
func (c *Catalog) accountFromSSOCache() (string, bool) {
	entries, err := os.ReadDir(c.SSOCacheDir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.SSOCacheDir, entry.Name()))
		if err != nil {
			continue
		}
		var cached struct {
			AccountID string `json:"accountId"`
		}
		if err := json.Unmarshal(data, &cached); err != nil {
			continue
		}
		if cached.AccountID != "" {
			return cached.AccountID, true
		}
	}
	return "", false
}

// classifyIdentityARN maps an STS identity ARN to an auth method and the
// user or role name embedded in it.
//
//	arn:aws:sts::ACCOUNT:assumed-role/ROLE/SESSION  -> role, ROLE
//	arn:aws:iam::ACCOUNT:user/USERNAME              -> api_key, USERNAME
//	arn:aws:sts::ACCOUNT:federated-user/NAME        -> federated, NAME
func classifyIdentityARN(arn string) (domain.AuthMethod, string) {
	var method domain.AuthMethod
	switch {
	case strings.Contains(arn, "assumed-role"):
		method = domain.AuthMethodRole
	case strings.Contains(arn, ":user/"):
		method = domain.AuthMethodAPIKey
	case strings.Contains(arn, ":federated-user/"):
		method = domain.AuthMethodFederated
	default:
		return "", ""
	}

	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return method, ""
	}
	return method, parts[1]
}
