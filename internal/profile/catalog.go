// Package profile enumerates and operates on the AWS credential profiles
// configured on the local machine. Profiles come from two on-disk sources,
// ~/.aws/config and ~/.aws/credentials; both files are owned and formatted
// by the AWS ecosystem and are only parsed here.
package profile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"infrautilx/internal/awsutil"
	"infrautilx/internal/config"
	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
)

// Environment variables naming the active profile, checked in order.
const (
	envProfile        = "AWS_PROFILE"
	envDefaultProfile = "AWS_DEFAULT_PROFILE"
)

// Catalog lists and manipulates AWS profiles. The zero value is not usable;
// construct with NewCatalog.
type Catalog struct {
	ConfigPath      string
	CredentialsPath string
	SSOCacheDir     string

	getenv     func(string) string
	setenv     func(string, string) error
	identity   func(ctx context.Context, profile string) (awsutil.CallerIdentity, error)
	ssoLogin   func(ctx context.Context, profile string) error
	stsTimeout time.Duration
}

// NewCatalog builds a catalog over the standard ~/.aws file locations.
func NewCatalog(settings *config.Settings) *Catalog {
	home, err := os.UserHomeDir()
	if err != nil {
		logging.LogWarn("Could not resolve home directory", map[string]any{"error": err.Error()})
	}
	awsDir := filepath.Join(home, ".aws")

	timeout := settings.STSTimeout()
	return &Catalog{
		ConfigPath:      filepath.Join(awsDir, "config"),
		CredentialsPath: filepath.Join(awsDir, "credentials"),
		SSOCacheDir:     filepath.Join(awsDir, "sso", "cache"),
		getenv:          os.Getenv,
		setenv:          os.Setenv,
		identity: func(ctx context.Context, profile string) (awsutil.CallerIdentity, error) {
			return awsutil.GetCallerIdentity(ctx, profile, timeout)
		},
		ssoLogin:   runSSOLogin,
		stsTimeout: timeout,
	}
}

// Current returns the environment-resolved active profile name, or "" when
// no profile is explicitly set (the implicit default applies but is not
// itself named).
func (c *Catalog) Current() string {
	if p := c.getenv(envProfile); p != "" {
		return p
	}
	return c.getenv(envDefaultProfile)
}

// List enumerates every configured profile. Config-file entries come first
// and win on name conflicts with the credentials file. A missing or
// malformed file degrades to an empty or partial listing, never an error.
//
// Resolving an account ID may issue one live STS call per profile; that is
// bounded to the active profile unless fetchAllAccountIDs is set.
func (c *Catalog) List(ctx context.Context, fetchAllAccountIDs bool) []domain.ProfileInfo {
	current := c.Current()
	profiles := make([]domain.ProfileInfo, 0)
	seen := make(map[string]bool)

	creds := c.loadINI(c.CredentialsPath)

	if cfg := c.loadINI(c.ConfigPath); cfg != nil {
		for _, section := range cfg.Sections() {
			name, isDefault, ok := profileNameFromSection(section.Name())
			if !ok {
				continue
			}

			p := domain.ProfileInfo{
				Name:      name,
				Region:    section.Key("region").String(),
				IsSSO:     section.HasKey("sso_start_url") || section.HasKey("sso_session"),
				IsDefault: isDefault,
				IsActive:  name == current && current != "",
			}

			if p.IsSSO {
				p.AuthMethod = domain.AuthMethodSSO
				p.UserIdentity = section.Key("sso_role_name").String()
			}
			if section.HasKey("role_arn") {
				p.AuthMethod = domain.AuthMethodRole
				if parts := strings.Split(section.Key("role_arn").String(), "/"); len(parts) >= 2 {
					p.UserIdentity = parts[1]
				}
			}

			c.resolveAccount(ctx, &p, section, fetchAllAccountIDs)

			if p.AuthMethod == "" && creds != nil {
				p.AuthMethod = authMethodFromCredentials(creds, name)
			}

			profiles = append(profiles, p)
			seen[name] = true
		}
	}

	// Credentials-file-only profiles, appended after the config pass.
	if creds != nil {
		for _, section := range creds.Sections() {
			name := section.Name()
			if name == ini.DefaultSection || seen[name] {
				continue
			}

			p := domain.ProfileInfo{
				Name:       name,
				IsDefault:  name == "default",
				IsActive:   name == current && current != "",
				AuthMethod: authMethodFromCredentials(creds, name),
			}
			c.resolveAccount(ctx, &p, nil, fetchAllAccountIDs)

			profiles = append(profiles, p)
			seen[name] = true
		}
	}

	return profiles
}

func (c *Catalog) loadINI(path string) *ini.File {
	f, err := ini.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.LogWarn("Could not parse AWS file", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
		return nil
	}
	return f
}

// profileNameFromSection maps an ~/.aws/config section header to a profile
// name. Non-profile sections such as sso-session blocks are skipped.
func profileNameFromSection(section string) (name string, isDefault, ok bool) {
	switch {
	case section == ini.DefaultSection:
		return "", false, false
	case section == "default":
		return "default", true, true
	case strings.HasPrefix(section, "profile "):
		return strings.TrimPrefix(section, "profile "), false, true
	case strings.HasPrefix(section, "sso-session"):
		return "", false, false
	default:
		return section, false, true
	}
}

func authMethodFromCredentials(creds *ini.File, name string) domain.AuthMethod {
	section, err := creds.GetSection(name)
	if err != nil {
		return ""
	}
	if section.HasKey("aws_access_key_id") {
		return domain.AuthMethodAPIKey
	}
	if section.HasKey("credential_process") {
		return domain.AuthMethodExternal
	}
	return ""
}

func runSSOLogin(ctx context.Context, profile string) error {
	cmd := exec.CommandContext(ctx, "aws", "sso", "login", "--profile", profile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	start := time.Now()
	err := cmd.Run()
	logging.LogToolCall("aws", []string{"sso", "login", "--profile", profile}, err == nil, time.Since(start), err)
	return err
}
