package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"infrautilx/internal/awsutil"
	"infrautilx/internal/domain"
)

// newTestCatalog returns a catalog over a temp directory with a fake
// environment and a failing identity check. Tests override fields as needed.
func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()

	env := map[string]string{}
	c := &Catalog{
		ConfigPath:      filepath.Join(dir, "config"),
		CredentialsPath: filepath.Join(dir, "credentials"),
		SSOCacheDir:     filepath.Join(dir, "sso", "cache"),
		getenv:          func(k string) string { return env[k] },
		setenv: func(k, v string) error {
			env[k] = v
			return nil
		},
		identity: func(ctx context.Context, profile string) (awsutil.CallerIdentity, error) {
			return awsutil.CallerIdentity{}, errors.New("no credentials in test")
		},
		ssoLogin:   func(ctx context.Context, profile string) error { return errors.New("not wired") },
		stsTimeout: time.Second,
	}
	return c, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestList_MissingFilesYieldEmptyListing(t *testing.T) {
	c, _ := newTestCatalog(t)
	if got := c.List(context.Background(), false); len(got) != 0 {
		t.Errorf("List with no files = %v, want empty", got)
	}
}

func TestList_MalformedConfigYieldsEmptyListing(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, "[[[not ini at all")
	if got := c.List(context.Background(), false); len(got) != 0 {
		t.Errorf("List with malformed config = %v, want empty", got)
	}
}

func TestList_ParsesConfigSections(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[default]
region = us-east-1

[profile dev]
region = eu-west-1
sso_session = corp
sso_account_id = 111122223333
sso_role_name = Developer

[profile ops]
role_arn = arn:aws:iam::444455556666:role/OpsAdmin/path
source_profile = default

[sso-session corp]
sso_start_url = https://corp.awsapps.com/start
sso_region = us-east-1
`)

	profiles := c.List(context.Background(), false)
	if len(profiles) != 3 {
		t.Fatalf("List returned %d profiles (%v), want 3", len(profiles), profiles)
	}

	byName := map[string]domain.ProfileInfo{}
	for _, p := range profiles {
		byName[p.Name] = p
	}

	def := byName["default"]
	if !def.IsDefault || def.Region != "us-east-1" || def.IsSSO {
		t.Errorf("default profile parsed wrong: %+v", def)
	}

	dev := byName["dev"]
	if !dev.IsSSO || dev.AuthMethod != domain.AuthMethodSSO {
		t.Errorf("dev should be SSO-classified: %+v", dev)
	}
	if dev.AccountID != "111122223333" {
		t.Errorf("dev account should come from the explicit field, got %q", dev.AccountID)
	}
	if dev.UserIdentity != "Developer" {
		t.Errorf("dev user identity = %q, want Developer", dev.UserIdentity)
	}

	ops := byName["ops"]
	if ops.AuthMethod != domain.AuthMethodRole || ops.UserIdentity != "OpsAdmin" {
		t.Errorf("ops role classification wrong: %+v", ops)
	}

	if _, ok := byName["corp"]; ok {
		t.Error("sso-session section leaked into the profile listing")
	}
}

func TestList_DeduplicatesConfigOverCredentials(t *testing.T) {
	// SCENARIO: "shared" exists in both files. It must appear once, with
	// config-derived fields winning and only the auth method borrowed from
	// the credentials file.
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile shared]
region = us-west-2
`)
	writeFile(t, c.CredentialsPath, `
[shared]
aws_access_key_id = AKIAEXAMPLE
aws_secret_access_key = secret

[creds-only]
credential_process = /usr/local/bin/fetch-creds
`)

	profiles := c.List(context.Background(), false)
	if len(profiles) != 2 {
		t.Fatalf("List returned %d profiles (%v), want 2", len(profiles), profiles)
	}

	if profiles[0].Name != "shared" {
		t.Fatalf("config-sourced profile should come first, got %q", profiles[0].Name)
	}
	if profiles[0].Region != "us-west-2" {
		t.Errorf("config-derived region lost: %+v", profiles[0])
	}
	if profiles[0].AuthMethod != domain.AuthMethodAPIKey {
		t.Errorf("shared auth method = %q, want api_key", profiles[0].AuthMethod)
	}

	if profiles[1].Name != "creds-only" || profiles[1].AuthMethod != domain.AuthMethodExternal {
		t.Errorf("credentials-only profile parsed wrong: %+v", profiles[1])
	}
}

func TestList_ActiveFlagFollowsEnvironment(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile one]
region = us-east-1

[profile two]
region = us-east-2
`)
	c.setenv(envProfile, "two")

	profiles := c.List(context.Background(), false)
	activeCount := 0
	for _, p := range profiles {
		if p.IsActive {
			activeCount++
			if p.Name != "two" {
				t.Errorf("wrong profile marked active: %+v", p)
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("%d profiles marked active, want exactly 1", activeCount)
	}
}

func TestList_SSOCacheScanResolvesAccount(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile sso-no-id]
sso_start_url = https://corp.awsapps.com/start
`)
	writeFile(t, filepath.Join(c.SSOCacheDir, "token.json"), `{"accessToken":"x","accountId":"999988887777"}`)

	profiles := c.List(context.Background(), false)
	if len(profiles) != 1 || profiles[0].AccountID != "999988887777" {
		t.Errorf("account should resolve from the SSO cache scan, got %v", profiles)
	}
}

func TestList_STSOnlyForActiveUnlessFetchAll(t *testing.T) {
	// SCENARIO: Two non-SSO profiles, one active. Without fetchAll only the
	// active one triggers an identity check; with fetchAll both do.
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile alpha]
region = us-east-1

[profile beta]
region = us-east-1
`)
	c.setenv(envProfile, "alpha")

	var checked []string
	c.identity = func(ctx context.Context, profile string) (awsutil.CallerIdentity, error) {
		checked = append(checked, profile)
		return awsutil.CallerIdentity{
			AccountID: "123456789012",
			ARN:       "arn:aws:iam::123456789012:user/alice",
		}, nil
	}

	profiles := c.List(context.Background(), false)
	if len(checked) != 1 || checked[0] != "alpha" {
		t.Fatalf("identity checks = %v, want only alpha", checked)
	}
	for _, p := range profiles {
		if p.Name == "alpha" {
			if p.AccountID != "123456789012" || p.AuthMethod != domain.AuthMethodAPIKey || p.UserIdentity != "alice" {
				t.Errorf("active profile not enriched from identity check: %+v", p)
			}
		}
		if p.Name == "beta" && p.AccountID != "" {
			t.Errorf("inactive profile should stay unresolved: %+v", p)
		}
	}

	checked = nil
	c.List(context.Background(), true)
	if len(checked) != 2 {
		t.Errorf("with fetchAll, identity checks = %v, want both profiles", checked)
	}
}

func TestList_IdentityFailureDegradesToUnresolved(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile flaky]
region = us-east-1
`)

	profiles := c.List(context.Background(), true)
	if len(profiles) != 1 {
		t.Fatalf("List = %v, want one profile despite identity failure", profiles)
	}
	if profiles[0].AccountID != "" {
		t.Errorf("account should be left unresolved on identity failure: %+v", profiles[0])
	}
}

func TestClassifyIdentityARN(t *testing.T) {
	cases := []struct {
		arn        string
		wantMethod domain.AuthMethod
		wantWho    string
	}{
		{"arn:aws:sts::123:assumed-role/Deployer/session-1", domain.AuthMethodRole, "Deployer"},
		{"arn:aws:iam::123:user/alice", domain.AuthMethodAPIKey, "alice"},
		{"arn:aws:sts::123:federated-user/bob", domain.AuthMethodFederated, "bob"},
		{"arn:aws:iam::123:root", "", ""},
	}
	for _, tc := range cases {
		method, who := classifyIdentityARN(tc.arn)
		if method != tc.wantMethod || who != tc.wantWho {
			t.Errorf("classifyIdentityARN(%q) = (%q, %q), want (%q, %q)",
				tc.arn, method, who, tc.wantMethod, tc.wantWho)
		}
	}
}

func TestSwitch(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile known]
region = us-east-1
`)

	if c.Switch(context.Background(), "unknown") {
		t.Error("Switch to an unknown profile should fail")
	}
	if !c.Switch(context.Background(), "known") {
		t.Fatal("Switch to a known profile should succeed")
	}
	if c.Current() != "known" {
		t.Errorf("Current after Switch = %q, want known", c.Current())
	}
}

func TestValidate(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile good]
region = us-east-1
`)
	c.setenv(envProfile, "good")
	c.identity = func(ctx context.Context, profile string) (awsutil.CallerIdentity, error) {
		if profile == "good" {
			return awsutil.CallerIdentity{AccountID: "123456789012"}, nil
		}
		return awsutil.CallerIdentity{}, errors.New("expired token")
	}

	if ok, msg := c.Validate(context.Background(), "missing"); ok || msg == "" {
		t.Errorf("Validate(missing) = (%v, %q), want failure with message", ok, msg)
	}
	if ok, _ := c.Validate(context.Background(), "good"); !ok {
		t.Error("Validate(good) should succeed")
	}
	// Empty name validates the current profile.
	if ok, _ := c.Validate(context.Background(), ""); !ok {
		t.Error("Validate of the current profile should succeed")
	}
	if c.Current() != "good" {
		t.Errorf("Validate moved the active-profile signal to %q", c.Current())
	}
}

func TestRefreshSSO(t *testing.T) {
	c, _ := newTestCatalog(t)
	writeFile(t, c.ConfigPath, `
[profile sso-prof]
sso_start_url = https://corp.awsapps.com/start

[profile keys]
region = us-east-1
`)

	loginCalls := 0
	c.ssoLogin = func(ctx context.Context, profile string) error {
		loginCalls++
		return nil
	}

	if ok, _ := c.RefreshSSO(context.Background(), "missing"); ok {
		t.Error("RefreshSSO of a missing profile should fail")
	}
	if ok, msg := c.RefreshSSO(context.Background(), "keys"); ok || loginCalls != 0 {
		t.Errorf("RefreshSSO of a non-SSO profile = (%v, %q); login must not run", ok, msg)
	}
	if ok, msg := c.RefreshSSO(context.Background(), "sso-prof"); !ok || loginCalls != 1 {
		t.Errorf("RefreshSSO = (%v, %q) with %d login calls, want success with 1", ok, msg, loginCalls)
	}
}
