package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	settings, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(settings.IPLookupEndpoints) != 2 {
		t.Errorf("default endpoints = %v, want primary plus one fallback", settings.IPLookupEndpoints)
	}
	if settings.MonitoredPort != 22 || settings.MonitoredProtocol != "tcp" {
		t.Errorf("default monitored rule = %s/%d, want tcp/22", settings.MonitoredProtocol, settings.MonitoredPort)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("monitored_port: 2222\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.MonitoredPort != 2222 {
		t.Errorf("monitored_port = %d, want the override 2222", settings.MonitoredPort)
	}
	// Untouched keys keep their embedded defaults.
	if settings.MonitoredProtocol != "tcp" {
		t.Errorf("monitored_protocol = %q, want tcp", settings.MonitoredProtocol)
	}
}

func TestLoad_MissingOverrideFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing override file should fail loudly")
	}
}
