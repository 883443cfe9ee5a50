package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed settings.yaml
var defaultSettingsYAML []byte

// Settings holds the tunable behavior of the tool. The access reconciler
// monitors a single protocol/port pair (SSH by default); broader port
// coverage is a deliberate non-feature.
type Settings struct {
	IPLookupEndpoints    []string `yaml:"ip_lookup_endpoints"`
	MonitoredPort        int32    `yaml:"monitored_port"`
	MonitoredProtocol    string   `yaml:"monitored_protocol"`
	DefaultProjectFilter string   `yaml:"default_project_filter"`
	STSTimeoutSeconds    int      `yaml:"sts_timeout_seconds"`
}

// STSTimeout returns the per-call deadline for identity lookups.
func (s *Settings) STSTimeout() time.Duration {
	if s.STSTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.STSTimeoutSeconds) * time.Second
}

// Load returns the embedded default settings, overlaid with the YAML file at
// path when one is given.
func Load(path string) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(defaultSettingsYAML, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse embedded settings: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	return &settings, nil
}
