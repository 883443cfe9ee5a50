// Package tags builds the tag sets applied to every resource InfraUtilX
// deploys, and the tag sets the catalogs use to find them again.
package tags

// Tag keys shared between the deploy-time tag sets and the catalogs that
// query by them.
const (
	ProjectKey     = "Project"
	EnvironmentKey = "Environment"
	ManagedByKey   = "ManagedBy"
)

// ManagedByValue marks resources owned by InfraUtilX blueprints.
const ManagedByValue = "InfraUtilX"

// Default returns the baseline tags for a project and environment.
func Default(project, environment string) map[string]string {
	return map[string]string{
		ProjectKey:     project,
		EnvironmentKey: environment,
		ManagedByKey:   ManagedByValue,
	}
}

// Merge overlays custom tags on defaults. Custom values win on conflict;
// neither input map is modified.
func Merge(defaults, custom map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(custom))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range custom {
		merged[k] = v
	}
	return merged
}
