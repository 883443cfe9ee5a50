package tags

import (
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	got := Default("p", "dev")
	want := map[string]string{
		"Project":     "p",
		"Environment": "dev",
		"ManagedBy":   "InfraUtilX",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Default = %v, want %v", got, want)
	}
}

func TestMerge_CustomWinsOnConflict(t *testing.T) {
	defaults := Default("p", "dev")
	custom := map[string]string{"Project": "override", "Owner": "u"}

	got := Merge(defaults, custom)
	want := map[string]string{
		"Project":     "override",
		"Environment": "dev",
		"ManagedBy":   "InfraUtilX",
		"Owner":       "u",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge = %v, want %v", got, want)
	}

	// Inputs stay untouched.
	if defaults["Project"] != "p" {
		t.Errorf("Merge mutated the defaults map: %v", defaults)
	}
}

func TestMerge_NilCustom(t *testing.T) {
	defaults := Default("p", "dev")
	if got := Merge(defaults, nil); !reflect.DeepEqual(got, defaults) {
		t.Errorf("Merge with nil custom = %v, want %v", got, defaults)
	}
}
