package domain

import (
	"fmt"
	"strings"
)

// AuthMethod classifies how an AWS profile authenticates.
type AuthMethod string

const (
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodSSO       AuthMethod = "sso"
	AuthMethodRole      AuthMethod = "role"
	AuthMethodFederated AuthMethod = "federated"
	AuthMethodExternal  AuthMethod = "external"
	AuthMethodUnknown   AuthMethod = "unknown"
)

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// ProfileInfo describes one locally configured AWS credential profile.
// Instances are built fresh on every catalog listing and never mutated after.
type ProfileInfo struct {
	Name         string     `json:"name"`
	Region       string     `json:"region,omitempty"`
	IsSSO        bool       `json:"is_sso"`
	IsDefault    bool       `json:"is_default"`
	IsActive     bool       `json:"is_active"`
	AccountID    string     `json:"account_id,omitempty"`
	AuthMethod   AuthMethod `json:"auth_method,omitempty"`
	UserIdentity string     `json:"user_identity,omitempty"`
}

// String renders a one-line human summary of the profile.
func (p ProfileInfo) String() string {
	var status []string
	if p.IsActive {
		status = append(status, "ACTIVE")
	}
	if p.IsDefault {
		status = append(status, "DEFAULT")
	}
	if p.IsSSO {
		status = append(status, "SSO")
	}

	var b strings.Builder
	b.WriteString(p.Name)
	if p.Region != "" {
		b.WriteString(" - " + p.Region)
	}
	if p.AccountID != "" {
		b.WriteString(" - Account: " + p.AccountID)
	}

	var identity []string
	if p.AuthMethod != "" && p.AuthMethod != AuthMethodUnknown {
		identity = append(identity, string(p.AuthMethod))
	}
	if p.UserIdentity != "" {
		identity = append(identity, p.UserIdentity)
	}
	if len(identity) > 0 {
		b.WriteString(fmt.Sprintf(" [%s]", strings.Join(identity, ", ")))
	}
	if len(status) > 0 {
		b.WriteString(fmt.Sprintf(" (%s)", strings.Join(status, ", ")))
	}
	return b.String()
}

// StackSummary describes one deployed Pulumi stack. Name is always the
// fully qualified "project/stack" form. Outputs may be empty: a stack with
// no exported values and one whose outputs could not be retrieved are
// indistinguishable.
type StackSummary struct {
	Name          string         `json:"name"`
	Project       string         `json:"project"`
	LastUpdate    string         `json:"last_update,omitempty"`
	ResourceCount int            `json:"resources"`
	Outputs       map[string]any `json:"outputs,omitempty"`
}

// Well-known stack output keys exported by InfraUtilX blueprints.
const (
	OutputSecurityGroupID = "security_group_id"
	OutputPublicIP        = "public_ip"
	OutputVPCID           = "vpc_id"
	OutputInstanceID      = "instance_id"
)

// StringOutput returns the named output as a string, or "" if it is absent
// or not string-valued.
func (s StackSummary) StringOutput(key string) string {
	v, ok := s.Outputs[key]
	if !ok {
		return ""
	}
	str, ok := v.(string)
	if !ok {
		return ""
	}
	return str
}

// SecurityGroupID returns the stack's published firewall reference, if any.
func (s StackSummary) SecurityGroupID() string {
	return s.StringOutput(OutputSecurityGroupID)
}

// IngressRule is the normalized form of one firewall permission. Loosely
// typed rule shapes are converted into this record at the outermost parsing
// step and never travel past it.
type IngressRule struct {
	Protocol   string   `json:"protocol"`
	FromPort   int32    `json:"from_port"`
	ToPort     int32    `json:"to_port"`
	CIDRBlocks []string `json:"cidr_blocks"`
}

// Covers reports whether the rule admits the given protocol/port pair.
// Protocol "-1" is the EC2 wildcard and carries no port range.
func (r IngressRule) Covers(protocol string, port int32) bool {
	if r.Protocol == "-1" {
		return true
	}
	if r.Protocol != protocol {
		return false
	}
	return r.FromPort <= port && port <= r.ToPort
}

// AccessStatus is the access-control evaluation result for one stack at one
// moment in time. Recomputing re-fetches live rules; there is no staleness
// guarantee across a caller's decision window.
type AccessStatus struct {
	StackName       string   `json:"stack_name"`
	SecurityGroupID string   `json:"security_group_id"`
	HasAccess       bool     `json:"has_access"`
	CurrentCIDR     string   `json:"current_ip"`
	AuthorizedCIDRs []string `json:"authorized_ips"`
}
