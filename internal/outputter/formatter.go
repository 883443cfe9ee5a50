package outputter

import (
	"encoding/json"
	"fmt"
	"strings"

	"infrautilx/internal/domain"
)

// RenderStacks formats a stack listing for humans, or as indented JSON.
func RenderStacks(stacks []domain.StackSummary, jsonOut bool) (string, error) {
	if jsonOut {
		return renderJSON(stacks)
	}

	if len(stacks) == 0 {
		return "No stacks found.\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d stacks:\n", len(stacks))
	for i, s := range stacks {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, s.Name, s.Project)
		fmt.Fprintf(&b, "   Last updated: %s\n", s.LastUpdate)
		fmt.Fprintf(&b, "   Resources: %d\n", s.ResourceCount)

		if ip := s.StringOutput(domain.OutputPublicIP); ip != "" {
			fmt.Fprintf(&b, "   Public IP: %s\n", ip)
		}
		if vpc := s.StringOutput(domain.OutputVPCID); vpc != "" {
			fmt.Fprintf(&b, "   VPC ID: %s\n", vpc)
		}
		if sg := s.SecurityGroupID(); sg != "" {
			fmt.Fprintf(&b, "   Security Group ID: %s\n", sg)
		}
	}
	return b.String(), nil
}

// RenderAccessStatuses formats per-stack access results. The current CIDR is
// annotated inside each stack's authorized list.
func RenderAccessStatuses(statuses []domain.AccessStatus, currentCIDR string, jsonOut bool) (string, error) {
	if jsonOut {
		return renderJSON(statuses)
	}

	if len(statuses) == 0 {
		return "No access information available.\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current IP: %s\n", currentCIDR)
	fmt.Fprintf(&b, "\nAccess status for %d stacks:\n", len(statuses))

	for i, status := range statuses {
		verdict := "❌ DENIED"
		if status.HasAccess {
			verdict = "✅ ALLOWED"
		}
		fmt.Fprintf(&b, "\n%d. %s - %s\n", i+1, status.StackName, verdict)
		fmt.Fprintf(&b, "   Security Group: %s\n", status.SecurityGroupID)
		fmt.Fprintf(&b, "   Authorized IPs for SSH:\n")
		for _, cidr := range status.AuthorizedCIDRs {
			if cidr == status.CurrentCIDR {
				fmt.Fprintf(&b, "     - %s (current)\n", cidr)
			} else {
				fmt.Fprintf(&b, "     - %s\n", cidr)
			}
		}
	}
	return b.String(), nil
}

// RenderProfiles formats the profile listing with an arrow on the active
// entry.
func RenderProfiles(profiles []domain.ProfileInfo, current string) string {
	var b strings.Builder
	b.WriteString("AWS Profiles:\n")

	if len(profiles) == 0 {
		b.WriteString("No AWS profiles found.\n")
	}
	for _, p := range profiles {
		marker := "  "
		if p.IsActive {
			marker = "→ "
		}
		fmt.Fprintf(&b, "%s%s\n", marker, p)
	}

	if current != "" {
		fmt.Fprintf(&b, "\nActive profile: %s\n", current)
	} else {
		b.WriteString("\nNo profile explicitly set (using default)\n")
	}
	return b.String()
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(data) + "\n", nil
}
