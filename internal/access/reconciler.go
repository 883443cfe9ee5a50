// Package access cross-references the caller's current public address
// against the firewall configuration of deployed stacks, and can admit the
// current address where it is missing.
package access

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"infrautilx/internal/awsutil"
	"infrautilx/internal/config"
	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
	"infrautilx/internal/netid"
	"infrautilx/internal/stack"
)

// SecurityGroupAPI is the EC2 surface the reconciler needs. *ec2.Client
// satisfies it.
type SecurityGroupAPI interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
}

// Reconciler evaluates and mutates stack firewall rules for one monitored
// protocol/port pair (SSH by default). Results reflect the moment of the
// call only; nothing is snapshotted across calls.
type Reconciler struct {
	port     int32
	protocol string

	resolve    func(ctx context.Context) (string, error)
	listStacks func(ctx context.Context, projectFilter string) []domain.StackSummary
	ec2For     func(ctx context.Context) (SecurityGroupAPI, error)
}

// NewReconciler wires a reconciler to the live identity resolver, stack
// catalog, and EC2 API.
func NewReconciler(settings *config.Settings) *Reconciler {
	resolver := netid.NewResolver(settings.IPLookupEndpoints...)
	return &Reconciler{
		port:     settings.MonitoredPort,
		protocol: settings.MonitoredProtocol,
		resolve:  resolver.ResolveCurrentAddress,
		listStacks: func(ctx context.Context, projectFilter string) []domain.StackSummary {
			return stack.NewCatalog(projectFilter).List(ctx)
		},
		ec2For: func(ctx context.Context) (SecurityGroupAPI, error) {
			return awsutil.EC2Client(ctx, "")
		},
	}
}

// Check reports the access status of every stack publishing a firewall
// reference. Stacks without one are excluded from the result. The whole
// call fails when the current address cannot be resolved: proceeding with
// no address would produce a misleading report.
func (r *Reconciler) Check(ctx context.Context, stackName, projectFilter string) ([]domain.AccessStatus, error) {
	ip, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}
	currentCIDR := netid.ToCIDR(ip)

	stacks := r.listStacks(ctx, projectFilter)
	if stackName != "" {
		kept := stacks[:0]
		for _, s := range stacks {
			if s.Name == stackName {
				kept = append(kept, s)
			}
		}
		stacks = kept
	}

	var client SecurityGroupAPI
	statuses := make([]domain.AccessStatus, 0, len(stacks))
	for _, s := range stacks {
		sgID := s.SecurityGroupID()
		if sgID == "" {
			continue
		}

		if client == nil {
			client, err = r.ec2For(ctx)
			if err != nil {
				return nil, err
			}
		}

		rules, err := ingressRules(ctx, client, sgID)
		if err != nil {
			logging.LogWarn("Could not fetch ingress rules", map[string]any{
				"stack": s.Name,
				"group": sgID,
				"error": err.Error(),
			})
		}

		hasAccess, authorized := r.evaluate(rules, currentCIDR)
		statuses = append(statuses, domain.AccessStatus{
			StackName:       s.Name,
			SecurityGroupID: sgID,
			HasAccess:       hasAccess,
			CurrentCIDR:     currentCIDR,
			AuthorizedCIDRs: authorized,
		})
	}

	return statuses, nil
}

// Update admits the current address to the named stack's firewall. If
// access is already granted the call short-circuits without mutating
// anything, which is what makes re-running it idempotent; the underlying
// authorize call itself is not. Between the check and the mutation another
// actor may change the firewall state; that window is accepted, not closed.
func (r *Reconciler) Update(ctx context.Context, stackName string) error {
	ip, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	currentCIDR := netid.ToCIDR(ip)

	stacks := r.listStacks(ctx, "")
	var target *domain.StackSummary
	available := make([]string, 0, len(stacks))
	for i, s := range stacks {
		available = append(available, s.Name)
		if s.Name == stackName {
			target = &stacks[i]
		}
	}
	if target == nil {
		return &domain.NotFoundError{Kind: "stack", Name: stackName, Available: available}
	}

	sgID := target.SecurityGroupID()
	if sgID == "" {
		return &domain.ConfigurationError{Stack: stackName, Output: domain.OutputSecurityGroupID}
	}

	client, err := r.ec2For(ctx)
	if err != nil {
		return err
	}

	rules, err := ingressRules(ctx, client, sgID)
	if err != nil {
		logging.LogWarn("Could not check current access status, proceeding with update", map[string]any{
			"stack": stackName,
			"error": err.Error(),
		})
	} else if hasAccess, _ := r.evaluate(rules, currentCIDR); hasAccess {
		logging.LogInfo("Current address already has access", map[string]any{
			"stack": stackName,
			"cidr":  currentCIDR,
		})
		return nil
	}

	logging.LogInfo("Authorizing ingress for current address", map[string]any{
		"stack": stackName,
		"group": sgID,
		"cidr":  currentCIDR,
	})
	_, err = client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(sgID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String(r.protocol),
				FromPort:   aws.Int32(r.port),
				ToPort:     aws.Int32(r.port),
				IpRanges: []ec2types.IpRange{
					{
						CidrIp:      aws.String(currentCIDR),
						Description: aws.String(fmt.Sprintf("SSH access from updated IP %s", currentCIDR)),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to authorize ingress on %s: %w", sgID, err)
	}
	return nil
}

// evaluate checks membership of the current CIDR in the rules covering the
// monitored protocol/port, and collects every CIDR those rules authorize in
// rule order.
func (r *Reconciler) evaluate(rules []domain.IngressRule, currentCIDR string) (bool, []string) {
	hasAccess := false
	authorized := make([]string, 0)
	for _, rule := range rules {
		if !rule.Covers(r.protocol, r.port) {
			continue
		}
		authorized = append(authorized, rule.CIDRBlocks...)
		for _, cidr := range rule.CIDRBlocks {
			if cidr == currentCIDR {
				hasAccess = true
			}
		}
	}
	return hasAccess, authorized
}

// ingressRules fetches the live ingress rule set of one security group and
// normalizes it immediately; the SDK's loosely shaped permission records do
// not travel past this function.
func ingressRules(ctx context.Context, client SecurityGroupAPI, sgID string) ([]domain.IngressRule, error) {
	out, err := client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{sgID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security group %s: %w", sgID, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, fmt.Errorf("security group %s not found", sgID)
	}
	return normalizeIngress(out.SecurityGroups[0].IpPermissions), nil
}

func normalizeIngress(perms []ec2types.IpPermission) []domain.IngressRule {
	rules := make([]domain.IngressRule, 0, len(perms))
	for _, perm := range perms {
		rule := domain.IngressRule{
			Protocol: aws.ToString(perm.IpProtocol),
			FromPort: aws.ToInt32(perm.FromPort),
			ToPort:   aws.ToInt32(perm.ToPort),
		}
		for _, ipRange := range perm.IpRanges {
			rule.CIDRBlocks = append(rule.CIDRBlocks, aws.ToString(ipRange.CidrIp))
		}
		rules = append(rules, rule)
	}
	return rules
}
