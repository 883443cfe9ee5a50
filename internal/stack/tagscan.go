package stack

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"infrautilx/internal/awsutil"
	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
	"infrautilx/internal/tags"
)

// taggedResourceAPI is the EC2 surface the fallback scan needs.
type taggedResourceAPI interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// scanTaggedResources recovers a stack's key outputs by querying live EC2
// resources tagged with the project name. Strictly best-effort: any failure
// yields an empty result.
func scanTaggedResources(ctx context.Context, project string) map[string]any {
	client, err := awsutil.EC2Client(ctx, "")
	if err != nil {
		logging.LogDebug("Tagged-resource scan unavailable", map[string]any{"error": err.Error()})
		return nil
	}
	return scanTaggedResourcesWith(ctx, client, project)
}

func scanTaggedResourcesWith(ctx context.Context, client taggedResourceAPI, project string) map[string]any {
	outputs := make(map[string]any)
	projectFilter := ec2types.Filter{
		Name:   aws.String("tag:" + tags.ProjectKey),
		Values: []string{project},
	}

	sgs, err := client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{projectFilter},
	})
	if err != nil {
		logging.LogDebug("Security group tag scan failed", map[string]any{
			"project": project,
			"error":   err.Error(),
		})
	} else if len(sgs.SecurityGroups) > 0 {
		outputs[domain.OutputSecurityGroupID] = aws.ToString(sgs.SecurityGroups[0].GroupId)
	}

	instances, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			projectFilter,
			{Name: aws.String("instance-state-name"), Values: []string{"running", "pending"}},
		},
	})
	if err != nil {
		logging.LogDebug("Instance tag scan failed", map[string]any{
			"project": project,
			"error":   err.Error(),
		})
	} else {
	scan:
		for _, reservation := range instances.Reservations {
			for _, instance := range reservation.Instances {
				outputs[domain.OutputInstanceID] = aws.ToString(instance.InstanceId)
				if instance.PublicIpAddress != nil {
					outputs[domain.OutputPublicIP] = aws.ToString(instance.PublicIpAddress)
				}
				break scan
			}
		}
	}

	if len(outputs) == 0 {
		return nil
	}
	return outputs
}
