package awsutil

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const (
	canonicalOwnerID = "099720109477"
	amazonOwnerID    = "137112412989"
)

// ImageQueryAPI is the EC2 surface needed for AMI lookups.
type ImageQueryAPI interface {
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

// LatestUbuntuAMI returns the most recent Ubuntu server AMI ID for the given
// release version (e.g. "22.04") and architecture (amd64, arm64).
func LatestUbuntuAMI(ctx context.Context, client ImageQueryAPI, version, architecture string) (string, error) {
	namePattern := fmt.Sprintf("ubuntu/images/hvm-ssd/ubuntu-*-%s-%s-server-*", version, architecture)
	return latestImage(ctx, client, canonicalOwnerID, namePattern)
}

// LatestAmazonLinuxAMI returns the most recent Amazon Linux AMI ID for the
// given major version (1 or 2) and architecture (x86_64, arm64).
func LatestAmazonLinuxAMI(ctx context.Context, client ImageQueryAPI, version int, architecture string) (string, error) {
	namePattern := fmt.Sprintf("amzn-ami-*-%s-gp2", architecture)
	if version == 2 {
		namePattern = fmt.Sprintf("amzn2-ami-*-%s-gp2", architecture)
	}
	return latestImage(ctx, client, amazonOwnerID, namePattern)
}

func latestImage(ctx context.Context, client ImageQueryAPI, owner, namePattern string) (string, error) {
	out, err := client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{owner},
		Filters: []ec2types.Filter{
			{Name: aws.String("name"), Values: []string{namePattern}},
			{Name: aws.String("virtualization-type"), Values: []string{"hvm"}},
			{Name: aws.String("root-device-type"), Values: []string{"ebs"}},
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe images: %w", err)
	}
	if out == nil || len(out.Images) == 0 {
		return "", fmt.Errorf("no AMI matched %q for owner %s", namePattern, owner)
	}

	images := out.Images
	sort.Slice(images, func(i, j int) bool {
		return aws.ToString(images[i].CreationDate) > aws.ToString(images[j].CreationDate)
	})

	return aws.ToString(images[0].ImageId), nil
}
