package awsutil

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type fakeImageQuery struct {
	images []ec2types.Image
	err    error
	lastIn *ec2.DescribeImagesInput
}

func (f *fakeImageQuery) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.lastIn = params
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.DescribeImagesOutput{Images: f.images}, nil
}

func TestLatestUbuntuAMI_PicksNewestByCreationDate(t *testing.T) {
	// SCENARIO: the API returns images out of order; the lookup must pick
	// the most recently created one.
	fake := &fakeImageQuery{images: []ec2types.Image{
		{ImageId: aws.String("ami-old"), CreationDate: aws.String("2023-01-01T00:00:00.000Z")},
		{ImageId: aws.String("ami-new"), CreationDate: aws.String("2024-06-01T00:00:00.000Z")},
		{ImageId: aws.String("ami-mid"), CreationDate: aws.String("2023-09-01T00:00:00.000Z")},
	}}

	id, err := LatestUbuntuAMI(context.Background(), fake, "22.04", "amd64")
	if err != nil {
		t.Fatalf("LatestUbuntuAMI returned error: %v", err)
	}
	if id != "ami-new" {
		t.Errorf("AMI ID = %q, want ami-new", id)
	}
	if got := fake.lastIn.Owners; len(got) != 1 || got[0] != canonicalOwnerID {
		t.Errorf("owners filter = %v, want Canonical's owner ID", got)
	}
}

func TestLatestAmazonLinuxAMI_VersionSelectsNamePattern(t *testing.T) {
	fake := &fakeImageQuery{images: []ec2types.Image{
		{ImageId: aws.String("ami-al2"), CreationDate: aws.String("2024-01-01T00:00:00.000Z")},
	}}

	if _, err := LatestAmazonLinuxAMI(context.Background(), fake, 2, "x86_64"); err != nil {
		t.Fatalf("LatestAmazonLinuxAMI returned error: %v", err)
	}

	var namePattern string
	for _, f := range fake.lastIn.Filters {
		if aws.ToString(f.Name) == "name" {
			namePattern = f.Values[0]
		}
	}
	if namePattern != "amzn2-ami-*-x86_64-gp2" {
		t.Errorf("name pattern = %q, want the Amazon Linux 2 pattern", namePattern)
	}
}

func TestLatestImage_NoMatches(t *testing.T) {
	fake := &fakeImageQuery{}
	if _, err := LatestUbuntuAMI(context.Background(), fake, "22.04", "amd64"); err == nil {
		t.Error("expected an error when no AMI matches")
	}
}

func TestLatestImage_APIError(t *testing.T) {
	fake := &fakeImageQuery{err: errors.New("throttled")}
	if _, err := LatestUbuntuAMI(context.Background(), fake, "22.04", "amd64"); err == nil {
		t.Error("expected the API error to propagate")
	}
}
