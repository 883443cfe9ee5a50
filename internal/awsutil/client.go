package awsutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"infrautilx/internal/logging"
)

var (
	configCache = make(map[string]aws.Config)
	cacheMutex  sync.RWMutex
)

// LoadConfig returns an aws.Config scoped to the named profile. An empty
// profile name means the standard credential chain (env vars, IAM role,
// SSO session, etc.). Configs are cached per profile for the process
// lifetime; credentials inside them refresh themselves.
func LoadConfig(ctx context.Context, profile string) (aws.Config, error) {
	cacheMutex.RLock()
	if cfg, ok := configCache[profile]; ok {
		cacheMutex.RUnlock()
		return cfg, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if cfg, ok := configCache[profile]; ok {
		return cfg, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(5),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(o *retry.AdaptiveModeOptions) {
				o.StandardOptions = append(o.StandardOptions, func(so *retry.StandardOptions) {
					so.MaxBackoff = 30 * time.Second
				})
			})
		}),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}

	logging.LogDebug("Loaded AWS config", map[string]any{"profile": profile, "region": cfg.Region})
	configCache[profile] = cfg
	return cfg, nil
}

// EC2Client returns an EC2 client for the named profile.
func EC2Client(ctx context.Context, profile string) (*ec2.Client, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	return ec2.NewFromConfig(cfg), nil
}

// STSClient returns an STS client for the named profile.
func STSClient(ctx context.Context, profile string) (*sts.Client, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}

// CallerIdentity is the subset of STS GetCallerIdentity this tool consumes.
type CallerIdentity struct {
	AccountID string
	ARN       string
}

// GetCallerIdentity issues a credential check for the named profile under
// the given timeout.
func GetCallerIdentity(ctx context.Context, profile string, timeout time.Duration) (CallerIdentity, error) {
	client, err := STSClient(ctx, profile)
	if err != nil {
		return CallerIdentity{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out == nil || out.Account == nil {
		return CallerIdentity{}, fmt.Errorf("empty account ID in caller identity response")
	}

	return CallerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
	}, nil
}
