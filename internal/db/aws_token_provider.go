package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// awsTokenLifetime is how long RDS accepts an IAM auth token after issue.
const awsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider builds IAM auth tokens for an RDS-hosted benchmark
// target. Credentials come from the default AWS chain (environment,
// shared config, instance role).
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider validates the RDS endpoint, region and database
// user needed to sign tokens. The region is resolved upstream from
// aws_region in tweetbench.yaml or $AWS_REGION.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth requires the RDS endpoint (host:port)")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires a region: set aws_region in tweetbench.yaml or export $AWS_REGION")
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires a database username (-U)")
	}

	return &AWSIAMTokenProvider{
		endpoint: endpoint,
		region:   region,
		username: username,
	}, nil
}

// GetToken signs a fresh RDS auth token. The AWS config is reloaded per
// call so rotated instance-role credentials are picked up mid-run.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}

	return token, time.Now().Add(awsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}
