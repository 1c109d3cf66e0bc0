package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"hostfacts/internal/facts"
)

// stsAPI is the subset of the STS client used by the identity command.
type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// newSTSClient is replaced in tests.
var newSTSClient = func(cfg aws.Config) stsAPI {
	return sts.NewFromConfig(cfg)
}

type callerIdentity struct {
	AccountID string
	ARN       string
	Region    string
}

// lookupCallerIdentity verifies the active credentials with a short timeout
// so bad credentials fail fast.
func lookupCallerIdentity(ctx context.Context, client stsAPI, region string) (callerIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return callerIdentity{}, fmt.Errorf("verifying AWS identity (STS GetCallerIdentity): %w", err)
	}
	return callerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		Region:    region,
	}, nil
}

func runIdentity(ctx context.Context, c *facts.Components, stdout io.Writer, logger *slog.Logger) int {
	id, err := lookupCallerIdentity(ctx, newSTSClient(c.AWS), c.AWS.Region)
	if err != nil {
		logger.Error("identity lookup failed", slog.String("error", err.Error()))
		return exitUnavailable
	}
	logger.Debug("AWS identity verified", "account_id", id.AccountID, "arn", id.ARN)
	fmt.Fprintf(stdout, "account=%s arn=%s region=%s\n", id.AccountID, id.ARN, id.Region)
	return exitOK
}
