package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"hostfacts/internal/types"
)

// secretsManagerClient is the subset of the Secrets Manager SDK client used
// by SecretsManagerStore.
type secretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore implements Store on AWS Secrets Manager.
type SecretsManagerStore struct {
	client secretsManagerClient
}

// NewSecretsManagerStore creates a SecretsManagerStore from an AWS config.
func NewSecretsManagerStore(cfg aws.Config) *SecretsManagerStore {
	return &SecretsManagerStore{client: secretsmanager.NewFromConfig(cfg)}
}

func newSecretsManagerStoreWithClient(client secretsManagerClient) *SecretsManagerStore {
	return &SecretsManagerStore{client: client}
}

// GetSecretString fetches the current version of the secret. Binary-only
// secrets have no string payload and fail with ErrCodeSecretNoStringPayload.
func (s *SecretsManagerStore) GetSecretString(ctx context.Context, id string) (string, error) {
	output, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", types.NewAppError(types.ErrCodeSecretNotFound,
				fmt.Sprintf("secret %s not found", id), err)
		}
		return "", classifyAPIError(err, fmt.Sprintf("fetching secret %s", id))
	}

	if output.SecretString == nil {
		return "", types.NewAppError(types.ErrCodeSecretNoStringPayload,
			fmt.Sprintf("secret %s has no string payload", id), nil)
	}

	return aws.ToString(output.SecretString), nil
}

// accessDeniedCodes are API error codes that indicate the caller may not read
// the secret, as opposed to the store being unavailable.
var accessDeniedCodes = map[string]bool{
	"AccessDeniedException":    true,
	"AccessDenied":             true,
	"DecryptionFailure":        true,
	"KMSAccessDeniedException": true,
}

// classifyAPIError maps an SDK error to an AppError.
func classifyAPIError(err error, message string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && accessDeniedCodes[apiErr.ErrorCode()] {
		return types.NewAppError(types.ErrCodeSecretAccessDenied, message, err)
	}
	return types.NewAppError(types.ErrCodeSecretStoreUnavailable, message, err)
}
