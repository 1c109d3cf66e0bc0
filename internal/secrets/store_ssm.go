package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"hostfacts/internal/types"
)

// ssmClient is the subset of the SSM SDK client used by ParameterStore.
// This interface enables testing with a mock client.
type ssmClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStore implements Store on AWS Systems Manager Parameter Store.
// Secrets are SecureString parameters whose value is the JSON payload; the
// identifier "Production/app/creds" maps to the parameter
// "/Production/app/creds".
type ParameterStore struct {
	client ssmClient
}

// NewParameterStore creates a ParameterStore from an AWS config.
func NewParameterStore(cfg aws.Config) *ParameterStore {
	return &ParameterStore{client: ssm.NewFromConfig(cfg)}
}

// newParameterStoreWithClient creates a ParameterStore with an injected SSM client.
// This constructor is used for testing with a mock client.
func newParameterStoreWithClient(client ssmClient) *ParameterStore {
	return &ParameterStore{client: client}
}

// ParameterName returns the SSM parameter name for a secret identifier.
// Hierarchical parameter names must start with a slash.
func ParameterName(id string) string {
	if strings.HasPrefix(id, "/") {
		return id
	}
	return "/" + id
}

// GetSecretString reads and decrypts the parameter for id.
func (s *ParameterStore) GetSecretString(ctx context.Context, id string) (string, error) {
	name := ParameterName(id)
	output, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", types.NewAppError(types.ErrCodeSecretNotFound,
				fmt.Sprintf("SSM parameter %s not found", name), err)
		}
		return "", classifyAPIError(err, fmt.Sprintf("reading SSM parameter %s", name))
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return "", types.NewAppError(types.ErrCodeSecretNoStringPayload,
			fmt.Sprintf("SSM parameter %s has no value", name), nil)
	}

	return aws.ToString(output.Parameter.Value), nil
}
