package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsAPI struct {
	calls  int
	values map[string]*string
	err    error
}

func (f *fakeSecretsAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.values[*in.SecretId]}, nil
}

func TestGetSecret_CachesValue(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]*string{"checkout/STRIPE_SECRET_KEY": sdkaws.String("sk_test_123")}}
	client := newSecretsClient(api)

	for i := 0; i < 3; i++ {
		v, err := client.GetSecret(context.Background(), "checkout/STRIPE_SECRET_KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk_test_123", v)
	}
	assert.Equal(t, 1, api.calls)
}

func TestGetSecret_NoStringValue(t *testing.T) {
	client := newSecretsClient(&fakeSecretsAPI{values: map[string]*string{}})

	_, err := client.GetSecret(context.Background(), "missing")
	assert.ErrorContains(t, err, "has no string value")
}

func TestGetSecret_APIError(t *testing.T) {
	client := newSecretsClient(&fakeSecretsAPI{err: errors.New("access denied")})

	_, err := client.GetSecret(context.Background(), "checkout/STRIPE_SECRET_KEY")
	assert.ErrorContains(t, err, "access denied")
}
