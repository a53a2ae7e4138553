package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuckets_RetriesClientAfterFailure(t *testing.T) {
	bs, err := New(Config{
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        "http://127.0.0.1:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	calls := 0
	bs.loadConfig = func(ctx context.Context, opts ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		calls++
		if calls == 1 {
			return aws.Config{}, errors.New("credential endpoint unavailable")
		}
		return awsconfig.LoadDefaultConfig(ctx, opts...)
	}

	ctx := context.Background()
	_, err = bs.Bucket(ctx, "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load AWS config")

	first, err := bs.Bucket(ctx, "docs")
	require.NoError(t, err)
	second, err := bs.Bucket(ctx, "uploads")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Same(t, first.(*Backend).client, second.(*Backend).client)
}
