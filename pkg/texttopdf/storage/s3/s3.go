package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/texttopdf/pkg/texttopdf"
)

// Config options for the S3 backend
type Config struct {
	Region          string   // AWS region
	AccessKeyID     string   // AWS access key ID
	SecretAccessKey string   // AWS secret access key
	Endpoint        string   // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool     // Use path-style addressing (default: false)
	AllowedBuckets  []string // Optional allow-list of bucket names; empty allows all

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// Only send and validate checksums when the operation requires them.
	// Some S3-compatible services reject the default trailing checksums.
	ChecksumWhenRequired bool
}

// Buckets hands out one Backend per bucket, all sharing a single S3 client.
// The client is built on the first successful call to Bucket and reused
// afterwards; a failed build is retried on the next call.
type Buckets struct {
	config Config

	mu         sync.Mutex
	client     *s3.Client
	loadConfig func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error)
}

// New validates config and returns a Buckets; no AWS call is made yet
func New(config Config) (*Buckets, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	switch config.SSEAlgorithm {
	case "", "AES256", "aws:kms":
	default:
		return nil, fmt.Errorf("invalid SSE algorithm %q", config.SSEAlgorithm)
	}

	return &Buckets{config: config, loadConfig: awsconfig.LoadDefaultConfig}, nil
}

func (bs *Buckets) getClient(ctx context.Context) (*s3.Client, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.client != nil {
		return bs.client, nil
	}
	client, err := bs.newClient(ctx)
	if err != nil {
		return nil, err
	}
	bs.client = client
	return client, nil
}

func (bs *Buckets) newClient(ctx context.Context) (*s3.Client, error) {
	var awsCfg aws.Config
	var err error

	if bs.config.AccessKeyID != "" && bs.config.SecretAccessKey != "" {
		// Use provided credentials
		awsCfg, err = bs.loadConfig(ctx,
			awsconfig.WithRegion(bs.config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				bs.config.AccessKeyID,
				bs.config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = bs.loadConfig(ctx,
			awsconfig.WithRegion(bs.config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if bs.config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(bs.config.Endpoint)
			o.UsePathStyle = bs.config.UsePathStyle
		})
	}
	if bs.config.ChecksumWhenRequired {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		})
	}

	return s3.NewFromConfig(awsCfg, s3Options...), nil
}

// Bucket implements texttopdf.Buckets
func (bs *Buckets) Bucket(ctx context.Context, name string) (texttopdf.BlobStore, error) {
	if !bs.allowed(name) {
		return nil, fmt.Errorf("%w: %s is not in the allowed list", texttopdf.ErrBucketNotFound, name)
	}

	client, err := bs.getClient(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	return &Backend{
		client: client,
		bucket: name,
		config: bs.config,
	}, nil
}

func (bs *Buckets) allowed(name string) bool {
	if len(bs.config.AllowedBuckets) == 0 {
		return true
	}
	for _, b := range bs.config.AllowedBuckets {
		if b == name {
			return true
		}
	}
	return false
}

// Backend is an S3-compatible implementation of the texttopdf.BlobStore interface
type Backend struct {
	client *s3.Client
	bucket string
	config Config
}

// mapError turns S3 "missing" responses into the texttopdf sentinels
func mapError(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		return texttopdf.ErrObjectNotFound
	case errors.As(err, &noSuchBucket):
		return texttopdf.ErrBucketNotFound
	}

	// MinIO and other S3-compatible services do not always map to the typed errors
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return texttopdf.ErrObjectNotFound
		case "NoSuchBucket":
			return texttopdf.ErrBucketNotFound
		}
	}
	return nil
}

// GetObjectMeta retrieves metadata for an object in S3
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*texttopdf.ObjectMeta, error) {
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}

	meta := &texttopdf.ObjectMeta{
		Key:         objectKey,
		Size:        aws.ToInt64(result.ContentLength),
		ContentType: "application/octet-stream",
		UpdatedAt:   aws.ToTime(result.LastModified),
		ETag:        strings.Trim(aws.ToString(result.ETag), "\""),
	}
	if result.ContentType != nil {
		meta.ContentType = *result.ContentType
	}

	return meta, nil
}

// UploadWithParams uploads content with additional parameters
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params texttopdf.UploadParams) error {
	uploader := manager.NewUploader(b.client)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(params.ObjectKey),
		Body:        reader,
		ContentType: aws.String(params.MimeType),
	}
	if params.ContentLength > 0 {
		input.ContentLength = aws.Int64(params.ContentLength)
	}

	// Add server-side encryption if enabled
	if b.config.EnableSSE {
		switch b.config.SSEAlgorithm {
		case "AES256":
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if b.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
			}
		}
	}

	_, err := uploader.Upload(ctx, input)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return fmt.Errorf("failed to upload to S3: %w", mapped)
		}
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Download downloads content directly from S3
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// Delete deletes content from S3
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}
