package external

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const (
	s3ObjectSuffix   = ".ndjson"
	s3ExpiryMetadata = "expires-at"
	s3DeleteBatch    = 1000
)

// S3CacheProvider stores each cached payload as one object named <prefix>/<key>.ndjson.
// Expiry is kept in object metadata and enforced on read.
type S3CacheProvider struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3CacheProvider builds an S3 client from config. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3CacheProvider(ctx context.Context, cfg *ports.S3Config) (*S3CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("s3 config cannot be nil", nil)
	}
	if cfg.Bucket == "" {
		return nil, errors.NewConfigurationError("s3 bucket is required", nil)
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3CacheProvider{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
	}, nil
}

func (p *S3CacheProvider) objectKey(key string) string {
	if p.prefix == "" {
		return key + s3ObjectSuffix
	}
	return p.prefix + "/" + key + s3ObjectSuffix
}

func (p *S3CacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewExternalAPIError("s3 get object failed", err)
	}
	defer out.Body.Close()

	if p.expired(out.Metadata) {
		return nil, errors.NewNotFoundError("cache miss")
	}

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.NewExternalAPIError("s3 object read failed", err)
	}
	return data, nil
}

func (p *S3CacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateSet(key, value, ttl); err != nil {
		return err
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(p.objectKey(key)),
		Body:          bytes.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
		ContentType:   aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			s3ExpiryMetadata: p.now().Add(ttl).UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return errors.NewExternalAPIError("s3 put object failed", err)
	}
	return nil
}

func (p *S3CacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
	})
	if err != nil && !isS3NotFound(err) {
		return errors.NewExternalAPIError("s3 delete object failed", err)
	}
	return nil
}

func (p *S3CacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("cache key cannot be empty")
	}

	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, errors.NewExternalAPIError("s3 head object failed", err)
	}
	return !p.expired(out.Metadata), nil
}

// Clear deletes every object under the configured prefix.
func (p *S3CacheProvider) Clear(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(p.bucket)}
	if p.prefix != "" {
		input.Prefix = aws.String(p.prefix + "/")
	}

	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	var batch []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errors.NewExternalAPIError("s3 list objects failed", err)
		}
		for _, obj := range page.Contents {
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})
			if len(batch) == s3DeleteBatch {
				if err := p.deleteBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}
	if len(batch) > 0 {
		return p.deleteBatch(ctx, batch)
	}
	return nil
}

func (p *S3CacheProvider) deleteBatch(ctx context.Context, objects []types.ObjectIdentifier) error {
	_, err := p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(p.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return errors.NewExternalAPIError("s3 delete objects failed", err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (p *S3CacheProvider) Ping(ctx context.Context) error {
	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)}); err != nil {
		return errors.NewExternalAPIError("s3 head bucket failed", err)
	}
	return nil
}

func (p *S3CacheProvider) expired(metadata map[string]string) bool {
	raw, ok := metadata[s3ExpiryMetadata]
	if !ok {
		return false
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return true
	}
	return p.now().After(expiresAt)
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return stderrors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
