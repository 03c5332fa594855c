// Package s3 keeps photos in an S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/stowaway/internal/photostore"
)

const defaultRegion = "us-east-1"

// ErrMissingBucket is returned when no bucket is configured.
var ErrMissingBucket = errors.New("s3 bucket is required")

type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO and other S3-compatible services
	// AccessKeyID and SecretAccessKey are optional; when empty the default
	// credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	// CacheControl is set on every uploaded object when non-empty.
	CacheControl string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewClient builds an S3 client from cfg.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	}), nil
}

type S3PhotoStore struct {
	client       *s3.Client
	bucket       string
	cacheControl string
}

func NewS3PhotoStore(ctx context.Context, cfg Config) (*S3PhotoStore, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &S3PhotoStore{client: client, bucket: cfg.Bucket, cacheControl: cfg.CacheControl}, nil
}

func (s *S3PhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	// Photos are small; buffering gives the SDK a seekable body to sign.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	key := photostore.NewKey(prefix, mimeType)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(photostore.MimeTypeForKey(key)),
	}
	if s.cacheControl != "" {
		input.CacheControl = aws.String(s.cacheControl)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(storageKey)})
	if err != nil {
		if isNotFound(err) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get photo: %w", err)
	}
	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = photostore.MimeTypeForKey(storageKey)
	}
	return out.Body, contentType, nil
}

// Delete removes the object. S3 does not report whether it existed.
func (s *S3PhotoStore) Delete(ctx context.Context, storageKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(storageKey)})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
