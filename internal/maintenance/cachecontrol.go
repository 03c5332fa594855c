package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	JobSetCacheControl = "set-cache-control"

	// DefaultCacheControl suits photo objects, whose keys are never reused.
	DefaultCacheControl = "public, max-age=31536000, immutable"
)

// ObjectAPI is the subset of *s3.Client that SetCacheControl requires.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

type CacheControlOptions struct {
	Bucket string
	Prefix string
	// Value is the Cache-Control header to set; empty selects
	// DefaultCacheControl.
	Value  string
	DryRun bool
}

// SetCacheControl rewrites the Cache-Control header of every object under
// opts.Prefix by copying each object onto itself with replaced metadata.
// Content type and user metadata are carried over. Objects already carrying
// the value are skipped.
func SetCacheControl(ctx context.Context, client ObjectAPI, opts CacheControlOptions, logger *slog.Logger) (Report, error) {
	report := Report{Job: JobSetCacheControl, DryRun: opts.DryRun}
	if opts.Bucket == "" {
		return report, ErrMissingBucket
	}
	value := opts.Value
	if value == "" {
		value = DefaultCacheControl
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(opts.Bucket)}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	pages := s3.NewListObjectsV2Paginator(client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			report.record(updateCacheControl(ctx, client, opts.Bucket, key, value, opts.DryRun, logger))
		}
	}

	logger.Info("cache-control update finished", "bucket", opts.Bucket, "prefix", opts.Prefix,
		"dry_run", opts.DryRun, "processed", report.Processed, "changed", report.Changed,
		"skipped", report.Skipped, "errored", report.Errored)
	return report, nil
}

func updateCacheControl(ctx context.Context, client ObjectAPI, bucket, key, value string, dryRun bool, logger *slog.Logger) outcome {
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		logger.Error("head object failed", "key", key, "error", err)
		return outcomeErrored
	}
	if aws.ToString(head.CacheControl) == value {
		return outcomeSkipped
	}
	if dryRun {
		return outcomeChanged
	}

	_, err = client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		CopySource:         aws.String(bucket + "/" + url.PathEscape(key)),
		MetadataDirective:  types.MetadataDirectiveReplace,
		CacheControl:       aws.String(value),
		ContentType:        head.ContentType,
		ContentDisposition: head.ContentDisposition,
		ContentEncoding:    head.ContentEncoding,
		ContentLanguage:    head.ContentLanguage,
		Metadata:           head.Metadata,
	})
	if err != nil {
		logger.Error("copy object failed", "key", key, "error", err)
		return outcomeErrored
	}
	return outcomeChanged
}
