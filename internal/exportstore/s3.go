// Package exportstore archives generated dashboard exports in object storage.
package exportstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"claims-dashboard/internal/dashboard"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("claims-dashboard/exportstore")

var contentTypes = map[string]string{
	dashboard.FormatCSV:  "text/csv",
	dashboard.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Config locates the archive bucket. Endpoint overrides the AWS endpoint
// for S3-compatible stores and switches to path-style addressing.
type Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver uploads exports to a bucket under a common prefix.
type S3Archiver struct {
	uploader uploader
	bucket   string
	prefix   string
}

// NewS3Archiver resolves AWS credentials from the default chain, adjusted
// by optFns, and builds an uploader for cfg.Bucket.
func NewS3Archiver(ctx context.Context, cfg Config, optFns ...func(*awsconfig.LoadOptions) error) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("export archive needs a bucket")
	}
	if cfg.Region != "" {
		optFns = append([]func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}, optFns...)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

// Key is the object key for an export of the given range and format.
func (a *S3Archiver) Key(format, start, end string) string {
	return path.Join(a.prefix, dashboard.ExportFilename(start, end, format))
}

// Archive uploads body and returns its s3:// location.
func (a *S3Archiver) Archive(ctx context.Context, format, start, end string, body []byte) (location string, err error) {
	key := a.Key(format, start, end)
	ctx, span := tracer.Start(ctx, "exportstore.s3.upload")
	span.SetAttributes(
		attribute.String("s3.bucket", a.bucket),
		attribute.String("s3.key", key),
		attribute.Int("export.bytes", len(body)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	contentType, ok := contentTypes[format]
	if !ok {
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
