// Package storage archives finished sync runs to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/stocksync/internal/domain/integration"
	infraconfig "github.com/erp/stocksync/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ integration.RunArchiver = (*S3RunArchiver)(nil)

// S3RunArchiver writes each finished sync run as one JSON object.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3RunArchiver struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3RunArchiverOption is a functional option for configuring S3RunArchiver
type S3RunArchiverOption func(*s3ArchiverOptions)

type s3ArchiverOptions struct {
	logger     *zap.Logger
	httpClient aws.HTTPClient
}

// WithLogger sets a custom logger for S3RunArchiver
func WithLogger(logger *zap.Logger) S3RunArchiverOption {
	return func(o *s3ArchiverOptions) {
		o.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client used by the S3 SDK
func WithHTTPClient(c aws.HTTPClient) S3RunArchiverOption {
	return func(o *s3ArchiverOptions) {
		o.httpClient = c
	}
}

// NewS3RunArchiver creates an archiver from configuration.
func NewS3RunArchiver(cfg *infraconfig.StorageConfig, opts ...S3RunArchiverOption) (*S3RunArchiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	o := s3ArchiverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if o.httpClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(o.httpClient))
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = cfg.UsePathStyle
		so.BaseEndpoint = aws.String(endpoint)
		// Several S3-compatible servers reject the default trailing checksums.
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3RunArchiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: o.logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (a *S3RunArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads the run as <prefix>/<kind>/<yyyy>/<mm>/<dd>/<id>.json
func (a *S3RunArchiver) Archive(ctx context.Context, run *integration.SyncRun) error {
	body, err := json.Marshal(newArchivedRun(run))
	if err != nil {
		return fmt.Errorf("failed to encode sync run: %w", err)
	}

	key := a.ObjectKey(run)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload sync run %s: %w", run.ID, err)
	}

	a.logger.Debug("Sync run archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// ObjectKey returns where a run is stored in the bucket
func (a *S3RunArchiver) ObjectKey(run *integration.SyncRun) string {
	started := run.StartedAt.UTC()
	return path.Join(
		a.prefix,
		strings.ToLower(string(run.Kind)),
		started.Format("2006/01/02"),
		run.ID.String()+".json",
	)
}

// archivedRun is the JSON layout of an archived run
type archivedRun struct {
	ID             string                  `json:"id"`
	Kind           string                  `json:"kind"`
	Platform       string                  `json:"platform"`
	Status         string                  `json:"status"`
	DocumentNumber string                  `json:"document_number,omitempty"`
	RemoteRef      string                  `json:"remote_ref,omitempty"`
	TotalCount     int                     `json:"total_count"`
	SuccessCount   int                     `json:"success_count"`
	SkippedCount   int                     `json:"skipped_count"`
	ErrorCount     int                     `json:"error_count"`
	Messages       []string                `json:"messages"`
	Batches        []integration.SyncBatch `json:"batches"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
	DurationMs     int64                   `json:"duration_ms"`
}

func newArchivedRun(run *integration.SyncRun) archivedRun {
	return archivedRun{
		ID:             run.ID.String(),
		Kind:           string(run.Kind),
		Platform:       run.Platform,
		Status:         run.Status.String(),
		DocumentNumber: run.DocumentNumber,
		RemoteRef:      run.RemoteRef,
		TotalCount:     run.TotalCount,
		SuccessCount:   run.SuccessCount,
		SkippedCount:   run.SkippedCount,
		ErrorCount:     run.ErrorCount,
		Messages:       run.Messages,
		Batches:        run.Batches,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DurationMs:     run.Duration.Milliseconds(),
	}
}

// NopArchiver discards runs. It is used when storage is disabled.
type NopArchiver struct{}

// Archive does nothing
func (NopArchiver) Archive(context.Context, *integration.SyncRun) error {
	return nil
}

// NewRunArchiver returns an S3 archiver when storage is enabled, otherwise a no-op.
func NewRunArchiver(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (integration.RunArchiver, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Sync run archiving disabled")
		return NopArchiver{}, nil
	}
	archiver, err := NewS3RunArchiver(cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := archiver.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Sync runs archived to object storage",
		zap.String("bucket", cfg.Bucket),
		zap.String("prefix", archiver.prefix),
	)
	return archiver, nil
}
