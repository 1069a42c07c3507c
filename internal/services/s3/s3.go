// Package s3service archives fortune records to S3.
package s3service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appConfig "golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

// KeyPrefix is the top-level prefix of archived records.
const KeyPrefix = "fortunes"

var (
	// ErrNoBucket is returned when S3_BUCKET is not configured.
	ErrNoBucket = errors.New("s3 bucket not configured")
	// ErrRecordNotFound is returned by FindRecord when no key matches.
	ErrRecordNotFound = errors.New("archived record not found")
)

// ObjectAPI is the subset of the S3 client used by the service.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Service handles S3 operations
type Service struct {
	client     ObjectAPI
	bucketName string
	logger     *zap.Logger
}

// NewService creates a new S3 service for the configured bucket.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	if appCfg.S3Bucket == "" {
		return nil, ErrNoBucket
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), appCfg.S3Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectAPI, bucket string) *Service {
	return &Service{
		client:     client,
		bucketName: bucket,
		logger:     utils.Named("s3"),
	}
}

// Name identifies the sink in logs.
func (s *Service) Name() string {
	return "s3"
}

// KeyFor returns the object key of a record: fortunes/YYYY/MM/DD/<id>.json.
func KeyFor(record *models.FortuneRecord) string {
	created := record.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return dayKey(created, record.RequestID)
}

func dayPrefix(day time.Time) string {
	return KeyPrefix + "/" + day.UTC().Format("2006/01/02") + "/"
}

func dayKey(day time.Time, requestID string) string {
	return dayPrefix(day) + requestID + ".json"
}

// Save implements the recorder sink interface.
func (s *Service) Save(ctx context.Context, record *models.FortuneRecord) error {
	if _, err := s.ArchiveRecord(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}
	return nil
}

// ArchiveRecord uploads the record as JSON and returns its key.
func (s *Service) ArchiveRecord(ctx context.Context, record *models.FortuneRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	key := KeyFor(record)
	if err := s.UploadFile(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// UploadFile uploads a file to S3
func (s *Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload file to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Debug("Uploaded file to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return nil
}

// FetchRecord downloads and decodes an archived record.
func (s *Service) FetchRecord(ctx context.Context, key string) (*models.FortuneRecord, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	var record models.FortuneRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", key, err)
	}
	return &record, nil
}

// ListKeys lists archived keys for a day, or all keys when day is zero.
func (s *Service) ListKeys(ctx context.Context, day time.Time, maxKeys int32) ([]string, error) {
	if maxKeys <= 0 {
		maxKeys = 100
	}

	prefix := KeyPrefix + "/"
	if !day.IsZero() {
		prefix = dayPrefix(day)
	}

	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucketName),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxKeys),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return objectKeys(result.Contents), nil
}

// FindRecord loads an archived record by request ID. With a day the key is
// fetched directly; otherwise every archived key is scanned.
func (s *Service) FindRecord(ctx context.Context, requestID string, day time.Time) (*models.FortuneRecord, error) {
	if requestID == "" {
		return nil, ErrRecordNotFound
	}
	if !day.IsZero() {
		return s.FetchRecord(ctx, dayKey(day, requestID))
	}

	suffix := "/" + requestID + ".json"
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(KeyPrefix + "/"),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		for _, key := range objectKeys(page.Contents) {
			if strings.HasSuffix(key, suffix) {
				return s.FetchRecord(ctx, key)
			}
		}
	}
	return nil, ErrRecordNotFound
}

func objectKeys(objects []types.Object) []string {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys
}
