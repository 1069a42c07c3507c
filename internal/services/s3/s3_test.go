package s3service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
)

type fakeBucket struct {
	objects map[string][]byte
	putErr  error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte)}
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var contents []types.Object
	prefix := aws.ToString(in.Prefix)
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func sampleRecord() *models.FortuneRecord {
	return &models.FortuneRecord{
		RequestID: "0b6f7a52-6a8e-4c1f-9d0e-1c2b3a4d5e6f",
		CreatedAt: time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC),
		User:      models.UserInput{Name: "김철수", BirthDate: "1990.05.15", Handicap: 15},
		Fortune:   models.FortuneResult{Source: models.FortuneSourceTemplate},
	}
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "fortunes/2024/03/09/0b6f7a52-6a8e-4c1f-9d0e-1c2b3a4d5e6f.json", KeyFor(sampleRecord()))
}

func TestKeyFor_UsesUTCDate(t *testing.T) {
	record := sampleRecord()
	seoul := time.FixedZone("KST", 9*60*60)
	record.CreatedAt = time.Date(2024, 3, 10, 8, 0, 0, 0, seoul)

	assert.Equal(t, "fortunes/2024/03/09/"+record.RequestID+".json", KeyFor(record))
}

func TestArchiveAndFetch(t *testing.T) {
	bucket := newFakeBucket()
	svc := NewWithClient(bucket, "test-bucket")

	record := sampleRecord()
	key, err := svc.ArchiveRecord(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, KeyFor(record), key)

	got, err := svc.FetchRecord(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, record.User, got.User)
	assert.Equal(t, record.RequestID, got.RequestID)

	keys, err := svc.ListKeys(context.Background(), record.CreatedAt, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)
}

func TestFindRecord(t *testing.T) {
	bucket := newFakeBucket()
	svc := NewWithClient(bucket, "test-bucket")

	record := sampleRecord()
	_, err := svc.ArchiveRecord(context.Background(), record)
	require.NoError(t, err)

	got, err := svc.FindRecord(context.Background(), record.RequestID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, record.User, got.User)

	got, err = svc.FindRecord(context.Background(), record.RequestID, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, record.RequestID, got.RequestID)

	_, err = svc.FindRecord(context.Background(), "missing", time.Time{})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = svc.FindRecord(context.Background(), record.RequestID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestSave_WrapsPersistenceError(t *testing.T) {
	bucket := newFakeBucket()
	bucket.putErr = errors.New("access denied")
	svc := NewWithClient(bucket, "test-bucket")

	err := svc.Save(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.Equal(t, "s3", svc.Name())
}

func TestNewService_RequiresBucket(t *testing.T) {
	_, err := NewService(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, ErrNoBucket)
}
