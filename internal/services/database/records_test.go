package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
)

func openTestDB(t *testing.T) *RecordRepository {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewRecordRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func testRecord(source models.FortuneSource) *models.FortuneRecord {
	return &models.FortuneRecord{
		RequestID: uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		User: models.UserInput{
			Name:      "김철수",
			BirthDate: "1990.05.15",
			BirthTime: "14:30",
			Gender:    models.GenderMale,
			Handicap:  15,
		},
		Analysis: models.ElementAnalysis{Element: models.ElementWood, Personality: "활발하고 도전적"},
		Fortune: models.FortuneResult{
			Sections:   models.FortuneSections{Greeting: "좋네"},
			LuckyItems: models.LuckyItems{LuckyHole: "1번홀"},
			Source:     source,
		},
	}
}

func TestRecordRepository_InsertAndGet(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	record := testRecord(models.FortuneSourceTemplate)
	require.NoError(t, repo.Insert(ctx, record))
	require.NoError(t, repo.Insert(ctx, record), "duplicate insert is a no-op")

	got, err := repo.GetByRequestID(ctx, record.RequestID)
	require.NoError(t, err)
	assert.Equal(t, record.User, got.User)
	assert.Equal(t, record.Fortune, got.Fortune)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
}

func TestRecordRepository_GetMissing(t *testing.T) {
	repo := openTestDB(t)

	_, err := repo.GetByRequestID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRepository_BulkInsertAndCount(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	before, err := repo.CountBySource(ctx)
	require.NoError(t, err)

	records := []*models.FortuneRecord{
		testRecord(models.FortuneSourceAI),
		testRecord(models.FortuneSourceAI),
		testRecord(models.FortuneSourcePartial),
	}
	n, err := repo.BulkInsert(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	after, err := repo.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[models.FortuneSourceAI]+2, after[models.FortuneSourceAI])
	assert.Equal(t, before[models.FortuneSourcePartial]+1, after[models.FortuneSourcePartial])
}
