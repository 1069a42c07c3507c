package filestore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"golf-fortune-engine/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRecord(i int) *models.FortuneRecord {
	return &models.FortuneRecord{
		RequestID: uuid.NewString(),
		CreatedAt: time.Now(),
		User: models.UserInput{
			Name:        fmt.Sprintf("골퍼, %d \"별명\"", i),
			BirthDate:   "1990.05.15",
			BirthTime:   "14:30",
			Gender:      models.GenderMale,
			Handicap:    i % 40,
			CountryClub: "남서울CC",
			DriverBrand: "Titleist",
		},
		Fortune: models.FortuneResult{Source: models.FortuneSourceTemplate},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func jsonFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestStore_SaveWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	record := newRecord(1)
	require.NoError(t, store.Save(context.Background(), record))

	rows := readCSV(t, store.CSVPath())
	require.Len(t, rows, 2)
	assert.Equal(t, BasicHeader, rows[0])
	assert.Equal(t, record.User.Name, rows[1][0])
	assert.Equal(t, "1", rows[1][4])

	files := jsonFiles(t, filepath.Join(dir, RecordsDir))
	require.Equal(t, []string{FileName(record)}, files)

	data, err := os.ReadFile(filepath.Join(dir, RecordsDir, files[0]))
	require.NoError(t, err)
	var decoded models.FortuneRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.RequestID, decoded.RequestID)
	assert.Equal(t, record.User, decoded.User)
}

func TestStore_Find(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	record := newRecord(3)
	require.NoError(t, store.Save(context.Background(), record))
	require.NoError(t, store.Save(context.Background(), newRecord(4)))

	found, err := store.Find(record.RequestID)
	require.NoError(t, err)
	assert.Equal(t, record.User, found.User)

	_, err = store.Find(uuid.NewString())
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = store.Find("")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_ExtendedHeader(t *testing.T) {
	store, err := New(t.TempDir(), WithExtendedCSV(true))
	require.NoError(t, err)

	require.NoError(t, store.AppendCSV(newRecord(2)))
	rows := readCSV(t, store.CSVPath())

	require.Len(t, rows, 2)
	assert.Equal(t, ExtendedHeader, rows[0])
	assert.Len(t, rows[1], len(ExtendedHeader))
	assert.Equal(t, "남서울CC", rows[1][7])
}

func TestStore_ConcurrentSaves(t *testing.T) {
	const n = 50
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Save(context.Background(), newRecord(i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, jsonFiles(t, filepath.Join(dir, RecordsDir)), n)

	rows := readCSV(t, store.CSVPath())
	require.Len(t, rows, n+1)
	assert.Equal(t, BasicHeader, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, len(BasicHeader))
		assert.True(t, strings.HasPrefix(row[0], "골퍼, "), row[0])
	}
}

func TestNew_IsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(dir)
	require.NoError(t, err)
	_, err = New(dir)
	require.NoError(t, err)
}

func TestStore_SaveFailsWithPersistenceError(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	// A directory where the CSV file should be makes the append fail.
	require.NoError(t, os.Mkdir(store.CSVPath(), 0o755))

	err = store.Save(context.Background(), newRecord(3))
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestStore_SaveHonorsCancelledContext(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Save(ctx, newRecord(4)), context.Canceled)
}
