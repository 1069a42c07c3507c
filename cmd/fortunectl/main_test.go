package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/filestore"
	s3service "golf-fortune-engine/internal/services/s3"
)

// isolate clears optional services and points DATA_DIR at a fresh directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "DATABASE_URL", "DB_HOST",
		"S3_BUCKET", "SES_SENDER_EMAIL", "FORTUNE_CATALOG",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	return dir
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err)
	return out
}

func TestClassifyCommand(t *testing.T) {
	isolate(t)
	var analysis models.ElementAnalysis
	require.NoError(t, json.Unmarshal([]byte(run(t, "classify", "1990.05.15")), &analysis))

	assert.Equal(t, models.ElementWood, analysis.Element)
	assert.Equal(t, 1990, analysis.BirthYear)
}

func TestGenerateCommand(t *testing.T) {
	isolate(t)
	out := run(t, "generate", "--name", "김철수", "--birth-date", "1990.05.15", "--handicap", "15", "--record=false", "--strict=false")

	var resp handlers.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, handlers.SchemaVersion, resp.Version)
	assert.Equal(t, models.FortuneSourceTemplate, resp.Fortune.Source)
	assert.True(t, resp.Fortune.IsComplete())
	assert.Contains(t, resp.Fortune.Sections.Greeting, "김철수")
}

func TestBatchCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "users.csv")
	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(csvPath, []byte("이름,생년월일,핸디캡\n김철수,1990.05.15,15\n이영희,1985.11.02,28\n"), 0o644))

	run(t, "batch", "-f", csvPath, "-o", outPath, "-j", "2", "--record=false")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var records []models.FortuneRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "김철수", records[0].User.Name)
	assert.Equal(t, models.ElementWood, records[0].Analysis.Element)
	assert.Equal(t, "이영희", records[1].User.Name)
}

func TestGenerateCommand_Strict(t *testing.T) {
	isolate(t)

	_, err := execute("generate", "--name", "김철수", "--birth-date", "1850.01.01", "--record=false", "--strict")
	assert.ErrorIs(t, err, models.ErrBirthYearRange)

	_, err = execute("generate", "--name", "김철수", "--birth-date", "어제", "--record=false", "--strict")
	assert.ErrorIs(t, err, models.ErrInvalidBirthDate)

	out := run(t, "generate", "--name", "김철수", "--birth-date", "1990.05.15", "--record=false", "--strict")
	assert.Contains(t, out, `"requestId"`)
}

func TestShowCommand_FindsRecordedFortune(t *testing.T) {
	isolate(t)

	var resp handlers.AnalyzeResponse
	out := run(t, "generate", "--name", "박세리", "--birth-date", "1977.09.28", "--strict=false", "--record")
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	var record models.FortuneRecord
	require.NoError(t, json.Unmarshal([]byte(run(t, "show", resp.RequestID, "--day", "")), &record))
	assert.Equal(t, resp.RequestID, record.RequestID)
	assert.Equal(t, "박세리", record.User.Name)
	assert.Equal(t, resp.Fortune, record.Fortune)

	_, err := execute("show", "00000000-0000-0000-0000-000000000000", "--day", "")
	assert.ErrorIs(t, err, errRecordNotFound)

	_, err = execute("show", resp.RequestID, "--day", "09/03/2024")
	assert.Error(t, err)
}

func TestBatchCommand_RecordWritesEveryRow(t *testing.T) {
	dataDir := isolate(t)
	csvPath := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("이름,생년월일,핸디캡\n김철수,1990.05.15,15\n이영희,1985.11.02,28\n"), 0o644))

	run(t, "batch", "-f", csvPath, "-o", "", "-j", "2", "--record")

	files, err := filepath.Glob(filepath.Join(dataDir, filestore.RecordsDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestBatchCommand_RejectsMissingColumns(t *testing.T) {
	isolate(t)
	csvPath := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("이름,핸디캡\n김철수,15\n"), 0o644))

	_, err := execute("batch", "-f", csvPath, "-o", "", "--record=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns birth_date")
}

func TestArchiveList_RequiresBucket(t *testing.T) {
	isolate(t)

	_, err := execute("archive", "ls", "--day", "2024-03-09")
	assert.ErrorIs(t, err, s3service.ErrNoBucket)

	_, err = execute("archive", "ls", "--day", time.Now().Format("02.01.2006"))
	assert.Error(t, err)
}
