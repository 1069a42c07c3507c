// Package filestore persists fortune records to the local data directory:
// one appended CSV row and one JSON document per request.
package filestore

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

const (
	// CSVFileName is the registration log in the data directory.
	CSVFileName = "user_data.csv"
	// RecordsDir holds one JSON document per request.
	RecordsDir = "fortunes"
)

// ErrRecordNotFound is returned by Find when no document has the request ID.
var ErrRecordNotFound = errors.New("fortune record not found")

// BasicHeader is the CSV header of the registration log.
var BasicHeader = []string{"이름", "생년월일", "생시", "성별", "핸디캡", "등록시간"}

// ExtendedHeader adds contact, venue and equipment columns.
var ExtendedHeader = append(append([]string{}, BasicHeader...),
	"휴대폰", "방문예정CC", "드라이버", "아이언", "웨지", "퍼터", "볼")

// Store writes records under a data directory. It is safe for concurrent use.
type Store struct {
	dir      string
	extended bool
	logger   *zap.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithExtendedCSV selects the extended CSV layout.
func WithExtendedCSV(extended bool) Option {
	return func(s *Store) {
		s.extended = extended
	}
}

// New creates a Store rooted at dir, creating directories as needed.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:    dir,
		logger: utils.Named("filestore"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.recordsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %w", models.ErrPersistence, err)
	}
	return s, nil
}

// Name identifies the sink in logs.
func (s *Store) Name() string {
	return "filestore"
}

// CSVPath returns the path of the registration log.
func (s *Store) CSVPath() string {
	return filepath.Join(s.dir, CSVFileName)
}

func (s *Store) recordsDir() string {
	return filepath.Join(s.dir, RecordsDir)
}

// Save writes the JSON document and appends the CSV row.
func (s *Store) Save(ctx context.Context, record *models.FortuneRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.WriteJSON(record)
	if err != nil {
		return err
	}
	if err := s.AppendCSV(record); err != nil {
		return err
	}

	s.logger.Debug("Saved fortune record",
		utils.RequestID(record.RequestID),
		zap.String("path", path),
	)
	return nil
}

// FileName returns the JSON document name for a record.
func FileName(record *models.FortuneRecord) string {
	ts := record.CreatedAt.UTC().Format("20060102T150405.000000000Z")
	return fmt.Sprintf("%s_%s.json", ts, record.RequestID)
}

// WriteJSON writes the record to a temp file and renames it into place.
func (s *Store) WriteJSON(record *models.FortuneRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshal record: %w", models.ErrPersistence, err)
	}

	dir := s.recordsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create records directory: %w", models.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, ".record-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", models.ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: write record: %w", models.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close record: %w", models.ErrPersistence, err)
	}

	path := filepath.Join(dir, FileName(record))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: rename record: %w", models.ErrPersistence, err)
	}
	return path, nil
}

// Find loads the JSON document written for requestID.
func (s *Store) Find(requestID string) (*models.FortuneRecord, error) {
	if requestID == "" {
		return nil, ErrRecordNotFound
	}
	matches, err := filepath.Glob(filepath.Join(s.recordsDir(), "*_"+requestID+".json"))
	if err != nil {
		return nil, fmt.Errorf("invalid request id %q: %w", requestID, err)
	}
	if len(matches) == 0 {
		return nil, ErrRecordNotFound
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	var record models.FortuneRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(matches[0]), err)
	}
	return &record, nil
}

// AppendCSV appends one row, writing the header first when the file is new.
// Each call issues a single write while holding the store lock.
func (s *Store) AppendCSV(record *models.FortuneRecord) error {
	row := s.row(record)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.CSVPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open csv: %w", models.ErrPersistence, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat csv: %w", models.ErrPersistence, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(s.header())
	}
	_ = w.Write(row)
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encode csv row: %w", models.ErrPersistence, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: append csv: %w", models.ErrPersistence, err)
	}
	return nil
}

func (s *Store) header() []string {
	if s.extended {
		return ExtendedHeader
	}
	return BasicHeader
}

func (s *Store) row(record *models.FortuneRecord) []string {
	u := record.User
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := []string{
		u.Name,
		u.BirthDate,
		u.BirthTime,
		u.Gender,
		strconv.Itoa(u.Handicap),
		createdAt.UTC().Format(time.RFC3339Nano),
	}
	if s.extended {
		row = append(row, u.PhoneNumber, u.CountryClub, u.DriverBrand, u.IronBrand, u.WedgeBrand, u.PutterBrand, u.BallBrand)
	}
	return row
}
