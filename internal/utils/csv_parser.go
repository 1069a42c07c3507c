package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golf-fortune-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"name",
	"birth_date",
}

// ColumnAliases maps Korean and alternative column names to standard names.
var ColumnAliases = map[string]string{
	"이름":        "name",
	"성명":        "name",
	"full_name": "name",
	"username":  "name",

	"생년월일":       "birth_date",
	"birthdate":  "birth_date",
	"birth date": "birth_date",
	"birthday":   "birth_date",
	"dob":        "birth_date",

	"생시":         "birth_time",
	"출생시간":       "birth_time",
	"birthtime":  "birth_time",
	"birth time": "birth_time",

	"성별":  "gender",
	"sex": "gender",

	"핸디캡": "handicap",
	"hcp": "handicap",

	"휴대폰":          "phone_number",
	"전화번호":         "phone_number",
	"phone":        "phone_number",
	"phonenumber":  "phone_number",
	"phone number": "phone_number",

	"이메일":    "email",
	"mail":   "email",
	"e-mail": "email",

	"방문예정cc":      "country_club",
	"cc":          "country_club",
	"countryclub": "country_club",
	"club":        "country_club",

	"드라이버":    "driver",
	"아이언":     "iron",
	"웨지":      "wedge",
	"퍼터":      "putter",
	"볼":       "ball",
	"골프공":     "ball",
	"등록시간":    "registered_at",
	"created": "registered_at",
}

// CSVParser handles parsing of registration CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseUsers parses CSV content into user inputs. Rows that fail are
// reported with their line number and skipped.
func (p *CSVParser) ParseUsers(content string) ([]models.UserInput, []error) {
	if strings.TrimSpace(strings.TrimPrefix(content, "\ufeff")) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\ufeff")))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var users []models.UserInput
	var parseErrors []error
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		if isBlank(record) {
			continue
		}

		user, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return users, parseErrors
}

func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return strings.ReplaceAll(normalized, " ", "_")
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	for i, col := range header {
		p.columnMapping[normalizeColumn(col)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// parseRow parses a single CSV row into a UserInput.
func (p *CSVParser) parseRow(record []string) (models.UserInput, error) {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	user := models.UserInput{
		Name:        get("name"),
		BirthDate:   get("birth_date"),
		BirthTime:   get("birth_time"),
		Gender:      get("gender"),
		PhoneNumber: get("phone_number"),
		Email:       get("email"),
		CountryClub: get("country_club"),
		DriverBrand: get("driver"),
		IronBrand:   get("iron"),
		WedgeBrand:  get("wedge"),
		PutterBrand: get("putter"),
		BallBrand:   get("ball"),
	}

	if user.Name == "" {
		return user, models.ErrEmptyName
	}

	if raw := get("handicap"); raw != "" {
		handicap, err := parseInt(raw)
		if err != nil {
			return user, fmt.Errorf("invalid handicap %q: %w", raw, err)
		}
		user.Handicap = handicap
	}

	user.Normalize()
	return user, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Handle float strings (e.g., "15.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) *CSVValidationResult {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	content = strings.TrimPrefix(content, "\ufeff")
	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0
	return result
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
