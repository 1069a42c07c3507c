// Package models defines the data structures for the golf fortune engine.
package models

import (
	"strings"
	"time"
)

// UnknownBirthTime is the sentinel stored when the user does not know their birth time.
const UnknownBirthTime = "모름"

// Gender labels offered by the form. They only flavor the prompt text.
const (
	GenderMale   = "남성"
	GenderFemale = "여성"
)

// SkillTier groups golfers by handicap for equipment recommendations.
type SkillTier string

const (
	SkillTierAdvanced     SkillTier = "advanced"
	SkillTierIntermediate SkillTier = "intermediate"
	SkillTierBeginner     SkillTier = "beginner"
)

// HandicapTier maps a handicap to its skill tier.
func HandicapTier(handicap int) SkillTier {
	switch {
	case handicap < 10:
		return SkillTierAdvanced
	case handicap < 20:
		return SkillTierIntermediate
	default:
		return SkillTierBeginner
	}
}

// Label returns the Korean level label used in prompts.
func (t SkillTier) Label() string {
	switch t {
	case SkillTierAdvanced:
		return "고급자"
	case SkillTierIntermediate:
		return "중급자"
	default:
		return "초급자"
	}
}

// UserInput is the form submission for a single fortune request.
type UserInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	BirthDate   string `json:"birthDate"`
	BirthTime   string `json:"birthTime"`
	Gender      string `json:"gender"`
	Handicap    int    `json:"handicap"`

	// Equipment and venue are echoed into persisted records only.
	CountryClub string `json:"countryClub,omitempty"`
	DriverBrand string `json:"driverBrand,omitempty"`
	IronBrand   string `json:"ironBrand,omitempty"`
	WedgeBrand  string `json:"wedgeBrand,omitempty"`
	PutterBrand string `json:"putterBrand,omitempty"`
	BallBrand   string `json:"ballBrand,omitempty"`
}

// Normalize trims every text field and applies the unknown birth time sentinel.
func (u *UserInput) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.PhoneNumber = strings.TrimSpace(u.PhoneNumber)
	u.Email = strings.TrimSpace(u.Email)
	u.BirthDate = strings.TrimSpace(u.BirthDate)
	u.BirthTime = strings.TrimSpace(u.BirthTime)
	u.Gender = strings.TrimSpace(u.Gender)
	u.CountryClub = strings.TrimSpace(u.CountryClub)
	u.DriverBrand = strings.TrimSpace(u.DriverBrand)
	u.IronBrand = strings.TrimSpace(u.IronBrand)
	u.WedgeBrand = strings.TrimSpace(u.WedgeBrand)
	u.PutterBrand = strings.TrimSpace(u.PutterBrand)
	u.BallBrand = strings.TrimSpace(u.BallBrand)

	switch strings.ToLower(u.BirthTime) {
	case "", "unknown", "미입력":
		u.BirthTime = UnknownBirthTime
	}
}

// HasBirthTime reports whether a birth time was supplied.
func (u *UserInput) HasBirthTime() bool {
	return u.BirthTime != "" && u.BirthTime != UnknownBirthTime
}

// Tier returns the user's skill tier.
func (u *UserInput) Tier() SkillTier {
	return HandicapTier(u.Handicap)
}

// birthDateLayouts are the accepted birth date formats, tried in order.
var birthDateLayouts = []string{
	"2006.01.02",
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006.1.2",
	"2006-1-2",
	time.RFC3339,
}

// ParseBirthDate parses a birth date in any accepted layout.
func ParseBirthDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidBirthDate
	}

	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidBirthDate
}

// FortuneRecord is the persisted unit for one request.
type FortuneRecord struct {
	RequestID string          `json:"requestId"`
	CreatedAt time.Time       `json:"createdAt"`
	User      UserInput       `json:"user"`
	Analysis  ElementAnalysis `json:"analysis"`
	Fortune   FortuneResult   `json:"fortune"`
}
