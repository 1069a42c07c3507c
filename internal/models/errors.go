// Package models defines the data structures for the golf fortune engine.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrInvalidBirthDate  = errors.New("invalid birth date")
	ErrBirthYearRange    = errors.New("birth year out of range")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrMissingCredential = errors.New("LLM API key not configured")
	ErrRemoteUnavailable = errors.New("remote text generation unavailable")
	ErrRemoteMalformed   = errors.New("remote text generation returned malformed output")
	ErrPersistence       = errors.New("failed to persist fortune record")
)

// MinBirthYear is the lower bound used by ValidateBirthYear.
const MinBirthYear = 1900

// ValidateUserInput rejects an empty name, an unreadable birth date and a
// birth year outside MinBirthYear..now.
func ValidateUserInput(u *UserInput) error {
	if u.Name == "" {
		return ErrEmptyName
	}

	birth, err := ParseBirthDate(u.BirthDate)
	if err != nil {
		return err
	}

	return ValidateBirthYear(birth.Year(), time.Now().Year())
}

// ValidateBirthYear checks that year lies between MinBirthYear and currentYear.
func ValidateBirthYear(year, currentYear int) error {
	if year < MinBirthYear || year > currentYear {
		return fmt.Errorf("%w: %d", ErrBirthYearRange, year)
	}
	return nil
}
