// Package element maps birth dates to one of the five elements.
package element

import (
	"fmt"

	"golf-fortune-engine/internal/models"
)

// Classify derives the element analysis for a birth date.
// An unreadable date yields DefaultAnalysis instead of an error.
func Classify(birthDate string) models.ElementAnalysis {
	birth, err := models.ParseBirthDate(birthDate)
	if err != nil {
		return DefaultAnalysis()
	}
	return ForYear(birth.Year())
}

// Index returns birthYear mod 5, always in [0, 4].
func Index(year int) int {
	return ((year % models.ElementCount) + models.ElementCount) % models.ElementCount
}

// ForYear builds the analysis for a birth year.
func ForYear(year int) models.ElementAnalysis {
	analysis := ByIndex(Index(year))
	analysis.BirthYear = year
	return analysis
}

// ByIndex builds the analysis from table row i. i is reduced modulo 5.
func ByIndex(i int) models.ElementAnalysis {
	i = Index(i)
	p := profiles[i]

	return models.ElementAnalysis{
		Element:         p.element,
		ElementName:     fmt.Sprintf("%s - %s의 기운", p.element, p.name),
		Personality:     p.personality,
		GolfStyle:       p.golfStyle,
		Strengths:       p.strengths,
		Weaknesses:      p.weaknesses,
		LuckyColors:     p.luckyColors,
		Recommendations: p.recommendations,
		LuckyNumbers:    [2]int{i + 1, i + 6},
	}
}

// DefaultAnalysis is substituted when the birth date cannot be parsed.
func DefaultAnalysis() models.ElementAnalysis {
	analysis := ByIndex(0)
	analysis.GolfStyle = defaultGolfStyle
	analysis.Defaulted = true
	return analysis
}
