package element

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/models"
)

func TestClassify_KnownYears(t *testing.T) {
	tests := []struct {
		name        string
		birthDate   string
		element     models.Element
		personality string
		lucky       [2]int
	}{
		{"1990 is wood", "1990.05.15", models.ElementWood, "활발하고 도전적", [2]int{1, 6}},
		{"1991 is fire", "1991-01-01", models.ElementFire, "신중하고 안정적", [2]int{2, 7}},
		{"1992 is earth", "1992/12/31", models.ElementEarth, "창의적이고 예술적", [2]int{3, 8}},
		{"1988 is metal", "19880229", models.ElementMetal, "논리적이고 분석적", [2]int{4, 9}},
		{"2024 is water", "2024.2.9", models.ElementWater, "감성적이고 직관적", [2]int{5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.birthDate)
			assert.Equal(t, tt.element, got.Element)
			assert.Equal(t, tt.personality, got.Personality)
			assert.Equal(t, tt.lucky, got.LuckyNumbers)
			assert.False(t, got.Defaulted)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	for year := 1900; year <= 2030; year++ {
		birthDate := fmt.Sprintf("%04d.06.15", year)

		first := Classify(birthDate)
		second := Classify(birthDate)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("Classify(%q) not stable (-first +second):\n%s", birthDate, diff)
		}
		require.Equal(t, year, first.BirthYear)
	}
}

func TestIndex_MatchesYearModFive(t *testing.T) {
	for year := -20; year <= 3000; year++ {
		i := Index(year)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, models.ElementCount)
		if year >= 0 {
			require.Equal(t, year%5, i)
			require.Equal(t, (year%10)%5, i, "both modulus variants agree")
		}
	}
}

func TestByIndex_TablesAligned(t *testing.T) {
	for i, element := range models.Elements() {
		a := ByIndex(i)
		assert.Equal(t, element, a.Element)
		assert.Equal(t, i, a.ElementIndex())
		assert.Equal(t, [2]int{i + 1, i + 6}, a.LuckyNumbers)
		assert.Equal(t, profiles[i].strengths, a.Strengths)
		assert.Equal(t, profiles[i].weaknesses, a.Weaknesses)
		assert.Equal(t, profiles[i].luckyColors, a.LuckyColors)
		assert.Equal(t, profiles[i].recommendations, a.Recommendations)
		assert.Contains(t, a.ElementName, string(element))
	}
}

func TestClassify_InvalidDateFallsBackToDefault(t *testing.T) {
	for _, input := range []string{"", "not a date", "1990.13.45", "모름"} {
		got := Classify(input)
		assert.Equal(t, models.ElementWood, got.Element, input)
		assert.Equal(t, "활발하고 도전적", got.Personality)
		assert.Equal(t, "균형적", got.GolfStyle)
		assert.True(t, got.Defaulted)
		assert.Zero(t, got.BirthYear)
	}
}

func TestClassify_AcceptsOutOfRangeYears(t *testing.T) {
	got := Classify("1850.01.01")
	assert.Equal(t, 1850, got.BirthYear)
	assert.Equal(t, models.ElementWood, got.Element)

	assert.ErrorIs(t, models.ValidateBirthYear(1850, 2026), models.ErrBirthYearRange)
}
