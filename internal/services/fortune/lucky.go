package fortune

import (
	"fmt"
	"regexp"
	"strings"

	"golf-fortune-engine/internal/models"
)

// luckyItems maps each element to its themed object.
var luckyItems = map[models.Element]string{
	models.ElementWood:  "초록색 거리측정기 🌳",
	models.ElementFire:  "빨간색 모자 🔥",
	models.ElementEarth: "노란색 장갑 🧤",
	models.ElementMetal: "흰색 시계 ⌚",
	models.ElementWater: "검은색 우산 ☔",
}

// defaultLuckyItem is used for an unrecognized element.
const defaultLuckyItem = "하얀색 골프공 ⛳"

var (
	luckyHolePattern = regexp.MustCompile(`^[0-9]+번홀$`)
	holeNumber       = regexp.MustCompile(`^(?:제\s*)?([0-9]+)\s*(?:번\s*홀|번|홀)?$`)
)

// LuckyItemFor returns the lucky item for an element.
func LuckyItemFor(element models.Element) string {
	if item, ok := luckyItems[element]; ok {
		return item
	}
	return defaultLuckyItem
}

// LuckyHoleFor formats the first lucky number as a hole.
func LuckyHoleFor(analysis models.ElementAnalysis) string {
	return fmt.Sprintf("%d번홀", analysis.LuckyNumbers[0])
}

// IsLuckyHole reports whether s is in the "<N>번홀" form.
func IsLuckyHole(s string) bool {
	return luckyHolePattern.MatchString(s)
}

// NormalizeLuckyHole rewrites near misses such as "7번 홀" or "7" to "7번홀".
// It returns "" when no hole number can be recovered.
func NormalizeLuckyHole(s string) string {
	s = strings.TrimSpace(s)
	if IsLuckyHole(s) {
		return s
	}
	if m := holeNumber.FindStringSubmatch(s); m != nil {
		return m[1] + "번홀"
	}
	return ""
}
