// Package models defines the data structures for the golf fortune engine.
package models

// Element is one of the five phases used as a classification key.
type Element string

const (
	ElementWood  Element = "木"
	ElementFire  Element = "火"
	ElementEarth Element = "土"
	ElementMetal Element = "金"
	ElementWater Element = "水"
)

// ElementCount is the number of elements and the modulus for classification.
const ElementCount = 5

// Elements returns the elements in index order.
func Elements() []Element {
	return []Element{
		ElementWood,
		ElementFire,
		ElementEarth,
		ElementMetal,
		ElementWater,
	}
}

// IsValid checks if the element is one of the five known symbols.
func (e Element) IsValid() bool {
	for _, valid := range Elements() {
		if e == valid {
			return true
		}
	}
	return false
}

// Index returns the table index of the element, or -1 if unknown.
func (e Element) Index() int {
	for i, valid := range Elements() {
		if e == valid {
			return i
		}
	}
	return -1
}

// English returns the English name of the element.
func (e Element) English() string {
	switch e {
	case ElementWood:
		return "Wood"
	case ElementFire:
		return "Fire"
	case ElementEarth:
		return "Earth"
	case ElementMetal:
		return "Metal"
	case ElementWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// ElementAnalysis is the deterministic classification derived from a birth date.
type ElementAnalysis struct {
	Element         Element   `json:"element"`
	ElementName     string    `json:"element_name"`
	Personality     string    `json:"personality"`
	GolfStyle       string    `json:"golfStyle"`
	Strengths       [2]string `json:"strengths"`
	Weaknesses      [2]string `json:"weaknesses"`
	LuckyColors     [2]string `json:"luckyColors"`
	Recommendations [2]string `json:"recommendations"`
	LuckyNumbers    [2]int    `json:"lucky_numbers"`
	BirthYear       int       `json:"birthYear,omitempty"`
	Defaulted       bool      `json:"defaulted,omitempty"`
}

// ElementIndex returns the table index of the analysis element.
func (a *ElementAnalysis) ElementIndex() int {
	return a.Element.Index()
}
