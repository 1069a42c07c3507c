// Package models defines the data structures for the golf fortune engine.
package models

// FortuneSource records where the narrative sections came from.
type FortuneSource string

const (
	FortuneSourceAI       FortuneSource = "ai"
	FortuneSourcePartial  FortuneSource = "partial"
	FortuneSourceTemplate FortuneSource = "template"
)

// SectionKey identifies one of the eight narrative sections.
type SectionKey string

const (
	SectionGreeting SectionKey = "greeting"
	SectionOverall  SectionKey = "overallFlow"
	SectionMental   SectionKey = "mentalFortune"
	SectionSkill    SectionKey = "skillFortune"
	SectionPhysical SectionKey = "physicalFortune"
	SectionNetwork  SectionKey = "networkFortune"
	SectionSummary  SectionKey = "summary"
	SectionFinal    SectionKey = "finalAdvice"
)

// SectionKeys returns the section keys in display order.
func SectionKeys() []SectionKey {
	return []SectionKey{
		SectionGreeting,
		SectionOverall,
		SectionMental,
		SectionSkill,
		SectionPhysical,
		SectionNetwork,
		SectionSummary,
		SectionFinal,
	}
}

// Title returns the Korean header used for the section.
func (k SectionKey) Title() string {
	switch k {
	case SectionGreeting:
		return "인사말"
	case SectionOverall:
		return "전반 기류"
	case SectionMental:
		return "멘탈 운"
	case SectionSkill:
		return "기술 운"
	case SectionPhysical:
		return "체력 운"
	case SectionNetwork:
		return "인맥 운"
	case SectionSummary:
		return "종합 메시지"
	case SectionFinal:
		return "마무리 조언"
	default:
		return string(k)
	}
}

// FortuneSections holds the eight prose sections.
type FortuneSections struct {
	Greeting        string `json:"greeting"`
	OverallFlow     string `json:"overallFlow"`
	MentalFortune   string `json:"mentalFortune"`
	SkillFortune    string `json:"skillFortune"`
	PhysicalFortune string `json:"physicalFortune"`
	NetworkFortune  string `json:"networkFortune"`
	Summary         string `json:"summary"`
	FinalAdvice     string `json:"finalAdvice"`
}

// Get returns the section text for key.
func (s *FortuneSections) Get(key SectionKey) string {
	if p := s.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores text under key. Unknown keys are ignored.
func (s *FortuneSections) Set(key SectionKey, text string) {
	if p := s.field(key); p != nil {
		*p = text
	}
}

func (s *FortuneSections) field(key SectionKey) *string {
	switch key {
	case SectionGreeting:
		return &s.Greeting
	case SectionOverall:
		return &s.OverallFlow
	case SectionMental:
		return &s.MentalFortune
	case SectionSkill:
		return &s.SkillFortune
	case SectionPhysical:
		return &s.PhysicalFortune
	case SectionNetwork:
		return &s.NetworkFortune
	case SectionSummary:
		return &s.Summary
	case SectionFinal:
		return &s.FinalAdvice
	default:
		return nil
	}
}

// Missing lists the keys whose text is empty.
func (s *FortuneSections) Missing() []SectionKey {
	var missing []SectionKey
	for _, key := range SectionKeys() {
		if s.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// LuckyItems are the flavor fields attached to a fortune.
type LuckyItems struct {
	LuckyClub string `json:"luckyClub"`
	LuckyHole string `json:"luckyHole"`
	LuckyItem string `json:"luckyItem"`
}

// FortuneResult is the complete fortune returned to the caller.
type FortuneResult struct {
	Sections FortuneSections `json:"title"`
	LuckyItems
	Source FortuneSource `json:"source"`
}

// MissingSections lists the section keys without text.
func (f *FortuneResult) MissingSections() []SectionKey {
	return f.Sections.Missing()
}

// IsComplete reports whether every section and lucky field is populated.
func (f *FortuneResult) IsComplete() bool {
	return len(f.MissingSections()) == 0 &&
		f.LuckyClub != "" &&
		f.LuckyHole != "" &&
		f.LuckyItem != ""
}
