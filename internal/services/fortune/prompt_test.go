package fortune

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/element"
)

func TestBuildPrompt_EmbedsUserAndAnalysis(t *testing.T) {
	input := sampleInput()
	analysis := element.Classify(input.BirthDate)

	system, user := BuildPrompt(input, analysis, PromptOptions{Format: PromptFormatJSON})

	assert.Contains(t, system, "골신 할아버지")
	assert.Contains(t, system, "3-4문장")
	assert.Contains(t, system, "기승전결")

	for _, want := range []string{
		"김철수", "1990.05.15", "14:30", "남성", "15 (중급자 레벨)",
		analysis.ElementName, analysis.Personality, analysis.GolfStyle,
		"드라이버, 장타", "퍼팅, 정확성", "초록, 파랑", "1, 6",
		"JSON", "luckyHole", "1번홀",
	} {
		assert.Contains(t, user, want)
	}
}

func TestBuildPrompt_SentencesConfigurable(t *testing.T) {
	input := sampleInput()
	system, user := BuildPrompt(input, element.Classify(input.BirthDate), PromptOptions{Sentences: "2-3"})

	assert.Contains(t, system, "2-3문장")
	assert.Contains(t, user, "2-3문장")
}

func TestBuildPrompt_TextShapeListsHeadersInOrder(t *testing.T) {
	input := sampleInput()
	_, user := BuildPrompt(input, element.Classify(input.BirthDate), PromptOptions{Format: PromptFormatText})

	last := -1
	for _, key := range models.SectionKeys() {
		idx := strings.Index(user, "["+key.Title()+"]")
		require.GreaterOrEqual(t, idx, 0, key.Title())
		assert.Greater(t, idx, last, "%s out of order", key.Title())
		last = idx
	}
	assert.Contains(t, user, "행운의 홀")
}

func TestDefaultCatalog_CoversEveryCategoryAndTier(t *testing.T) {
	catalog := DefaultCatalog()
	categories := []ClubCategory{CategoryDriver, CategoryIron, CategoryWedge, CategoryPutter}
	tiers := []models.SkillTier{models.SkillTierAdvanced, models.SkillTierIntermediate, models.SkillTierBeginner}

	for _, category := range categories {
		for _, tier := range tiers {
			assert.NotEmpty(t, catalog.Filter(category, tier), "%s/%s", category, tier)
		}
	}

	names := make(map[string]bool)
	for _, club := range catalog.Clubs() {
		names[club.Name] = true
	}
	assert.True(t, names["Srixon ZXi5 Irons"])
	assert.True(t, names["XXIO 13 Irons"])
}

func TestCatalogPick_StaysInTier(t *testing.T) {
	catalog := DefaultCatalog()
	rng := rand.New(rand.NewSource(1))

	for range 100 {
		club := catalog.Pick(rng, CategoryPutter, models.SkillTierBeginner)
		assert.Equal(t, CategoryPutter, club.Category)
		assert.Equal(t, models.SkillTierBeginner, club.Tier)
	}
}

func TestCatalogPick_FallsBackToTier(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
clubs:
  - {name: A, brand: X, category: driver, tier: advanced}
  - {name: B, brand: X, category: iron, tier: beginner}
`))
	require.NoError(t, err)

	club := catalog.Pick(rand.New(rand.NewSource(1)), CategoryPutter, models.SkillTierBeginner)
	assert.Equal(t, "B", club.Name)
}

func TestParseCatalog_RejectsBadEntries(t *testing.T) {
	_, err := ParseCatalog([]byte("clubs:\n  - {name: A, category: hybrid, tier: advanced}\n"))
	assert.ErrorContains(t, err, "unknown category")

	_, err = ParseCatalog([]byte("clubs:\n  - {name: A, category: iron, tier: pro}\n"))
	assert.ErrorContains(t, err, "unknown tier")

	_, err = ParseCatalog([]byte("clubs: []\n"))
	assert.Error(t, err)
}

func TestCategoryForAnalysis(t *testing.T) {
	want := []ClubCategory{CategoryDriver, CategoryIron, CategoryPutter, CategoryIron, CategoryPutter}
	for i, category := range want {
		assert.Equal(t, category, CategoryForAnalysis(element.ByIndex(i)), i)
	}

	c, ok := CategoryFor("샌드웨지")
	assert.True(t, ok)
	assert.Equal(t, CategoryWedge, c)

	_, ok = CategoryFor("정확성")
	assert.False(t, ok)
}
