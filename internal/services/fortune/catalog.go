package fortune

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"golf-fortune-engine/internal/models"
)

// ClubCategory is the kind of club a strength points to.
type ClubCategory string

const (
	CategoryDriver ClubCategory = "driver"
	CategoryIron   ClubCategory = "iron"
	CategoryWedge  ClubCategory = "wedge"
	CategoryPutter ClubCategory = "putter"
)

// Club is one catalog entry.
type Club struct {
	Name     string           `yaml:"name"`
	Brand    string           `yaml:"brand"`
	Category ClubCategory     `yaml:"category"`
	Tier     models.SkillTier `yaml:"tier"`
}

// Catalog is the static product table used for luckyClub.
type Catalog struct {
	clubs []Club
}

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Clubs []Club `yaml:"clubs"`
}

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Clubs) == 0 {
		return nil, fmt.Errorf("catalog has no clubs")
	}

	for i, club := range file.Clubs {
		switch club.Category {
		case CategoryDriver, CategoryIron, CategoryWedge, CategoryPutter:
		default:
			return nil, fmt.Errorf("club %d (%s): unknown category %q", i, club.Name, club.Category)
		}
		switch club.Tier {
		case models.SkillTierAdvanced, models.SkillTierIntermediate, models.SkillTierBeginner:
		default:
			return nil, fmt.Errorf("club %d (%s): unknown tier %q", i, club.Name, club.Tier)
		}
	}

	return &Catalog{clubs: file.Clubs}, nil
}

// LoadCatalog reads a catalog document from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Len returns the number of clubs.
func (c *Catalog) Len() int {
	return len(c.clubs)
}

// Clubs returns a copy of every entry.
func (c *Catalog) Clubs() []Club {
	out := make([]Club, len(c.clubs))
	copy(out, c.clubs)
	return out
}

// Filter returns the clubs matching category and tier.
func (c *Catalog) Filter(category ClubCategory, tier models.SkillTier) []Club {
	var matches []Club
	for _, club := range c.clubs {
		if club.Category == category && club.Tier == tier {
			matches = append(matches, club)
		}
	}
	return matches
}

// Pick chooses a club for the category and tier. When the category has no
// entry for the tier, any club of the tier is eligible. An empty catalog
// yields the zero Club.
func (c *Catalog) Pick(rng *rand.Rand, category ClubCategory, tier models.SkillTier) Club {
	if len(c.clubs) == 0 {
		return Club{}
	}

	matches := c.Filter(category, tier)
	if len(matches) == 0 {
		for _, club := range c.clubs {
			if club.Tier == tier {
				matches = append(matches, club)
			}
		}
	}
	if len(matches) == 0 {
		matches = c.clubs
	}
	return matches[rng.Intn(len(matches))]
}

// CategoryFor maps an element strength to a club category.
func CategoryFor(strength string) (ClubCategory, bool) {
	switch {
	case strings.Contains(strength, "드라이버"), strings.Contains(strength, "장타"):
		return CategoryDriver, true
	case strings.Contains(strength, "웨지"), strings.Contains(strength, "어프로치"):
		return CategoryWedge, true
	case strings.Contains(strength, "아이언"):
		return CategoryIron, true
	case strings.Contains(strength, "퍼팅"), strings.Contains(strength, "퍼터"), strings.Contains(strength, "그린"):
		return CategoryPutter, true
	default:
		return "", false
	}
}

// CategoryForAnalysis uses the first strength that names a club, defaulting to iron.
func CategoryForAnalysis(analysis models.ElementAnalysis) ClubCategory {
	for _, strength := range analysis.Strengths {
		if category, ok := CategoryFor(strength); ok {
			return category
		}
	}
	return CategoryIron
}
