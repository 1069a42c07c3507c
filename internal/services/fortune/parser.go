package fortune

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golf-fortune-engine/internal/models"
)

// Parsed is what could be recovered from a model response.
type Parsed struct {
	Sections models.FortuneSections
	Lucky    models.LuckyItems
}

// Found returns the number of non-empty sections.
func (p *Parsed) Found() int {
	return len(models.SectionKeys()) - len(p.Sections.Missing())
}

// ParseResponse extracts sections and lucky fields from a model response.
// JSON is tried first; anything else goes through the header parser. A
// response that is a JSON document but does not decode yields nothing.
func ParseResponse(text string) Parsed {
	text = strings.TrimSpace(text)
	if text == "" {
		return Parsed{}
	}

	fromJSON, ok := parseJSON(text)
	if ok && fromJSON.Found() > 0 {
		return fromJSON
	}
	if strings.HasPrefix(stripCodeFence(text), "{") {
		return fromJSON
	}

	parsed := parseSections(text)
	if ok {
		parsed.Lucky = mergeLucky(parsed.Lucky, fromJSON.Lucky)
	}
	return parsed
}

// stripCodeFence removes a leading markdown fence line and a trailing fence.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func mergeLucky(dst, src models.LuckyItems) models.LuckyItems {
	if dst.LuckyClub == "" {
		dst.LuckyClub = src.LuckyClub
	}
	if dst.LuckyHole == "" {
		dst.LuckyHole = src.LuckyHole
	}
	if dst.LuckyItem == "" {
		dst.LuckyItem = src.LuckyItem
	}
	return dst
}

// luckyField identifies one of the three lucky fields.
type luckyField int

const (
	luckyNone luckyField = iota
	luckyClub
	luckyHole
	luckyItem
)

func (p *Parsed) setLucky(field luckyField, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case luckyClub:
		p.Lucky.LuckyClub = value
	case luckyHole:
		p.Lucky.LuckyHole = value
	case luckyItem:
		p.Lucky.LuckyItem = value
	}
}

// jsonKeys maps normalized JSON keys to sections.
var jsonKeys = map[string]models.SectionKey{
	"greeting":        models.SectionGreeting,
	"overallflow":     models.SectionOverall,
	"mentalfortune":   models.SectionMental,
	"mental":          models.SectionMental,
	"skillfortune":    models.SectionSkill,
	"skill":           models.SectionSkill,
	"physicalfortune": models.SectionPhysical,
	"physical":        models.SectionPhysical,
	"networkfortune":  models.SectionNetwork,
	"network":         models.SectionNetwork,
	"summary":         models.SectionSummary,
	"finaladvice":     models.SectionFinal,
	"final":           models.SectionFinal,
}

var jsonLuckyKeys = map[string]luckyField{
	"luckyclub": luckyClub,
	"luckyhole": luckyHole,
	"luckyitem": luckyItem,
}

func normalizeJSONKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
}

func parseJSON(text string) (Parsed, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return Parsed{}, false
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return Parsed{}, false
	}

	// Some responses nest the sections one level down.
	for _, wrapper := range []string{"title", "fortune", "sections"} {
		if nested, ok := doc[wrapper].(map[string]any); ok {
			for k, v := range nested {
				if _, exists := doc[k]; !exists {
					doc[k] = v
				}
			}
		}
	}

	var parsed Parsed
	var overallMessage string
	for k, v := range doc {
		key := normalizeJSONKey(k)
		value := jsonString(v)
		if value == "" {
			continue
		}

		if section, ok := jsonKeys[key]; ok {
			parsed.Sections.Set(section, value)
			continue
		}
		if field, ok := jsonLuckyKeys[key]; ok {
			if field == luckyHole {
				if n, isNum := v.(float64); isNum {
					value = fmt.Sprintf("%d번홀", int(n))
				}
			}
			parsed.setLucky(field, value)
			continue
		}
		if key == "overallmessage" {
			overallMessage = value
		}
	}

	if parsed.Sections.Summary == "" {
		parsed.Sections.Summary = overallMessage
	}
	return parsed, true
}

func jsonString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

// headerAliases are compared after normalizeHeader, so they are lower case without spaces.
var headerAliases = map[string]models.SectionKey{
	"인사말":            models.SectionGreeting,
	"인사":             models.SectionGreeting,
	"greeting":       models.SectionGreeting,
	"전반기류":           models.SectionOverall,
	"전반적인기류":         models.SectionOverall,
	"전체운세":           models.SectionOverall,
	"overallflow":    models.SectionOverall,
	"멘탈운":            models.SectionMental,
	"멘탈":             models.SectionMental,
	"mentalfortune":  models.SectionMental,
	"기술운":            models.SectionSkill,
	"skillfortune":   models.SectionSkill,
	"체력운":            models.SectionPhysical,
	"physicalfortune": models.SectionPhysical,
	"인맥운":            models.SectionNetwork,
	"networkfortune": models.SectionNetwork,
	"종합메시지":          models.SectionSummary,
	"종합":             models.SectionSummary,
	"종합운세":           models.SectionSummary,
	"summary":        models.SectionSummary,
	"마무리한줄":          models.SectionFinal,
	"마무리조언":          models.SectionFinal,
	"마무리":            models.SectionFinal,
	"finaladvice":    models.SectionFinal,
}

var luckyAliases = map[string]luckyField{
	"행운의클럽":     luckyClub,
	"luckyclub": luckyClub,
	"행운의홀":      luckyHole,
	"luckyhole": luckyHole,
	"행운의아이템":    luckyItem,
	"luckyitem": luckyItem,
}

// ignoredHeaders separate sections but carry no content of their own.
var ignoredHeaders = map[string]bool{
	"세부운세": true,
	"세부":   true,
}

var (
	emojiLabel = regexp.MustCompile(`:[^:\s]+:`)
	ordinal    = regexp.MustCompile(`^\d+[.)]\s*`)
)

// finalMarker opens the final advice when no explicit header exists.
const finalMarker = "허허"

// normalizeHeader reduces a candidate header to its comparable form.
func normalizeHeader(s string) string {
	s = emojiLabel.ReplaceAllString(s, "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	s = ordinal.ReplaceAllString(s, "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

type lineKind int

const (
	lineContent lineKind = iota
	lineSection
	lineLucky
	lineIgnored
)

type classified struct {
	kind    lineKind
	section models.SectionKey
	lucky   luckyField
	inline  string
}

// maxHeaderRunes bounds how far into a line a header is searched for.
const maxHeaderRunes = 24

// headerSeparators may sit between a header and inline content.
var headerSeparators = []string{":", "：", "-", "—", "–"}

func lookupHeader(key string) (classified, bool) {
	if section, ok := headerAliases[key]; ok {
		return classified{kind: lineSection, section: section}, true
	}
	if field, ok := luckyAliases[key]; ok {
		return classified{kind: lineLucky, lucky: field}, true
	}
	if ignoredHeaders[key] {
		return classified{kind: lineIgnored}, true
	}
	return classified{}, false
}

// headerRest reports whether rest can follow a header and returns the inline
// content. A header ends the line, is closed by markdown or a bracket, or is
// followed by a separator.
func headerRest(rest string) (string, bool) {
	closed := strings.TrimLeft(rest, "*_]】)")
	wrapped := len(closed) < len(rest)
	closed = strings.TrimSpace(closed)

	for _, sep := range headerSeparators {
		if strings.HasPrefix(closed, sep) {
			return strings.TrimSpace(strings.TrimLeft(closed[len(sep):], "*_")), true
		}
	}
	if closed == "" || wrapped {
		return closed, true
	}
	return "", false
}

// classifyLine decides whether a line starts with a header, as in
// "멘탈 운: 올해는...", "🌿 **전반 기류** - 올해는..." or a bare "[인사말]".
// The longest known header at the start of the line wins.
func classifyLine(line string) classified {
	cleaned := strings.TrimSpace(emojiLabel.ReplaceAllString(line, ""))
	best := classified{kind: lineContent}
	if cleaned == "" {
		return best
	}

	runes := 0
	for i, r := range cleaned {
		if runes++; runes > maxHeaderRunes {
			break
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		c, ok := lookupHeader(normalizeHeader(cleaned[:end]))
		if !ok {
			continue
		}
		inline, ok := headerRest(cleaned[end:])
		if !ok {
			continue
		}
		c.inline = inline
		best = c
	}

	if best.kind == lineIgnored && best.inline != "" {
		return classified{kind: lineContent}
	}
	return best
}

// parseSections is the line-oriented header parser. Header positions are
// collected first, then each section takes the lines up to the next header.
func parseSections(text string) Parsed {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kinds := make([]classified, len(lines))

	seen := make(map[models.SectionKey]bool)
	for i, line := range lines {
		c := classifyLine(line)
		if c.kind == lineSection {
			if seen[c.section] {
				// Repeated headers are treated as content of the first occurrence.
				c = classified{kind: lineContent}
			} else {
				seen[c.section] = true
			}
		}
		kinds[i] = c
	}

	if !seen[models.SectionFinal] {
		for i := len(lines) - 1; i >= 0; i-- {
			if kinds[i].kind == lineContent && strings.HasPrefix(strings.TrimSpace(lines[i]), finalMarker) {
				kinds[i] = classified{kind: lineSection, section: models.SectionFinal, inline: strings.TrimSpace(lines[i])}
				break
			}
		}
	}

	var parsed Parsed
	var current models.SectionKey
	var buf []string
	flush := func() {
		if current != "" {
			parsed.Sections.Set(current, strings.Join(buf, " "))
		}
		current, buf = "", nil
	}

	for i, line := range lines {
		c := kinds[i]
		switch c.kind {
		case lineSection:
			flush()
			current = c.section
			if c.inline != "" {
				buf = append(buf, c.inline)
			}
		case lineLucky:
			flush()
			parsed.setLucky(c.lucky, stripPlaceholder(c.inline))
		case lineIgnored:
			flush()
		default:
			if current == "" {
				continue
			}
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				buf = append(buf, trimmed)
			}
		}
	}
	flush()

	return parsed
}

// stripPlaceholder removes surrounding brackets a model may echo from the prompt.
func stripPlaceholder(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
}
