package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/units"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	// runs stay on one line so a brand never absorbs the class line beneath it
	reCapRun     = regexp.MustCompile(`\b([A-Z][A-Za-z]*(?:[ \t]+[A-Z][A-Za-z]*)*)\b`)

	// tried in order; first match wins
	alcoholPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:abv|alc|alcohol|by\s*vol)`),
		regexp.MustCompile(`(?:abv|alc|alcohol)\s*[:.]?\s*(\d+(?:\.\d+)?)\s*%`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:vol|volume)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`),
	}

	// one pattern per unit family, tried in this order
	netContentsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(millilit(?:er|re)s?|ml)(?:[^a-z]|$)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(centilit(?:er|re)s?|cl)(?:[^a-z]|$)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(lit(?:er|re)s?|l)(?:[^a-z]|$)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(fl\.?\s*oz\.?|fluid\s*ounces?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(oz\.?|ounces?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(gal\.?|gallons?)`),
	}

	reWarningBody = regexp.MustCompile(`(?is)GOVERNMENT WARNING[:\s]*(.+?)(?:\n\n|\z)`)

	brandStopWords = map[string]struct{}{
		"GOVERNMENT": {}, "WARNING": {}, "CONTAINS": {}, "ALCOHOL": {}, "ABV": {},
		"ALC": {}, "VOL": {}, "NET": {}, "CONTENTS": {},
	}
)

// ParseLabelText recovers label fields from OCR text. Every field is best effort and
// left nil when nothing matches. The result always holds exactly one product.
func ParseLabelText(text string) *entity.BrandData {
	normalized := strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))

	brand := BrandName(text)
	var warnings *string
	if w := Warnings(text); w != "" {
		warnings = &w
	}
	return &entity.BrandData{
		BrandName: brand,
		Products: []entity.ProductInfo{{
			Name:              brand,
			ProductClassType:  optional(ProductClass(normalized)),
			AlcoholContentABV: optional(AlcoholContent(normalized)),
			NetContents:       optional(NetContents(normalized)),
			OtherInfo:         &entity.OtherInfo{Warnings: warnings},
		}},
	}
}

// BrandName takes the first run of capitalized words that is not all label boilerplate,
// falling back to the first line that is not part of the warning.
func BrandName(text string) *string {
	for _, m := range reCapRun.FindAllString(text, -1) {
		if len(m) < 3 {
			continue
		}
		allStop := true
		for _, w := range strings.Fields(m) {
			if _, ok := brandStopWords[strings.ToUpper(w)]; !ok {
				allStop = false
				break
			}
		}
		if !allStop {
			return &m
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		up := strings.ToUpper(line)
		if len(line) >= 3 && !strings.Contains(up, "GOVERNMENT") && !strings.Contains(up, "WARNING") {
			return &line
		}
	}
	return nil
}

// AlcoholContent returns "<n>%" or "".
func AlcoholContent(normalized string) string {
	lower := strings.ToLower(normalized)
	for _, re := range alcoholPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return m[1] + "%"
		}
	}
	return ""
}

// NetContents returns "<n> <canonical unit>" or "".
func NetContents(normalized string) string {
	lower := strings.ToLower(normalized)
	for _, re := range netContentsPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		unit, ok := units.CanonicalUnit(m[2])
		if !ok {
			unit = m[2]
		}
		return m[1] + " " + unit
	}
	return ""
}

// ProductClass returns the label of the first class phrase contained in the text, or "".
func ProductClass(normalized string) string {
	lower := strings.ToLower(normalized)
	for _, r := range constants.ProductClassRules {
		if strings.Contains(lower, r.Phrase) {
			return r.Label
		}
	}
	return ""
}

// Warnings returns the government warning with its body when the exact heading is present.
func Warnings(text string) string {
	if !strings.Contains(text, constants.GovernmentWarning) {
		return ""
	}
	if m := reWarningBody.FindStringSubmatch(text); m != nil {
		return constants.GovernmentWarning + ": " + strings.TrimSpace(m[1])
	}
	return constants.GovernmentWarning
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
