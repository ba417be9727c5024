// Package units parses alcohol-content and net-contents strings into comparable values.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
)

// ParseError reports an input that holds no recognizable value.
type ParseError struct {
	Kind  string // "alcohol" | "volume"
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s from %q", e.Kind, e.Input)
}

// Is lets callers match with errors.Is(err, common.ErrParse).
func (e *ParseError) Is(target error) bool { return target == common.ErrParse }

var (
	reNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// longest spellings first; Go alternation is leftmost-first
	reVolume = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(fl\.?\s*oz\.?|fluid\s+ounces?|floz|milliliters?|millilitres?|ml|centiliters?|centilitres?|cl|liters?|litres?|l|gallons?|gal\.?|ounces?|oz\.?)(?:[^a-z]|$)`)

	reUnitNoise = regexp.MustCompile(`[.\s]+`)
)

// ParseAlcoholPercentage turns "41.3%", "41.3 %" or "41.3" into 41.3.
func ParseAlcoholPercentage(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	m := reNumber.FindString(trimmed)
	if m == "" {
		return 0, &ParseError{Kind: "alcohol", Input: s}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, &ParseError{Kind: "alcohol", Input: s}
	}
	return v, nil
}

// Volume is a parsed net-contents declaration.
type Volume struct {
	Value     float64
	ValueText string // digits as written, e.g. "750" or "37.5"
	Unit      string // canonical token, see constants.Unit*
}

// Millilitres converts the volume using the fixed unit factors.
func (v Volume) Millilitres() float64 {
	return v.Value * constants.MillilitresPerUnit[v.Unit]
}

// String renders "<value> <unit>".
func (v Volume) String() string {
	return v.ValueText + " " + v.Unit
}

// ParseVolume finds the first "<number> <unit>" in s.
func ParseVolume(s string) (Volume, error) {
	m := reVolume.FindStringSubmatch(s)
	if m == nil {
		return Volume{}, &ParseError{Kind: "volume", Input: s}
	}
	unit, ok := CanonicalUnit(m[2])
	if !ok {
		return Volume{}, &ParseError{Kind: "volume", Input: s}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Volume{}, &ParseError{Kind: "volume", Input: s}
	}
	return Volume{Value: v, ValueText: m[1], Unit: unit}, nil
}

// ParseVolumeToMillilitres converts e.g. "750 mL", "1.75L" or "12 fl. oz." to millilitres.
func ParseVolumeToMillilitres(s string) (float64, error) {
	v, err := ParseVolume(s)
	if err != nil {
		return 0, err
	}
	return v.Millilitres(), nil
}

// CanonicalUnit maps any accepted spelling of a unit to its canonical token.
func CanonicalUnit(raw string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimSpace(reUnitNoise.ReplaceAllString(u, " "))
	switch u {
	case "ml", "milliliter", "milliliters", "millilitre", "millilitres":
		return constants.UnitML, true
	case "cl", "centiliter", "centiliters", "centilitre", "centilitres":
		return constants.UnitCL, true
	case "l", "liter", "liters", "litre", "litres":
		return constants.UnitL, true
	case "fl oz", "floz", "fluid ounce", "fluid ounces":
		return constants.UnitFlOz, true
	case "oz", "ounce", "ounces":
		return constants.UnitOz, true
	case "gal", "gallon", "gallons":
		return constants.UnitGal, true
	}
	return "", false
}

// UnitFamilyFor returns the spelling family for a unit string, if any.
func UnitFamilyFor(raw string) (constants.UnitFamily, bool) {
	canon, ok := CanonicalUnit(raw)
	if !ok {
		return constants.UnitFamily{}, false
	}
	for _, f := range constants.UnitFamilies {
		if f.Canonical == canon {
			return f, true
		}
	}
	return constants.UnitFamily{}, false
}

// NormalizeNetContents appends " mL" to a bare number and leaves anything else trimmed.
func NormalizeNetContents(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return t
	}
	if reNumber.FindString(t) == t {
		return t + " " + constants.UnitML
	}
	return t
}
