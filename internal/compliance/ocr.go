package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/units"
)

var (
	reSpaces        = regexp.MustCompile(`\s+`)
	reLeadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reValueAndUnit  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(.+)$`)
)

// OCRMatcher checks the declared values against the raw OCR text with plain text rules.
// It is deterministic: the same declared data and text always give the same result.
type OCRMatcher struct {
	logger *slog.Logger
}

func NewOCRMatcher(logger *slog.Logger) *OCRMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRMatcher{logger: logger}
}

func (m *OCRMatcher) Match(_ context.Context, declared *entity.BrandData, extracted extract.Result) (*entity.AnalysisResult, error) {
	r := MatchOCRText(declared, extracted.Text)
	m.logger.Info("compliance.ocr.done",
		"brand", r.BrandNameFound,
		"class", r.ProductClassFound,
		"abv", r.AlcoholContentFound,
		"net", r.NetContentsFound,
		"warning", r.HealthWarning(),
	)
	return r, nil
}

// MatchOCRText evaluates declared data against OCR text. Only the health-warning check
// looks at the text as written; every other check is case-insensitive.
func MatchOCRText(declared *entity.BrandData, text string) *entity.AnalysisResult {
	r := &entity.AnalysisResult{}
	lower := strings.ToLower(text)

	brand := ""
	if declared != nil {
		brand = strings.TrimSpace(entity.Deref(declared.BrandName))
	}
	switch {
	case brand == "":
		r.BrandNameFoundReasoning = entity.Ptr("The form does not specify a brand name, so there was nothing to look for on the label.")
	case strings.Contains(lower, strings.ToLower(brand)):
		r.BrandNameFound = true
		r.BrandNameFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The brand name '%s' was found on the label (case-insensitive match) using OCR text extraction.", brand))
	default:
		r.BrandNameFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The form specifies a brand name of '%s', but the OCR extracted label data does not contain this text "+
				"(case-insensitive search), indicating the brand name was not found on the label.", brand))
	}

	p := declared.FirstProduct()

	class := strings.TrimSpace(entity.Deref(productField(p, func(p *entity.ProductInfo) *string { return p.ProductClassType })))
	switch {
	case class == "":
		r.ProductClassFoundReasoning = entity.Ptr("The form does not specify a product class, so there was nothing to look for on the label.")
	case ProductClassInText(class, lower):
		r.ProductClassFound = true
		r.ProductClassFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The product class '%s' (or a close equivalent) was found on the label using OCR text extraction.", class))
	default:
		r.ProductClassFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The form specifies a product class of '%s', but the OCR extracted label data does not contain this text "+
				"or a close equivalent, indicating the product class was not found on the label.", class))
	}

	abv := strings.TrimSpace(entity.Deref(productField(p, func(p *entity.ProductInfo) *string { return p.AlcoholContentABV })))
	switch {
	case abv == "":
		r.AlcoholContentFoundReasoning = entity.Ptr("The form does not specify an alcohol content, so there was nothing to look for on the label.")
	case AlcoholContentInText(abv, lower):
		r.AlcoholContentFound = true
		r.AlcoholContentFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The alcohol content '%s' was found on the label using OCR text extraction.", abv))
	default:
		r.AlcoholContentFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The form specifies an alcohol content of '%s', but the OCR extracted label data does not show this value, "+
				"indicating no matching alcohol percentage was found on the label.", abv))
	}

	net := strings.TrimSpace(entity.Deref(productField(p, func(p *entity.ProductInfo) *string { return p.NetContents })))
	switch {
	case net == "":
		r.NetContentsFoundReasoning = entity.Ptr("The form does not specify net contents, so there was nothing to look for on the label.")
	case NetContentsInText(net, lower):
		r.NetContentsFound = true
		r.NetContentsFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The net contents '%s' was found on the label using OCR text extraction.", net))
	default:
		r.NetContentsFoundReasoning = entity.Ptr(fmt.Sprintf(
			"The form specifies net contents of '%s', but the OCR extracted label data does not show this value, "+
				"indicating the net contents was not found on the label.", net))
	}

	if p.Warnings() == "" {
		notApplicable(r)
	} else if strings.Contains(text, constants.GovernmentWarning) {
		r.HealthWarningFound = entity.Ptr(true)
		r.HealthWarningFoundReasoning = entity.Ptr(
			"The required 'GOVERNMENT WARNING' text was found on the label in the correct all-caps format using OCR text extraction.")
	} else {
		r.HealthWarningFound = entity.Ptr(false)
		r.HealthWarningFoundReasoning = entity.Ptr(
			"The form requires a government warning, but the OCR extracted label data does not contain " +
				"'GOVERNMENT WARNING' in the required all-caps format.")
	}
	return r
}

// ProductClassInText reports whether text (lowercased) holds the declared class or a
// phrase equivalent to it in either direction of the equivalents table.
func ProductClassInText(class, lowerText string) bool {
	for _, c := range constants.EquivalentProductClasses(class) {
		if strings.Contains(lowerText, c) {
			return true
		}
	}
	return false
}

// AlcoholContentInText looks for the declared percentage next to a % sign.
func AlcoholContentInText(declared, lowerText string) bool {
	value := strings.TrimSpace(strings.ReplaceAll(declared, "%", ""))
	if n := reLeadingNumber.FindString(value); n != "" {
		value = n
	}
	if value == "" {
		return false
	}
	text := collapse(lowerText)
	for _, p := range []string{
		value + "%",
		value + " %",
		value + "% alc",
		value + "% abv",
		"alc " + value + "%",
		"abv " + value + "%",
		value + " % alc",
		value + " % abv",
		"alcohol " + value + "%",
	} {
		if strings.Contains(text, p) {
			return true
		}
	}
	return regexp.MustCompile(regexp.QuoteMeta(value) + `\s*%`).MatchString(text)
}

// NetContentsInText looks for the declared volume written with any spelling of its unit.
func NetContentsInText(declared, lowerText string) bool {
	net := strings.ToLower(strings.TrimSpace(declared))
	if net == "" {
		return false
	}
	text := collapse(lowerText)
	if strings.Contains(text, net) {
		return true
	}
	if strings.Contains(strings.ReplaceAll(text, " ", ""), strings.ReplaceAll(net, " ", "")) {
		return true
	}

	if m := reValueAndUnit.FindStringSubmatch(net); m != nil {
		value := regexp.QuoteMeta(m[1])
		if fam, ok := units.UnitFamilyFor(m[2]); ok {
			for _, v := range fam.Variations {
				if regexp.MustCompile(value + `\s*` + regexp.QuoteMeta(v)).MatchString(text) {
					return true
				}
			}
			return false
		}
	}

	value := reLeadingNumber.FindString(net)
	if value == "" {
		return false
	}
	return regexp.MustCompile(regexp.QuoteMeta(value) + `\s*(ml|l|cl|oz|fl\s*oz|gal)`).MatchString(text)
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func productField(p *entity.ProductInfo, get func(*entity.ProductInfo) *string) *string {
	if p == nil {
		return nil
	}
	return get(p)
}
