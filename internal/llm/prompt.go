package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

// NotApplicableWarning is the reasoning for the health-warning question when no
// warning text was declared.
const NotApplicableWarning = "Not applicable - no warnings provided in the form."

// BuildVisionPrompt asks a vision model to read a label image into BrandDataSchema.
func BuildVisionPrompt() string {
	var b strings.Builder
	b.WriteString("You are an expert at extracting structured data from alcohol beverage label images for regulatory review.\n")
	b.WriteString("Read the attached label and fill in the following TypeScript types:\n\n")
	b.WriteString(BrandDataSchema.TypeScript())
	b.WriteString("\nRules:\n")
	b.WriteString("- Copy text exactly as printed on the label. Do not convert units.\n")
	b.WriteString("- If a text field is missing or unreadable, use \"" + constants.Unknown + "\".\n")
	b.WriteString("- If the alcohol content or net contents is missing or unreadable, use null.\n")
	b.WriteString("- Do not add fields that are not in the types.\n")
	b.WriteString("- Return only a JSON object matching " + BrandDataSchema.Root + ". No markdown, no commentary.\n")
	return b.String()
}

// BuildAnalysisPrompt asks a text model to compare declared and extracted label data
// and answer the compliance questions in AnalysisResultSchema.
func BuildAnalysisPrompt(declared, extracted *entity.BrandData) string {
	var b strings.Builder
	b.WriteString("You are reviewing an alcohol beverage label application.\n")
	b.WriteString("DECLARED is what the applicant entered on the form. EXTRACTED is what was read from the label image.\n\n")
	b.WriteString("DECLARED:\n")
	b.WriteString(mustJSON(declared))
	b.WriteString("\n\nEXTRACTED:\n")
	b.WriteString(mustJSON(extracted))
	b.WriteString("\n\nAnswer these questions about the first product:\n")
	b.WriteString("1. brand_name_found: does the extracted brand name match the declared brand name? Ignore case and punctuation.\n")
	b.WriteString("2. product_class_found: does the extracted class/type match the declared one? ")
	if p := declared.FirstProduct(); p != nil && entity.Deref(p.ProductClassType) != "" {
		eq := constants.EquivalentProductClasses(entity.Deref(p.ProductClassType))
		if len(eq) > 1 {
			b.WriteString("Treat these as equivalent: " + strings.Join(eq, ", ") + ". ")
		}
	}
	b.WriteString("\n")
	b.WriteString("3. alcohol_content_found: is the extracted alcohol by volume numerically equal to the declared value?\n")
	b.WriteString("4. net_contents_found: is the extracted net contents the same volume as declared after unit conversion (e.g. 750 mL = 75 cL)?\n")

	if declared.FirstProduct().Warnings() != "" {
		b.WriteString("5. health_warning_found: does the label carry the declared government warning, with the heading \"" +
			constants.GovernmentWarning + "\" in capital letters?\n")
	} else {
		b.WriteString("5. No warning was declared. Set health_warning_found to null and health_warning_found_results_reasoning to \"" +
			NotApplicableWarning + "\".\n")
	}

	b.WriteString("\nFor every question give a short reasoning that quotes the declared and extracted values.\n")
	b.WriteString("Return only a JSON object matching this type:\n\n")
	b.WriteString(AnalysisResultSchema.TypeScript())
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
