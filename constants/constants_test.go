package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	s, ok := ParseJobStatus(" Approved ")
	require.True(t, ok)
	assert.Equal(t, JobStatusApproved, s)

	_, ok = ParseJobStatus("done")
	assert.False(t, ok)
	_, ok = ParseJobStatus("")
	assert.False(t, ok)
}

func TestParseAnalysisMode(t *testing.T) {
	tests := map[string]AnalysisMode{
		"using_llm":   AnalysisModeLLM,
		"LLM":         AnalysisModeLLM,
		"pytesseract": AnalysisModeOCR,
		"ocr":         AnalysisModeOCR,
		" Tesseract":  AnalysisModeOCR,
	}
	for in, want := range tests {
		got, ok := ParseAnalysisMode(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseAnalysisMode("vision")
	assert.False(t, ok)
}

func TestMediaTypeForExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", MediaTypeForExt(".JPG"))
	assert.Equal(t, "image/jpeg", MediaTypeForExt("jpeg"))
	assert.Equal(t, "image/png", MediaTypeForExt("png"))
	assert.Equal(t, "", MediaTypeForExt("tiff"))
}

func TestEquivalentProductClasses(t *testing.T) {
	assert.Nil(t, EquivalentProductClasses("  "))

	got := EquivalentProductClasses("Bourbon")
	assert.Equal(t, "bourbon", got[0])
	assert.Contains(t, got, "kentucky bourbon")
	// reverse direction: whiskey lists bourbon
	assert.Contains(t, got, "whiskey")

	assert.Equal(t, []string{"mezcal", "tequila"}, EquivalentProductClasses("mezcal"))
}

func TestEquivalentProductClasses_Symmetric(t *testing.T) {
	for _, base := range equivalentBases {
		for _, rel := range EquivalentProductClasses(base)[1:] {
			assert.Contains(t, EquivalentProductClasses(rel), base, "%s -> %s", base, rel)
		}
	}
}

func TestUnitFamilies_FluidOunceFirst(t *testing.T) {
	idx := map[string]int{}
	for i, f := range UnitFamilies {
		idx[f.Key] = i
		_, ok := MillilitresPerUnit[f.Canonical]
		assert.True(t, ok, f.Canonical)
	}
	assert.Less(t, idx["fl oz"], idx["oz"])
}
