package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
)

func sampleJob() *Job {
	return &Job{
		ID:           uuid.New(),
		BrandName:    "Old Tom",
		ProductClass: "Gin",
		Status:       constants.JobStatusPending,
		Metadata: JobMetadata{
			ReviewComments: []string{"Review initiated"},
			ProductInfo: &BrandData{
				BrandName: Ptr("Old Tom"),
				Products: []ProductInfo{{
					Name:              Ptr("Old Tom"),
					ProductClassType:  Ptr("Gin"),
					AlcoholContentABV: Ptr("40%"),
					NetContents:       Ptr("750 mL"),
					OtherInfo:         &OtherInfo{Warnings: Ptr("GOVERNMENT WARNING")},
				}},
			},
			LabelImages: []LabelImage{
				{Base64: Ptr("aGVsbG8="), ImageContentType: Ptr("image/png")},
				{ImageURL: Ptr("https://example.com/back.png")},
			},
		},
	}
}

func TestWithAnalysis_DoesNotMutateInput(t *testing.T) {
	job := sampleJob()
	before, err := json.Marshal(job)
	require.NoError(t, err)

	extracted := &BrandData{BrandName: Ptr("OLD TOM"), Products: []ProductInfo{{Name: Ptr("OLD TOM")}}}
	result := &AnalysisResult{BrandNameFound: true, BrandNameFoundReasoning: Ptr("found")}

	updated := job.WithAnalysis(0, extracted, result)
	require.NotNil(t, updated)

	after, err := json.Marshal(job)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	assert.Nil(t, job.Metadata.LabelImages[0].AnalysisResult)
	require.NotNil(t, updated.Metadata.LabelImages[0].AnalysisResult)
	assert.True(t, updated.Metadata.LabelImages[0].AnalysisResult.BrandNameFound)
	assert.Equal(t, "OLD TOM", *updated.Metadata.LabelImages[0].ExtractedProductInfo.BrandName)

	// second image is carried over untouched
	assert.Equal(t, job.Metadata.LabelImages[1], updated.Metadata.LabelImages[1])
}

func TestWithAnalysis_ClonesAttachedValues(t *testing.T) {
	job := sampleJob()
	extracted := &BrandData{BrandName: Ptr("A")}
	result := &AnalysisResult{BrandNameFoundReasoning: Ptr("r")}

	updated := job.WithAnalysis(0, extracted, result)
	*extracted.BrandName = "B"
	*result.BrandNameFoundReasoning = "changed"

	assert.Equal(t, "A", *updated.Metadata.LabelImages[0].ExtractedProductInfo.BrandName)
	assert.Equal(t, "r", *updated.Metadata.LabelImages[0].AnalysisResult.BrandNameFoundReasoning)

	// the updated image does not share pointers with the original image
	*updated.Metadata.LabelImages[0].Base64 = "mutated"
	assert.Equal(t, "aGVsbG8=", *job.Metadata.LabelImages[0].Base64)
}

func TestWithAnalysis_OutOfRange(t *testing.T) {
	job := sampleJob()
	assert.Nil(t, job.WithAnalysis(5, nil, nil))
	assert.Nil(t, (&Job{}).WithAnalysis(0, nil, nil))
}

func TestJobClone_Independent(t *testing.T) {
	job := sampleJob()
	cp := job.Clone()

	cp.Metadata.ReviewComments = append(cp.Metadata.ReviewComments, "more")
	*cp.Metadata.ProductInfo.Products[0].OtherInfo.Warnings = "changed"
	cp.Metadata.LabelImages[0].ImageContentType = Ptr("image/gif")

	assert.Len(t, job.Metadata.ReviewComments, 1)
	assert.Equal(t, "GOVERNMENT WARNING", *job.Metadata.ProductInfo.Products[0].OtherInfo.Warnings)
	assert.Equal(t, "image/png", *job.Metadata.LabelImages[0].ImageContentType)
}

func TestProductInfoHelpers(t *testing.T) {
	p := sampleJob().Metadata.DeclaredProduct()
	require.NotNil(t, p)

	abv, err := p.AlcoholContentValue()
	require.NoError(t, err)
	assert.Equal(t, 40.0, abv)

	ml, err := p.NetContentsMillilitres()
	require.NoError(t, err)
	assert.Equal(t, 750.0, ml)

	assert.Equal(t, "GOVERNMENT WARNING", p.Warnings())
	assert.Equal(t, "", (&ProductInfo{}).Warnings())
}

func TestAnalysisResultComplete(t *testing.T) {
	r := &AnalysisResult{
		BrandNameFoundReasoning:      Ptr("a"),
		ProductClassFoundReasoning:   Ptr("b"),
		AlcoholContentFoundReasoning: Ptr("c"),
		NetContentsFoundReasoning:    Ptr("d"),
	}
	assert.False(t, r.Complete())
	r.HealthWarningFoundReasoning = Ptr("Not applicable - no warnings provided in the form.")
	assert.True(t, r.Complete())
}

func TestAnalysisResultHealthWarning(t *testing.T) {
	var nilResult *AnalysisResult
	assert.Equal(t, "n/a", nilResult.HealthWarning())
	assert.Equal(t, "n/a", (&AnalysisResult{}).HealthWarning())
	assert.Equal(t, "true", (&AnalysisResult{HealthWarningFound: Ptr(true)}).HealthWarning())
	assert.Equal(t, "false", (&AnalysisResult{HealthWarningFound: Ptr(false)}).HealthWarning())
}
