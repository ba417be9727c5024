package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/compliance"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

var pngB64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

const labelText = `OLD TOM DISTILLERY
LONDON DRY GIN
47% ALC/VOL 750ml
GOVERNMENT WARNING: (1) According to the Surgeon General, women should not drink alcoholic beverages during pregnancy.`

type fakeEngine struct{ res ocr.Result }

func (f fakeEngine) ExtractText(context.Context, media.Payload) ocr.Result { return f.res }

type fakeProvider struct {
	mediaReply string
	textReply  string
	err        error
}

func (f *fakeProvider) CompletePrompt(context.Context, string, ...llm.Option) (string, error) {
	return f.textReply, f.err
}

func (f *fakeProvider) CompletePromptWithMedia(context.Context, string, llm.Media, ...llm.Option) (string, error) {
	return f.mediaReply, f.err
}

func newJob(mode *constants.AnalysisMode, images ...entity.LabelImage) *entity.Job {
	return &entity.Job{
		ID:           uuid.New(),
		BrandName:    "Old Tom Distillery",
		ProductClass: "Gin",
		Status:       constants.JobStatusPending,
		Metadata: entity.JobMetadata{
			ReviewComments: []string{"Review initiated"},
			AnalysisMode:   mode,
			ProductInfo: &entity.BrandData{
				BrandName: entity.Ptr("Old Tom Distillery"),
				Products: []entity.ProductInfo{{
					Name:              entity.Ptr("Old Tom Distillery"),
					ProductClassType:  entity.Ptr("Gin"),
					AlcoholContentABV: entity.Ptr("47%"),
					NetContents:       entity.Ptr("750 mL"),
					OtherInfo:         &entity.OtherInfo{Warnings: entity.Ptr("GOVERNMENT WARNING")},
				}},
			},
			LabelImages: images,
		},
	}
}

func newAnalyzer(p llm.Provider, eng ocr.Engine, def constants.AnalysisMode) *Analyzer {
	x := extract.NewService(extract.NewVisionExtractor(p, nil), extract.NewOCRExtractor(eng, nil), nil)
	return NewAnalyzer(nil, x, compliance.Matchers{
		constants.AnalysisModeLLM: compliance.NewLLMMatcher(p, nil),
		constants.AnalysisModeOCR: compliance.NewOCRMatcher(nil),
	}, def)
}

func TestAnalyze_NoImages(t *testing.T) {
	a := newAnalyzer(&fakeProvider{}, fakeEngine{}, constants.AnalysisModeOCR)

	got, ok := a.Analyze(context.Background(), newJob(nil), nil)
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = a.Analyze(context.Background(), nil, nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestAnalyze_OCR(t *testing.T) {
	a := newAnalyzer(&fakeProvider{}, fakeEngine{res: ocr.Result{Success: true, FullText: labelText, Engine: "fake"}}, constants.AnalysisModeOCR)
	job := newJob(nil, entity.LabelImage{Base64: entity.Ptr(pngB64)})
	before := job.Clone()

	got, ok := a.Analyze(context.Background(), job, nil)
	require.True(t, ok)
	require.NotNil(t, got)

	img := got.Metadata.LabelImages[0]
	require.NotNil(t, img.ExtractedProductInfo)
	require.NotNil(t, img.AnalysisResult)
	assert.True(t, img.AnalysisResult.BrandNameFound)
	assert.True(t, img.AnalysisResult.ProductClassFound)
	assert.True(t, img.AnalysisResult.AlcoholContentFound)
	assert.True(t, img.AnalysisResult.NetContentsFound)
	require.NotNil(t, img.AnalysisResult.HealthWarningFound)
	assert.True(t, *img.AnalysisResult.HealthWarningFound)
	assert.True(t, img.AnalysisResult.Complete())

	assert.Equal(t, before, job, "input job must not change")
	assert.Nil(t, job.Metadata.LabelImages[0].AnalysisResult)
}

func TestAnalyze_ModePrecedence(t *testing.T) {
	p := &fakeProvider{
		mediaReply: `{"brand_name":"Old Tom Distillery","products":[{"name":"Old Tom Distillery","product_class_type":"London Dry Gin","alcohol_content_abv":"47%","net_contents":"750 mL","other_info":null}]}`,
		textReply: `{"brand_name_found":true,"brand_name_found_results_reasoning":"same",
"product_class_found":true,"product_class_found_results_reasoning":"gin",
"alcohol_content_found":true,"alcohol_content_found_results_reasoning":"47",
"net_contents_found":true,"net_contents_found_results_reasoning":"750",
"health_warning_found":false,"health_warning_found_results_reasoning":"missing"}`,
	}
	eng := fakeEngine{res: ocr.Result{Success: true, FullText: "nothing useful", Engine: "fake"}}
	a := newAnalyzer(p, eng, constants.AnalysisModeOCR)

	stored := constants.AnalysisModeLLM
	job := newJob(&stored, entity.LabelImage{Base64: entity.Ptr(pngB64)})

	got, ok := a.Analyze(context.Background(), job, nil)
	require.True(t, ok)
	res := got.Metadata.LabelImages[0].AnalysisResult
	assert.True(t, res.BrandNameFound, "stored llm mode should be used")
	assert.Equal(t, "London Dry Gin", entity.Deref(got.Metadata.LabelImages[0].ExtractedProductInfo.Products[0].ProductClassType))

	override := constants.AnalysisModeOCR
	got, ok = a.Analyze(context.Background(), job, &override)
	require.True(t, ok)
	assert.False(t, got.Metadata.LabelImages[0].AnalysisResult.BrandNameFound, "override should force ocr")
	assert.Equal(t, &stored, got.Metadata.AnalysisMode)
}

func TestAnalyze_FailuresReturnNothing(t *testing.T) {
	llmMode := constants.AnalysisModeLLM
	before := testutil.ToFloat64(analysisRuns.WithLabelValues(string(llmMode), outcomeFailed))

	t.Run("provider error", func(t *testing.T) {
		p := &fakeProvider{err: &llm.ProviderError{Provider: "openai", Status: 500, Err: errors.New("boom")}}
		a := newAnalyzer(p, fakeEngine{}, llmMode)
		got, ok := a.Analyze(context.Background(), newJob(nil, entity.LabelImage{Base64: entity.Ptr(pngB64)}), nil)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("unparseable reply", func(t *testing.T) {
		a := newAnalyzer(&fakeProvider{mediaReply: "I could not read the label."}, fakeEngine{}, llmMode)
		got, ok := a.Analyze(context.Background(), newJob(nil, entity.LabelImage{Base64: entity.Ptr(pngB64)}), nil)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("image without data", func(t *testing.T) {
		a := newAnalyzer(&fakeProvider{}, fakeEngine{}, llmMode)
		got, ok := a.Analyze(context.Background(), newJob(nil, entity.LabelImage{}), nil)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	assert.Equal(t, before+3, testutil.ToFloat64(analysisRuns.WithLabelValues(string(llmMode), outcomeFailed)))
}

func TestAnalyze_UnknownMatcher(t *testing.T) {
	x := extract.NewService(nil, extract.NewOCRExtractor(fakeEngine{res: ocr.Result{Success: true, FullText: labelText}}, nil), nil)
	a := NewAnalyzer(nil, x, compliance.Matchers{}, constants.AnalysisModeOCR)
	got, ok := a.Analyze(context.Background(), newJob(nil, entity.LabelImage{Base64: entity.Ptr(pngB64)}), nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestProviderOf(t *testing.T) {
	assert.Equal(t, "openai", providerOf(&llm.ProviderError{Provider: "openai"}, constants.AnalysisModeOCR))
	assert.Equal(t, "tesseract", providerOf(&ocr.ProviderError{Provider: "tesseract"}, constants.AnalysisModeLLM))
	assert.Equal(t, "tesseract", providerOf(errors.New("x"), constants.AnalysisModeOCR))
	assert.Equal(t, "openai", providerOf(errors.New("x"), constants.AnalysisModeLLM))
}

func TestAnalyze_OCRFailureReturnsNothing(t *testing.T) {
	mode := constants.AnalysisModeOCR
	before := testutil.ToFloat64(analysisRuns.WithLabelValues(string(mode), outcomeFailed))

	eng := fakeEngine{res: ocr.Result{Success: false, ErrorMessage: ocr.MsgTesseractMissing, Engine: "tesseract"}}
	a := newAnalyzer(&fakeProvider{}, eng, mode)
	got, ok := a.Analyze(context.Background(), newJob(nil, entity.LabelImage{Base64: entity.Ptr(pngB64)}), nil)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, before+1, testutil.ToFloat64(analysisRuns.WithLabelValues(string(mode), outcomeFailed)))
}
