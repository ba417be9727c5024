package extract

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

func TestResolveMode(t *testing.T) {
	llmMode := constants.AnalysisModeLLM
	ocrMode := constants.AnalysisModeOCR
	empty := constants.AnalysisMode("")

	tests := []struct {
		name     string
		override *constants.AnalysisMode
		stored   *constants.AnalysisMode
		def      constants.AnalysisMode
		want     constants.AnalysisMode
	}{
		{"override wins", &ocrMode, &llmMode, llmMode, ocrMode},
		{"stored over default", nil, &ocrMode, llmMode, ocrMode},
		{"default", nil, nil, ocrMode, ocrMode},
		{"empty values ignored", &empty, &empty, "", constants.DefaultAnalysisMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMode(tt.override, tt.stored, tt.def))
		})
	}
}

func TestService_Dispatch(t *testing.T) {
	p := &fakeProvider{reply: `{"brand_name":"Vision","products":[]}`}
	eng := &fakeEngine{res: ocr.Result{Success: true, FullText: "Ocr Brand\n40% ABV"}}
	svc := NewService(NewVisionExtractor(p, nil), NewOCRExtractor(eng, nil), nil)
	defer svc.Close()

	res, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeLLM)
	require.NoError(t, err)
	assert.Equal(t, "Vision", entity.Deref(res.Data.BrandName))

	res, err = svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeOCR)
	require.NoError(t, err)
	assert.Equal(t, "Ocr Brand", entity.Deref(res.Data.BrandName))

	_, err = svc.Extract(context.Background(), Image{Base64: pngB64}, "bogus")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Extract(context.Background(), Image{}, constants.AnalysisModeLLM)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestService_Cache(t *testing.T) {
	p := &fakeProvider{reply: `{"brand_name":"Vision","products":[]}`}
	svc := NewService(NewVisionExtractor(p, nil), nil, nil, WithCache(time.Minute, 16))
	defer svc.Close()

	first, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeLLM)
	require.NoError(t, err)
	first.Data.BrandName = entity.Ptr("mutated")

	second, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeLLM)
	require.NoError(t, err)
	assert.Equal(t, "Vision", entity.Deref(second.Data.BrandName))
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestService_CacheSkipsErrors(t *testing.T) {
	p := &fakeProvider{reply: "not json"}
	svc := NewService(NewVisionExtractor(p, nil), nil, nil, WithCache(time.Minute, 0))
	defer svc.Close()

	_, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeLLM)
	require.Error(t, err)
	_, err = svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeLLM)
	require.Error(t, err)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestService_OCRFailureNotCached(t *testing.T) {
	eng := &fakeEngine{res: ocr.Result{Success: false, ErrorMessage: ocr.MsgTesseractMissing, Engine: "tesseract"}}
	svc := NewService(nil, NewOCRExtractor(eng, nil), nil, WithCache(time.Minute, 16))
	defer svc.Close()

	for range 2 {
		_, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeOCR)
		assert.True(t, errors.Is(err, common.ErrProvider))
	}
	assert.Equal(t, 2, eng.calls)
}

type gatedExtractor struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedExtractor) Extract(context.Context, Image) (Result, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	<-g.release
	return Result{Data: &entity.BrandData{BrandName: entity.Ptr("Shared")}, Mode: constants.AnalysisModeOCR}, nil
}

func TestService_ConcurrentIdenticalExtractionsShareOneCall(t *testing.T) {
	g := &gatedExtractor{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(nil, nil, nil,
		WithCache(time.Minute, 16),
		WithExtractor(constants.AnalysisModeOCR, g),
	)
	defer svc.Close()

	const callers = 4
	results := make(chan Result, callers)
	var wg sync.WaitGroup
	run := func() {
		defer wg.Done()
		res, err := svc.Extract(context.Background(), Image{Base64: pngB64}, constants.AnalysisModeOCR)
		assert.NoError(t, err)
		results <- res
	}

	wg.Add(1)
	go run()
	<-g.started
	for range callers - 1 {
		wg.Add(1)
		go run()
	}
	// followers block inside the singleflight group until released
	time.Sleep(100 * time.Millisecond)
	close(g.release)
	wg.Wait()
	close(results)

	assert.EqualValues(t, 1, g.calls.Load())
	assert.EqualValues(t, callers-1, svc.SharedHits())
	for res := range results {
		assert.Equal(t, "Shared", entity.Deref(res.Data.BrandName))
	}
}
