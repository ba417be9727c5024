package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

var pngB64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

func TestOCRExtractor_Extract(t *testing.T) {
	eng := &fakeEngine{res: ocr.Result{Success: true, FullText: bourbonLabel, Engine: "fake"}}
	x := NewOCRExtractor(eng, nil)

	res, err := x.Extract(context.Background(), Image{Base64: pngB64})
	require.NoError(t, err)
	assert.Equal(t, constants.AnalysisModeOCR, res.Mode)
	assert.Equal(t, bourbonLabel, res.Text)
	assert.Equal(t, "45%", entity.Deref(res.Data.Products[0].AlcoholContentABV))
	assert.Equal(t, 1, eng.calls)
}

func TestOCRExtractor_EngineFailure(t *testing.T) {
	eng := &fakeEngine{res: ocr.Result{Success: false, ErrorMessage: ocr.MsgTesseractMissing, Engine: "tesseract"}}
	x := NewOCRExtractor(eng, nil)

	res, err := x.Extract(context.Background(), Image{Base64: pngB64})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProvider))
	assert.Contains(t, err.Error(), ocr.MsgTesseractMissing)
	assert.Nil(t, res.Data)
}

func TestOCRExtractor_BadBase64(t *testing.T) {
	eng := &fakeEngine{}
	x := NewOCRExtractor(eng, nil)

	_, err := x.Extract(context.Background(), Image{Base64: "%%%not base64%%%"})
	assert.True(t, errors.Is(err, common.ErrProvider))
	assert.Zero(t, eng.calls)
}

func TestOCRExtractor_URLOnly(t *testing.T) {
	x := NewOCRExtractor(&fakeEngine{}, nil)
	_, err := x.Extract(context.Background(), Image{URL: "https://example.com/label.png"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
