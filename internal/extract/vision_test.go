package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
)

func TestVisionExtractor_FencedReply(t *testing.T) {
	reply := "Sure! Here is what I read from the label:\n```json\n" +
		`{"brand_name":"Old Tom Distillery","products":[{"name":"Old Tom","product_class_type":"Gin",` +
		`"alcohol_content_abv":"47%","net_contents":"750 mL","other_info":{"bottler_info":null,"manufacturer":null,"warnings":"GOVERNMENT WARNING: ..."}}]}` +
		"\n```\nLet me know if you need anything else."
	p := &fakeProvider{reply: reply}
	x := NewVisionExtractor(p, nil)

	res, err := x.Extract(context.Background(), Image{Base64: pngB64})
	require.NoError(t, err)
	assert.Equal(t, constants.AnalysisModeLLM, res.Mode)
	assert.Equal(t, "Old Tom Distillery", entity.Deref(res.Data.BrandName))
	require.Len(t, res.Data.Products, 1)
	assert.Equal(t, "47%", entity.Deref(res.Data.Products[0].AlcoholContentABV))
	assert.Equal(t, pngB64, p.media.Base64)
}

func TestVisionExtractor_UsesURL(t *testing.T) {
	p := &fakeProvider{reply: `{"brand_name":"X","products":[]}`}
	x := NewVisionExtractor(p, nil)

	_, err := x.Extract(context.Background(), Image{URL: "https://example.com/l.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/l.png", p.media.URL)
	assert.Empty(t, p.media.Base64)
}

func TestVisionExtractor_LenientReply(t *testing.T) {
	p := &fakeProvider{reply: `{"brand_name":"Unknown","products":[{"alcohol_content_abv":"Unknown","net_contents":"1 Liter"}]}`}
	res, err := NewVisionExtractor(p, nil).Extract(context.Background(), Image{Base64: pngB64})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", entity.Deref(res.Data.BrandName))
	assert.Nil(t, res.Data.Products[0].AlcoholContentABV)
	assert.Equal(t, "1000 mL", entity.Deref(res.Data.Products[0].NetContents))
}

func TestVisionExtractor_ParseError(t *testing.T) {
	p := &fakeProvider{reply: "I'm sorry, I can't read this image."}
	_, err := NewVisionExtractor(p, nil).Extract(context.Background(), Image{Base64: pngB64})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrParse))

	var pe *llm.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, p.reply, pe.Raw)
}

func TestVisionExtractor_ProviderError(t *testing.T) {
	p := &fakeProvider{err: &llm.ProviderError{Provider: "openai", Status: 500, Err: errors.New("boom")}}
	_, err := NewVisionExtractor(p, nil).Extract(context.Background(), Image{Base64: pngB64})
	assert.True(t, errors.Is(err, common.ErrProvider))
}
