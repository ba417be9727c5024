package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandDataSchema_TypeScript(t *testing.T) {
	ts := BrandDataSchema.TypeScript()
	assert.Contains(t, ts, "export type ABV = `${number}%`;")
	assert.Contains(t, ts, "export interface ProductInfo {")
	assert.Contains(t, ts, "  alcohol_content_abv: ABV | null;")
	assert.Contains(t, ts, "  products: ProductInfo[] | null;")
	assert.Contains(t, ts, "// The brand the product is sold under")
}

func TestBrandDataSchema_Validate(t *testing.T) {
	ok := `{"brand_name":"Old Tom","products":[{"name":"Gin","product_class_type":"London Dry Gin",
		"alcohol_content_abv":"47%","net_contents":"750 mL","other_info":{"bottler_info":null,"manufacturer":null,"warnings":null}}]}`
	require.NoError(t, BrandDataSchema.Validate([]byte(ok)))

	require.NoError(t, BrandDataSchema.Validate([]byte(`{"brand_name":null,"products":null}`)))

	bad := `{"brand_name":"Old Tom","products":[{"alcohol_content_abv":"Unknown"}]}`
	assert.Error(t, BrandDataSchema.Validate([]byte(bad)))

	badVolume := `{"brand_name":"Old Tom","products":[{"net_contents":"1.75 L"}]}`
	assert.Error(t, BrandDataSchema.Validate([]byte(badVolume)))
}

func TestAnalysisResultSchema_Validate(t *testing.T) {
	ok := `{"brand_name_found":true,"brand_name_found_results_reasoning":"match",
		"product_class_found":false,"product_class_found_results_reasoning":"no",
		"alcohol_content_found":true,"alcohol_content_found_results_reasoning":"ok",
		"net_contents_found":true,"net_contents_found_results_reasoning":"ok",
		"health_warning_found":null,"health_warning_found_results_reasoning":"Not applicable"}`
	require.NoError(t, AnalysisResultSchema.Validate([]byte(ok)))

	missing := `{"brand_name_found":true}`
	assert.Error(t, AnalysisResultSchema.Validate([]byte(missing)))
}
