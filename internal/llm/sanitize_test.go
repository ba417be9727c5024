package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

func TestSanitizeBrandData(t *testing.T) {
	raw := `{
		"brand_name": " Old Tom Distillery ",
		"products": {
			"name": "Unknown",
			"product_class_type": "Kentucky Straight Bourbon Whiskey",
			"alcohol_content_abv": "45 % ABV",
			"net_contents": "1.75 L",
			"other_info": {"bottler_info": 12, "warnings": "GOVERNMENT WARNING: ..."},
			"extra": "dropped"
		},
		"notes": "dropped"
	}`
	out, dropped, err := SanitizeBrandData([]byte(raw), nil)
	require.NoError(t, err)
	assert.Contains(t, dropped, "products(wrapped)")
	require.NoError(t, BrandDataSchema.Validate(out))

	var bd entity.BrandData
	require.NoError(t, json.Unmarshal(out, &bd))
	assert.Equal(t, "Old Tom Distillery", entity.Deref(bd.BrandName))
	require.Len(t, bd.Products, 1)
	p := bd.Products[0]
	assert.Equal(t, "Unknown", entity.Deref(p.Name))
	assert.Equal(t, "45%", entity.Deref(p.AlcoholContentABV))
	assert.Equal(t, "1750 mL", entity.Deref(p.NetContents))
	assert.Equal(t, "12", entity.Deref(p.OtherInfo.BottlerInfo))
	assert.Nil(t, p.OtherInfo.Manufacturer)
}

func TestSanitizeBrandData_UnknownMeasures(t *testing.T) {
	raw := `{"brand_name":"X","products":[{"alcohol_content_abv":"Unknown","net_contents":"N/A"},{"net_contents":"12 oz","alcohol_content_abv":5}]}`
	out, dropped, err := SanitizeBrandData([]byte(raw), nil)
	require.NoError(t, err)
	assert.Contains(t, dropped, "products[0].net_contents(unparseable)")
	require.NoError(t, BrandDataSchema.Validate(out))

	var bd entity.BrandData
	require.NoError(t, json.Unmarshal(out, &bd))
	require.Len(t, bd.Products, 2)
	assert.Nil(t, bd.Products[0].AlcoholContentABV)
	assert.Nil(t, bd.Products[0].NetContents)
	assert.Equal(t, "12 fl oz", entity.Deref(bd.Products[1].NetContents))
	assert.Equal(t, "5%", entity.Deref(bd.Products[1].AlcoholContentABV))
}

func TestSanitizeBrandData_NotAnObject(t *testing.T) {
	_, _, err := SanitizeBrandData([]byte(`[1,2]`), nil)
	assert.Error(t, err)
}
