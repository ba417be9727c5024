package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/units"
)

var (
	brandTextFields = []string{"brand_name"}
	productText     = []string{"name", "product_class_type"}
	otherInfoText   = []string{"bottler_info", "manufacturer", "warnings"}
)

// SanitizeBrandData repairs a vision-model reply so it fits BrandDataSchema:
//   - a single product object is wrapped into a one-element list
//   - numbers in text fields become strings; other non-strings become null
//   - ABV and net contents are rewritten to "<n>%" and "<n> <unit>", or null when
//     they cannot be parsed ("Unknown", "N/A", ...)
//   - unknown keys are removed
//
// Text fields that read "Unknown" are kept as-is; the matchers treat them as absent.
func SanitizeBrandData(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	out := map[string]any{}
	for _, k := range brandTextFields {
		out[k] = textValue(m[k], k, &dropped)
	}

	var items []any
	switch p := m["products"].(type) {
	case []any:
		items = p
	case map[string]any:
		items = []any{p}
		dropped = append(dropped, "products(wrapped)")
	case nil:
	default:
		dropped = append(dropped, "products(type)")
	}

	if items != nil {
		products := make([]any, 0, len(items))
		for i, it := range items {
			pm, ok := it.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("products[%d](type)", i))
				continue
			}
			products = append(products, sanitizeProduct(pm, fmt.Sprintf("products[%d].", i), &dropped))
		}
		out["products"] = products
	} else {
		out["products"] = nil
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func sanitizeProduct(pm map[string]any, prefix string, dropped *[]string) map[string]any {
	out := map[string]any{}
	for _, k := range productText {
		out[k] = textValue(pm[k], prefix+k, dropped)
	}
	out["alcohol_content_abv"] = abvValue(pm["alcohol_content_abv"], prefix+"alcohol_content_abv", dropped)
	out["net_contents"] = volumeValue(pm["net_contents"], prefix+"net_contents", dropped)

	switch oi := pm["other_info"].(type) {
	case map[string]any:
		info := map[string]any{}
		for _, k := range otherInfoText {
			info[k] = textValue(oi[k], prefix+"other_info."+k, dropped)
		}
		out["other_info"] = info
	case nil:
		out["other_info"] = nil
	default:
		*dropped = append(*dropped, prefix+"other_info(type)")
		out["other_info"] = nil
	}
	return out
}

func textValue(v any, key string, dropped *[]string) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		*dropped = append(*dropped, key+"(type)")
		return nil
	}
}

func abvValue(v any, key string, dropped *[]string) any {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64) + "%"
	case string:
		s = strings.TrimSpace(t)
	default:
		*dropped = append(*dropped, key+"(type)")
		return nil
	}
	if s == "" || strings.EqualFold(s, constants.Unknown) {
		return nil
	}
	pct, err := units.ParseAlcoholPercentage(s)
	if err != nil {
		*dropped = append(*dropped, key+"(unparseable)")
		return nil
	}
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func volumeValue(v any, key string, dropped *[]string) any {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		s = strings.TrimSpace(t)
	default:
		*dropped = append(*dropped, key+"(type)")
		return nil
	}
	if s == "" || strings.EqualFold(s, constants.Unknown) {
		return nil
	}
	vol, err := units.ParseVolume(units.NormalizeNetContents(s))
	if err != nil {
		*dropped = append(*dropped, key+"(unparseable)")
		return nil
	}
	return canonicalVolume(vol)
}

// canonicalVolume renders a volume in one of the units the schema allows.
func canonicalVolume(v units.Volume) string {
	switch v.Unit {
	case constants.UnitL:
		ml := math.Round(v.Millilitres()*100) / 100
		return strconv.FormatFloat(ml, 'f', -1, 64) + " " + constants.UnitML
	case constants.UnitOz:
		return v.ValueText + " " + constants.UnitFlOz
	}
	return v.String()
}
