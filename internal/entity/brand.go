package entity

import (
	"strings"

	"github.com/joseph-ayodele/label-approvals/internal/units"
)

// OtherInfo carries free-text label details.
type OtherInfo struct {
	BottlerInfo  *string `json:"bottler_info"`
	Manufacturer *string `json:"manufacturer"`
	Warnings     *string `json:"warnings"`
}

// ProductInfo is one product as declared on a form or read from a label.
// AlcoholContentABV follows "<number>%" and NetContents "<number> <unit>"; values outside
// that grammar are treated as absent by the matchers.
type ProductInfo struct {
	Name              *string    `json:"name"`
	ProductClassType  *string    `json:"product_class_type"`
	AlcoholContentABV *string    `json:"alcohol_content_abv"`
	NetContents       *string    `json:"net_contents"`
	OtherInfo         *OtherInfo `json:"other_info"`
}

// BrandData is the canonical shape of label facts, declared or extracted.
type BrandData struct {
	BrandName *string       `json:"brand_name"`
	Products  []ProductInfo `json:"products"`
}

// FirstProduct returns the first product or nil.
func (b *BrandData) FirstProduct() *ProductInfo {
	if b == nil || len(b.Products) == 0 {
		return nil
	}
	return &b.Products[0]
}

// Warnings returns the declared warning text, trimmed, or "".
func (p *ProductInfo) Warnings() string {
	if p == nil || p.OtherInfo == nil || p.OtherInfo.Warnings == nil {
		return ""
	}
	return strings.TrimSpace(*p.OtherInfo.Warnings)
}

// AlcoholContentValue parses AlcoholContentABV as a percentage.
func (p *ProductInfo) AlcoholContentValue() (float64, error) {
	return units.ParseAlcoholPercentage(Deref(p.AlcoholContentABV))
}

// NetContentsMillilitres parses NetContents and converts it to millilitres.
func (p *ProductInfo) NetContentsMillilitres() (float64, error) {
	return units.ParseVolumeToMillilitres(Deref(p.NetContents))
}

// Clone returns a deep copy.
func (o *OtherInfo) Clone() *OtherInfo {
	if o == nil {
		return nil
	}
	return &OtherInfo{
		BottlerInfo:  clonePtr(o.BottlerInfo),
		Manufacturer: clonePtr(o.Manufacturer),
		Warnings:     clonePtr(o.Warnings),
	}
}

// Clone returns a deep copy.
func (p ProductInfo) Clone() ProductInfo {
	return ProductInfo{
		Name:              clonePtr(p.Name),
		ProductClassType:  clonePtr(p.ProductClassType),
		AlcoholContentABV: clonePtr(p.AlcoholContentABV),
		NetContents:       clonePtr(p.NetContents),
		OtherInfo:         p.OtherInfo.Clone(),
	}
}

// Clone returns a deep copy.
func (b *BrandData) Clone() *BrandData {
	if b == nil {
		return nil
	}
	out := &BrandData{BrandName: clonePtr(b.BrandName)}
	if b.Products != nil {
		out.Products = make([]ProductInfo, len(b.Products))
		for i, p := range b.Products {
			out.Products[i] = p.Clone()
		}
	}
	return out
}
