package constants

// Canonical volume unit tokens.
const (
	UnitML   = "mL"
	UnitCL   = "cL"
	UnitL    = "L"
	UnitFlOz = "fl oz"
	UnitOz   = "oz"
	UnitGal  = "gal"
)

// Millilitres per canonical unit. Bare "oz" on a beverage label means fluid ounces.
var MillilitresPerUnit = map[string]float64{
	UnitML:   1,
	UnitCL:   10,
	UnitL:    1000,
	UnitFlOz: 29.5735,
	UnitOz:   29.5735,
	UnitGal:  3785.41,
}

// UnitFamily groups the spellings a label may use for one unit.
type UnitFamily struct {
	Key        string
	Canonical  string
	Variations []string
}

// UnitFamilies is ordered so that "fl oz" is tried before "oz".
var UnitFamilies = []UnitFamily{
	{Key: "ml", Canonical: UnitML, Variations: []string{"ml", "milliliter", "millilitre", "milliliters", "millilitres"}},
	{Key: "cl", Canonical: UnitCL, Variations: []string{"cl", "centiliter", "centilitre", "centiliters", "centilitres"}},
	{Key: "fl oz", Canonical: UnitFlOz, Variations: []string{"fl oz", "fl. oz.", "fl. oz", "fluid ounce", "fluid ounces", "floz"}},
	{Key: "oz", Canonical: UnitOz, Variations: []string{"oz", "oz.", "ounce", "ounces"}},
	{Key: "l", Canonical: UnitL, Variations: []string{"l", "liter", "litre", "liters", "litres"}},
	{Key: "gal", Canonical: UnitGal, Variations: []string{"gal", "gal.", "gallon", "gallons"}},
}

// GovernmentWarning is the all-caps heading a label must carry.
const GovernmentWarning = "GOVERNMENT WARNING"

// Unknown is what the vision model writes for unreadable text fields.
const Unknown = "Unknown"
