package constants

import "strings"

// ProductClassRule maps a phrase found on a label to its display label.
type ProductClassRule struct {
	Phrase string
	Label  string
}

// ProductClassRules is ordered most specific first; the first phrase contained in the text wins.
var ProductClassRules = []ProductClassRule{
	{"kentucky straight bourbon whiskey", "Kentucky Straight Bourbon Whiskey"},
	{"straight bourbon whiskey", "Straight Bourbon Whiskey"},
	{"bourbon whiskey", "Bourbon Whiskey"},
	{"tennessee whiskey", "Tennessee Whiskey"},
	{"scotch whisky", "Scotch Whisky"},
	{"single malt", "Single Malt Whisky"},
	{"rye whiskey", "Rye Whiskey"},
	{"irish whiskey", "Irish Whiskey"},
	{"canadian whisky", "Canadian Whisky"},
	{"whiskey", "Whiskey"},
	{"whisky", "Whisky"},
	{"bourbon", "Bourbon"},
	{"london dry gin", "London Dry Gin"},
	{"dry gin", "Dry Gin"},
	{"gin", "Gin"},
	{"vodka", "Vodka"},
	{"white rum", "White Rum"},
	{"dark rum", "Dark Rum"},
	{"spiced rum", "Spiced Rum"},
	{"rum", "Rum"},
	{"reposado tequila", "Reposado Tequila"},
	{"anejo tequila", "Anejo Tequila"},
	{"blanco tequila", "Blanco Tequila"},
	{"tequila", "Tequila"},
	{"mezcal", "Mezcal"},
	{"cognac", "Cognac"},
	{"brandy", "Brandy"},
	{"lager beer", "Lager Beer"},
	{"india pale ale", "India Pale Ale"},
	{"pale ale", "Pale Ale"},
	{"ipa", "IPA"},
	{"stout", "Stout"},
	{"porter", "Porter"},
	{"pilsner", "Pilsner"},
	{"lager", "Lager"},
	{"ale", "Ale"},
	{"beer", "Beer"},
	{"red wine", "Red Wine"},
	{"white wine", "White Wine"},
	{"rose wine", "Rose Wine"},
	{"sparkling wine", "Sparkling Wine"},
	{"champagne", "Champagne"},
	{"wine", "Wine"},
}

// productClassEquivalents lists, per base class, the phrases accepted as the same class.
var productClassEquivalents = map[string][]string{
	"beer":       {"lager beer", "lager", "ale", "pilsner"},
	"lager beer": {"beer", "lager", "pilsner"},
	"gin":        {"london gin", "london dry gin", "dry gin"},
	"london gin": {"gin", "london dry gin", "dry gin"},
	"vodka":      {"vodka"},
	"whiskey":    {"whisky", "bourbon", "rye whiskey", "scotch"},
	"whisky":     {"whiskey", "bourbon", "rye whisky", "scotch"},
	"bourbon":    {"whiskey", "whisky", "kentucky bourbon", "straight bourbon"},
	"rum":        {"rum", "dark rum", "white rum", "gold rum"},
	"tequila":    {"tequila", "mezcal"},
	"wine":       {"wine", "red wine", "white wine", "rose wine"},
}

// EquivalentProductClasses returns the lowercased declared class followed by every phrase
// related to it in either direction of the equivalents table. The relation is symmetric:
// b is in EquivalentProductClasses(a) exactly when a is in EquivalentProductClasses(b).
func EquivalentProductClasses(class string) []string {
	c := strings.ToLower(strings.TrimSpace(class))
	if c == "" {
		return nil
	}
	seen := map[string]struct{}{c: {}}
	out := []string{c}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, v := range productClassEquivalents[c] {
		add(v)
	}
	for _, base := range equivalentBases {
		for _, v := range productClassEquivalents[base] {
			if v == c {
				add(base)
				break
			}
		}
	}
	return out
}

// equivalentBases fixes the iteration order over productClassEquivalents.
var equivalentBases = []string{
	"beer", "lager beer", "gin", "london gin", "vodka",
	"whiskey", "whisky", "bourbon", "rum", "tequila", "wine",
}
