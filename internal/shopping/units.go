package shopping

import "strings"

// Unit is a normalized unit tag. The set is closed: every parsed quantity
// carries one of the constants below.
type Unit string

const (
	// Weight units
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
	UnitOunce    Unit = "oz"
	UnitPound    Unit = "lb"

	// Volume units
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitFluidOunce Unit = "fl oz"

	// Count units
	UnitPiece   Unit = "piece"
	UnitCan     Unit = "can"
	UnitPackage Unit = "package"
	UnitBunch   Unit = "bunch"
	UnitClove   Unit = "clove"
	UnitHead    Unit = "head"

	// UnitToTaste marks non-numeric amounts such as "to taste" or "as needed".
	UnitToTaste Unit = "to taste"
)

// label returns the display form of the unit for a quantity of n.
// Abbreviations never change; words are pluralised when n != 1.
func (u Unit) label(n float64) string {
	plural := n != 1
	switch u {
	case UnitCup, UnitCan, UnitPackage, UnitClove, UnitHead:
		if plural {
			return string(u) + "s"
		}
	case UnitBunch:
		if plural {
			return "bunches"
		}
	}
	return string(u)
}

// unitSynonyms maps a single lower-case token to its unit.
var unitSynonyms = map[string]Unit{
	"g": UnitGram, "gr": UnitGram, "gram": UnitGram, "grams": UnitGram, "gramme": UnitGram, "grammes": UnitGram,
	"kg": UnitKilogram, "kgs": UnitKilogram, "kilo": UnitKilogram, "kilos": UnitKilogram, "kilogram": UnitKilogram, "kilograms": UnitKilogram,
	"oz": UnitOunce, "ounce": UnitOunce, "ounces": UnitOunce,
	"lb": UnitPound, "lbs": UnitPound, "pound": UnitPound, "pounds": UnitPound,

	"ml": UnitMilliliter, "milliliter": UnitMilliliter, "milliliters": UnitMilliliter, "millilitre": UnitMilliliter, "millilitres": UnitMilliliter,
	"l": UnitLiter, "liter": UnitLiter, "liters": UnitLiter, "litre": UnitLiter, "litres": UnitLiter,
	"cup": UnitCup, "cups": UnitCup,
	"tbsp": UnitTablespoon, "tbsps": UnitTablespoon, "tbs": UnitTablespoon, "tbl": UnitTablespoon, "tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon,
	"tsp": UnitTeaspoon, "tsps": UnitTeaspoon, "teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon,
	"floz": UnitFluidOunce,

	"piece": UnitPiece, "pieces": UnitPiece, "pc": UnitPiece, "pcs": UnitPiece, "whole": UnitPiece,
	"large": UnitPiece, "medium": UnitPiece, "small": UnitPiece,
	"can": UnitCan, "cans": UnitCan, "tin": UnitCan, "tins": UnitCan,
	"package": UnitPackage, "packages": UnitPackage, "pkg": UnitPackage, "pack": UnitPackage, "packs": UnitPackage, "packet": UnitPackage, "packets": UnitPackage,
	"bunch": UnitBunch, "bunches": UnitBunch,
	"clove": UnitClove, "cloves": UnitClove,
	"head": UnitHead, "heads": UnitHead,
}

// unitPairs maps two adjacent tokens to a unit. Pairs are checked before
// single tokens so that "fl oz" is not read as plain ounces.
var unitPairs = map[[2]string]Unit{
	{"fl", "oz"}:        UnitFluidOunce,
	{"fluid", "oz"}:     UnitFluidOunce,
	{"fluid", "ounce"}:  UnitFluidOunce,
	{"fluid", "ounces"}: UnitFluidOunce,
}

// lookupUnit scans the words of rest in order and returns the first unit
// found. One-letter units ("g", "l") only count as the whole first word, so
// "100g" and "1 l" match while "e.g." and "l'oignon" do not.
func lookupUnit(rest string) (Unit, bool) {
	tokens := tokenize(rest)
	lead := ""
	if fields := strings.Fields(rest); len(fields) > 0 {
		lead = strings.TrimRight(fields[0], ".,;:)")
	}

	for i, tok := range tokens {
		if i+1 < len(tokens) {
			if u, ok := unitPairs[[2]string{tok, tokens[i+1]}]; ok {
				return u, true
			}
		}
		u, ok := unitSynonyms[tok]
		if !ok {
			continue
		}
		if len(tok) == 1 && (i != 0 || lead != tok) {
			continue
		}
		return u, true
	}
	return "", false
}
