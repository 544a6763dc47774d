package holidays

import "strings"

// poorCoverageCountries lists ISO-3166 codes where the primary calendar
// provider is known to return incomplete or missing data. Runs for these
// countries go directly to the enhanced/AI tiers.
var poorCoverageCountries = map[string]struct{}{
	// Middle East
	"AE": {}, "BH": {}, "IL": {}, "IQ": {}, "IR": {}, "JO": {}, "KW": {},
	"LB": {}, "OM": {}, "PS": {}, "QA": {}, "SA": {}, "SY": {}, "YE": {},
	// North Africa
	"DZ": {}, "EG": {}, "LY": {}, "MA": {}, "SD": {}, "TN": {},
	// South / Southeast Asia
	"AF": {}, "BD": {}, "BT": {}, "ID": {}, "IN": {}, "KH": {}, "LA": {},
	"LK": {}, "MM": {}, "MV": {}, "MY": {}, "NP": {}, "PH": {}, "PK": {},
	"TH": {}, "VN": {},
}

// IsPoorCoverageCountry reports whether the primary provider should be skipped.
func IsPoorCoverageCountry(countryCode string) bool {
	_, ok := poorCoverageCountries[strings.ToUpper(countryCode)]
	return ok
}
