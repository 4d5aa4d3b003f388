package location

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCountry is appended to unknown cities when no country is configured.
const DefaultCountry = "IN"

// Location is a normalized lookup target.
type Location struct {
	Key     string // lowercase city name, used for table lookups
	City    string // display name
	Country string // ISO 3166 alpha-2 code
}

// Query returns the canonical "City,CC" form.
func (l Location) Query() string {
	return l.City + "," + l.Country
}

var known = map[string]Location{
	"mumbai":     {Key: "mumbai", City: "Mumbai", Country: "IN"},
	"bombay":     {Key: "mumbai", City: "Mumbai", Country: "IN"},
	"delhi":      {Key: "delhi", City: "Delhi", Country: "IN"},
	"new delhi":  {Key: "delhi", City: "Delhi", Country: "IN"},
	"bangalore":  {Key: "bangalore", City: "Bangalore", Country: "IN"},
	"bengaluru":  {Key: "bangalore", City: "Bangalore", Country: "IN"},
	"chennai":    {Key: "chennai", City: "Chennai", Country: "IN"},
	"kolkata":    {Key: "kolkata", City: "Kolkata", Country: "IN"},
	"hyderabad":  {Key: "hyderabad", City: "Hyderabad", Country: "IN"},
	"pune":       {Key: "pune", City: "Pune", Country: "IN"},
	"ahmedabad":  {Key: "ahmedabad", City: "Ahmedabad", Country: "IN"},
	"jaipur":     {Key: "jaipur", City: "Jaipur", Country: "IN"},
	"lucknow":    {Key: "lucknow", City: "Lucknow", Country: "IN"},
	"nagpur":     {Key: "nagpur", City: "Nagpur", Country: "IN"},
	"indore":     {Key: "indore", City: "Indore", Country: "IN"},
	"bhopal":     {Key: "bhopal", City: "Bhopal", Country: "IN"},
	"patna":      {Key: "patna", City: "Patna", Country: "IN"},
	"chandigarh": {Key: "chandigarh", City: "Chandigarh", Country: "IN"},
	"ludhiana":   {Key: "ludhiana", City: "Ludhiana", Country: "IN"},
	"amritsar":   {Key: "amritsar", City: "Amritsar", Country: "IN"},
	"nashik":     {Key: "nashik", City: "Nashik", Country: "IN"},
	"coimbatore": {Key: "coimbatore", City: "Coimbatore", Country: "IN"},
}

// Normalize lowercases and trims input, then resolves it through the static city
// table. Unknown cities are title-cased and given defaultCountry, unless the input
// already carries a ",CC" suffix.
func Normalize(input, defaultCountry string) Location {
	key := strings.ToLower(strings.TrimSpace(input))
	if loc, ok := known[key]; ok {
		return loc
	}
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	country := strings.ToUpper(defaultCountry)
	if i := strings.LastIndex(key, ","); i >= 0 {
		if cc := strings.TrimSpace(key[i+1:]); cc != "" {
			country = strings.ToUpper(cc)
		}
		key = strings.TrimSpace(key[:i])
		if loc, ok := known[key]; ok && loc.Country == country {
			return loc
		}
	}
	return Location{
		Key:     key,
		City:    cases.Title(language.English).String(key), // Caser is stateful; not shared
		Country: country,
	}
}
