package mapping

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ISO-3166 alpha-2 lookup tables, built once from the CLDR region data.
var (
	countryNameByCode = map[string]string{}
	countryCodeByName = map[string]string{}
)

func init() {
	namer := display.English.Regions()
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			region, err := language.ParseRegion(string(a) + string(b))
			if err != nil || !region.IsCountry() {
				continue
			}
			code := region.String()
			if len(code) != 2 {
				continue
			}
			name := namer.Name(region)
			if name == "" {
				continue
			}
			countryNameByCode[code] = name
			countryCodeByName[name] = code
		}
	}
}
