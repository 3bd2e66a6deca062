package advisory

import (
	"github.com/i474232898/agro-weather/internal/i18n"
)

// Band maps a temperature range to a crop suitability message.
type Band struct {
	Label string
	Match func(t float64) bool
	Key   string
}

func between(lo, hi float64) func(float64) bool {
	return func(t float64) bool { return t >= lo && t <= hi }
}

// Bands overlap; the first band containing the temperature wins, so 22°C
// resolves to 10–25 and 18–27 is only reached between 25 and 27°C.
var Bands = []Band{
	{Label: "<10", Match: func(t float64) bool { return t < 10 }, Key: i18n.BandCold},
	{Label: "10-25", Match: between(10, 25), Key: i18n.BandCool},
	{Label: "18-27", Match: between(18, 27), Key: i18n.BandMild},
	{Label: "20-35", Match: between(20, 35), Key: i18n.BandWarm},
	{Label: ">35", Match: func(t float64) bool { return t > 35 }, Key: i18n.BandHot},
}

// BandFor returns the first band containing t.
func BandFor(t float64) (Band, bool) {
	for _, b := range Bands {
		if b.Match(t) {
			return b, true
		}
	}
	return Band{}, false
}

// CropForTemperature maps a temperature to a localized suitability string.
func CropForTemperature(t *float64, lang string) string {
	p := i18n.Printer(lang)
	if t == nil {
		return p.Sprintf(i18n.BandUnknown)
	}
	b, ok := BandFor(*t)
	if !ok {
		return p.Sprintf(i18n.BandUnknown)
	}
	return p.Sprintf(b.Key)
}
