package advisory

import (
	"math"
	"strings"
	"testing"

	"github.com/i474232898/agro-weather/internal/forecast"
)

func cond(main, desc string, temp *float64) forecast.CurrentConditions {
	return forecast.CurrentConditions{
		Location:     "Nashik",
		TemperatureC: temp,
		Condition:    forecast.Condition{Main: main, Description: desc},
	}
}

func TestSelectPriority(t *testing.T) {
	cases := []struct {
		name string
		in   forecast.CurrentConditions
		want string
	}{
		{"thunderstorm", cond("Thunderstorm", "thunderstorm with heavy rain", forecast.Float(28)), RuleStorm},
		{"storm and rain resolves to storm", cond("Rain", "rainstorm", forecast.Float(25)), RuleStorm},
		{"rain", cond("Rain", "light rain", forecast.Float(25)), RuleRain},
		{"drizzle is not rain", cond("Drizzle", "light intensity drizzle", forecast.Float(25)), RuleNormal},
		{"rain beats cloud", cond("Clouds", "rain clouds", forecast.Float(25)), RuleRain},
		{"clouds", cond("Clouds", "overcast clouds", forecast.Float(25)), RuleCloud},
		{"clear hot", cond("Clear", "clear sky", forecast.Float(36)), RuleClearHot},
		{"clear at threshold is mild", cond("Clear", "clear sky", forecast.Float(32)), RuleClearNormal},
		{"clear just above threshold", cond("Clear", "clear sky", forecast.Float(32.1)), RuleClearHot},
		{"clear cold", cond("clear", "", forecast.Float(5)), RuleClearNormal},
		{"case insensitive", cond("", "SCATTERED CLOUDS", forecast.Float(20)), RuleCloud},
		{"mist falls through", cond("Mist", "mist", forecast.Float(20)), RuleNormal},
		{"missing temperature", cond("Thunderstorm", "", nil), RuleNormal},
		{"missing condition", cond("", "", forecast.Float(30)), RuleNormal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Select(tc.in).Name; got != tc.want {
				t.Errorf("Select() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRulesAreOrdered(t *testing.T) {
	want := []string{RuleStorm, RuleRain, RuleCloud, RuleClearHot, RuleClearNormal}
	if len(Rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(Rules), len(want))
	}
	for i, r := range Rules {
		if r.Name != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.Name, want[i])
		}
	}
}

func TestAdviseStormHasNoCropSuggestion(t *testing.T) {
	res := Advise(cond("Thunderstorm", "", forecast.Float(30)), nil, "en")
	if res.Crop != "" {
		t.Errorf("storm crop suggestion = %q, want empty", res.Crop)
	}
	if !strings.Contains(res.FieldWork, "secure equipment") || !strings.Contains(res.FieldWork, "spraying") {
		t.Errorf("unexpected storm guidance %q", res.FieldWork)
	}
}

func TestAdviseClearHot(t *testing.T) {
	res := Advise(cond("", "clear sky", forecast.Float(36)), nil, "")
	if res.Rule != RuleClearHot {
		t.Fatalf("rule = %s, want %s", res.Rule, RuleClearHot)
	}
	if !strings.Contains(res.Crop, "Heat-tolerant") {
		t.Errorf("crop = %q, want heat-tolerant suggestion", res.Crop)
	}
	if !strings.Contains(res.FieldWork, "harvesting") {
		t.Errorf("guidance = %q", res.FieldWork)
	}
}

func TestAdviseRenderedStrings(t *testing.T) {
	cases := []struct {
		in        forecast.CurrentConditions
		fieldWork string
		crop      string
	}{
		{cond("Rain", "", forecast.Float(22)), "cover stored grains", "Water-tolerant"},
		{cond("Clouds", "", forecast.Float(22)), "fertilizer", "Medium-tolerance"},
		{cond("Clear", "", forecast.Float(22)), "sowing", "Cool-season"},
		{cond("Haze", "", forecast.Float(22)), "continue regular", "Seasonal"},
	}
	for _, tc := range cases {
		res := Advise(tc.in, nil, "en")
		if !strings.Contains(res.FieldWork, tc.fieldWork) {
			t.Errorf("%s: guidance %q missing %q", tc.in.Condition.Main, res.FieldWork, tc.fieldWork)
		}
		if !strings.Contains(res.Crop, tc.crop) {
			t.Errorf("%s: crop %q missing %q", tc.in.Condition.Main, res.Crop, tc.crop)
		}
	}
}

func TestAdviseCarriesRainOutlook(t *testing.T) {
	w := &forecast.RainWindow{TotalMM: 25, Classification: forecast.ClassHeavy}
	res := Advise(cond("Clear", "", forecast.Float(30)), w, "en")
	if res.Rule != RuleClearNormal {
		t.Errorf("rain outlook must not change the rule, got %s", res.Rule)
	}
	if !strings.Contains(res.RainOutlook, "25.0") || !strings.Contains(res.RainOutlook, "Heavy") {
		t.Errorf("rain outlook = %q", res.RainOutlook)
	}

	if res := Advise(cond("Clear", "", forecast.Float(30)), nil, "en"); res.RainOutlook != "" {
		t.Errorf("rain outlook without window = %q, want empty", res.RainOutlook)
	}
}

func TestAdviseLocalized(t *testing.T) {
	res := Advise(cond("Clouds", "", forecast.Float(22)), nil, "mr")
	if !strings.Contains(res.FieldWork, "ढगाळ") {
		t.Errorf("marathi guidance = %q", res.FieldWork)
	}
	// No marathi crop strings: falls back to english.
	if !strings.Contains(res.Crop, "Medium-tolerance") {
		t.Errorf("marathi crop fallback = %q", res.Crop)
	}
}

func TestBandPrecedence(t *testing.T) {
	cases := []struct {
		temp float64
		want string
	}{
		{-5, "<10"},
		{9.9, "<10"},
		{10, "10-25"},
		{18, "10-25"},
		{22, "10-25"},
		{25, "10-25"},
		{25.5, "18-27"},
		{27, "18-27"},
		{27.1, "20-35"},
		{35, "20-35"},
		{35.1, ">35"},
		{48, ">35"},
	}
	for _, tc := range cases {
		b, ok := BandFor(tc.temp)
		if !ok {
			t.Errorf("BandFor(%v) found no band", tc.temp)
			continue
		}
		if b.Label != tc.want {
			t.Errorf("BandFor(%v) = %s, want %s", tc.temp, b.Label, tc.want)
		}
	}
}

func TestBandsCoverEveryTemperature(t *testing.T) {
	for tenths := -300; tenths <= 600; tenths++ {
		if _, ok := BandFor(float64(tenths) / 10); !ok {
			t.Fatalf("no band for %.1f", float64(tenths)/10)
		}
	}
	if _, ok := BandFor(math.NaN()); ok {
		t.Errorf("NaN should not match any band")
	}
}

func TestCropForTemperature(t *testing.T) {
	if got := CropForTemperature(nil, "en"); !strings.Contains(got, "unavailable") {
		t.Errorf("missing temperature = %q", got)
	}
	if got := CropForTemperature(forecast.Float(22), "en"); !strings.Contains(got, "wheat") {
		t.Errorf("22°C = %q, want the 10-25 band", got)
	}
	if got := CropForTemperature(forecast.Float(40), "en"); !strings.Contains(got, "Heat stress") {
		t.Errorf("40°C = %q", got)
	}
}
