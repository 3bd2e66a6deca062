// Package advisory derives farming guidance from the current conditions.
//
// Guidance is chosen by an ordered decision list: the first rule whose
// predicate matches wins. Inputs missing a condition or a temperature fall
// through to the neutral rule.
package advisory

import (
	"github.com/i474232898/agro-weather/internal/common"
	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/i18n"
)

// HotThresholdC splits clear-sky advice into hot and mild branches.
const HotThresholdC = 32

// Rule names.
const (
	RuleStorm       = "storm"
	RuleRain        = "rain"
	RuleCloud       = "cloud"
	RuleClearHot    = "clear-hot"
	RuleClearNormal = "clear-normal"
	RuleNormal      = "normal"
)

// Input is what the rules are evaluated against.
type Input struct {
	Text         string
	TemperatureC float64
}

// Rule pairs a predicate with the message keys it produces. An empty Crop
// key means no crop should be suggested.
type Rule struct {
	Name      string
	Match     func(Input) bool
	FieldWork string
	Crop      string
}

// Rules is the decision list in priority order.
var Rules = []Rule{
	{
		Name:      RuleStorm,
		Match:     func(in Input) bool { return common.HasAny(in.Text, "storm", "thunder") },
		FieldWork: i18n.AdviceStorm,
	},
	{
		Name:      RuleRain,
		Match:     func(in Input) bool { return common.HasAny(in.Text, "rain") },
		FieldWork: i18n.AdviceRain,
		Crop:      i18n.CropWaterTolerant,
	},
	{
		Name:      RuleCloud,
		Match:     func(in Input) bool { return common.HasAny(in.Text, "cloud") },
		FieldWork: i18n.AdviceCloud,
		Crop:      i18n.CropMedium,
	},
	{
		Name: RuleClearHot,
		Match: func(in Input) bool {
			return common.HasAny(in.Text, "clear") && in.TemperatureC > HotThresholdC
		},
		FieldWork: i18n.AdviceClearHot,
		Crop:      i18n.CropHeatTolerant,
	},
	{
		Name:      RuleClearNormal,
		Match:     func(in Input) bool { return common.HasAny(in.Text, "clear") },
		FieldWork: i18n.AdviceClearNormal,
		Crop:      i18n.CropCoolSeason,
	},
}

var neutral = Rule{
	Name:      RuleNormal,
	FieldWork: i18n.AdviceNormal,
	Crop:      i18n.CropGeneric,
}

// Result is the advisory for one current-conditions snapshot.
type Result struct {
	Rule        string `json:"rule"`
	FieldWork   string `json:"fieldWorkGuidance"`
	Crop        string `json:"cropSuggestion"`
	RainOutlook string `json:"rainOutlook,omitempty"`
}

// Select returns the first rule matching cur, or the neutral rule.
func Select(cur forecast.CurrentConditions) Rule {
	if cur.TemperatureC == nil || cur.Condition.IsZero() {
		return neutral
	}
	in := Input{Text: cur.Condition.Text(), TemperatureC: *cur.TemperatureC}
	for _, r := range Rules {
		if r.Match(in) {
			return r
		}
	}
	return neutral
}

// Advise evaluates the rules for cur and renders the result in lang. When
// next24h is non-nil its message is carried as the rain outlook; it does not
// change which rule is selected.
func Advise(cur forecast.CurrentConditions, next24h *forecast.RainWindow, lang string) Result {
	r := Select(cur)
	p := i18n.Printer(lang)

	res := Result{
		Rule:      r.Name,
		FieldWork: p.Sprintf(r.FieldWork),
	}
	if r.Crop != "" {
		res.Crop = p.Sprintf(r.Crop)
	}
	if next24h != nil {
		res.RainOutlook = forecast.WindowMessage(lang, forecast.HorizonNext24h, next24h.Classification, next24h.TotalMM)
	}
	return res
}
