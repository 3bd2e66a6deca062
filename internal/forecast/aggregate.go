// Package forecast turns an ordered list of provider forecast samples into
// rainfall risk windows and a per-day digest. Everything here is pure: the
// reference instant is always passed in by the caller.
package forecast

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"

	"github.com/i474232898/agro-weather/internal/common"
	"github.com/i474232898/agro-weather/internal/i18n"
)

const (
	windowSpan = 24 * time.Hour

	// ThunderBiasMM is added to a window once per thunder-tagged sample.
	ThunderBiasMM = 5

	// Classification thresholds on the rounded window total, in mm.
	ModerateThresholdMM = 2
	HeavyThresholdMM    = 20

	// DefaultMaxDays caps the digest length.
	DefaultMaxDays = 5
)

var (
	thunderTokens = []string{"thunder"}

	moderateThreshold = decimal.NewFromInt(ModerateThresholdMM)
	heavyThreshold    = decimal.NewFromInt(HeavyThresholdMM)
	thunderBias       = decimal.NewFromInt(ThunderBiasMM)
)

// Aggregator holds the presentation conventions for an aggregation. The
// zero value uses UTC days, five digest entries and English messages.
type Aggregator struct {
	// Calendar is the location whose calendar days group the digest.
	Calendar *time.Location
	// MaxDays caps the digest; values <= 0 mean DefaultMaxDays.
	MaxDays int
	// SkipToday drops the calendar day containing now from the digest.
	SkipToday bool
	// Lang selects the message language (Accept-Language syntax).
	Lang string
}

// Aggregate runs the zero-value Aggregator.
func Aggregate(now time.Time, samples []Sample) Summary {
	return Aggregator{}.Aggregate(now, samples)
}

// Aggregate scans samples once and builds both rain windows and the digest.
// Samples with a zero timestamp or a non-finite precipitation are skipped
// and counted in Summary.Skipped.
func (a Aggregator) Aggregate(now time.Time, samples []Sample) Summary {
	first := now.Add(windowSpan)
	second := now.Add(2 * windowSpan)

	var (
		next24h, tomorrow decimal.Decimal
		skipped           int
		dated             = make([]Sample, 0, len(samples))
	)

	for _, s := range samples {
		if s.Time.IsZero() || !finite(s.PrecipMM) {
			skipped++
			continue
		}
		dated = append(dated, s)

		var total *decimal.Decimal
		switch {
		case s.Time.After(now) && !s.Time.After(first):
			total = &next24h
		case s.Time.After(first) && !s.Time.After(second):
			total = &tomorrow
		default:
			continue
		}

		if s.PrecipMM > 0 {
			*total = total.Add(decimal.NewFromFloat(s.PrecipMM))
		}
		if common.HasAny(s.Condition.Text(), thunderTokens...) {
			*total = total.Add(thunderBias)
		}
	}

	p := i18n.Printer(a.Lang)
	return Summary{
		Next24h:  newWindow(p, HorizonNext24h, now, first, next24h),
		Tomorrow: newWindow(p, HorizonTomorrow, first, second, tomorrow),
		Digest:   a.digest(now, dated),
		Skipped:  skipped,
	}
}

func newWindow(p *message.Printer, h Horizon, start, end time.Time, total decimal.Decimal) RainWindow {
	rounded := total.Round(1)
	class := classify(rounded)
	mm := rounded.InexactFloat64()
	return RainWindow{
		Horizon:        h,
		Start:          start,
		End:            end,
		TotalMM:        mm,
		Classification: class,
		Message:        p.Sprintf(messageKey(h, class), mm),
	}
}

// Classify maps a window total in mm to its rainfall class. The total is
// rounded to one decimal place first. Non-finite totals are ClassNone.
func Classify(totalMM float64) Classification {
	if !finite(totalMM) {
		return ClassNone
	}
	return classify(decimal.NewFromFloat(totalMM).Round(1))
}

func classify(total decimal.Decimal) Classification {
	switch {
	case total.GreaterThanOrEqual(heavyThreshold):
		return ClassHeavy
	case total.GreaterThanOrEqual(moderateThreshold):
		return ClassModerate
	default:
		return ClassNone
	}
}

// Round rounds v to one decimal place, half away from zero. NaN and
// infinities are returned unchanged.
func Round(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// WindowMessage renders the localized message for a window classification.
func WindowMessage(lang string, h Horizon, class Classification, totalMM float64) string {
	return i18n.Printer(lang).Sprintf(messageKey(h, class), totalMM)
}

func messageKey(h Horizon, class Classification) string {
	if h == HorizonTomorrow {
		switch class {
		case ClassHeavy:
			return i18n.RainTomorrowHeavy
		case ClassModerate:
			return i18n.RainTomorrowModerate
		default:
			return i18n.RainTomorrowNone
		}
	}
	switch class {
	case ClassHeavy:
		return i18n.RainNext24hHeavy
	case ClassModerate:
		return i18n.RainNext24hModerate
	default:
		return i18n.RainNext24hNone
	}
}
