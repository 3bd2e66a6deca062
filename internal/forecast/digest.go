package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type dayBucket struct {
	day   time.Time
	first Sample
	sum   decimal.Decimal
	n     int
}

// digest groups dated samples by calendar day. Samples missing a condition
// or a finite temperature do not contribute. The representative condition is the
// one of the chronologically first sample of the day.
func (a Aggregator) digest(now time.Time, samples []Sample) []DigestEntry {
	cal := a.Calendar
	if cal == nil {
		cal = time.UTC
	}
	maxDays := a.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	ordered := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.TemperatureC == nil || !finite(*s.TemperatureC) || s.Condition.IsZero() {
			continue
		}
		ordered = append(ordered, s)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	today := startOfDay(now, cal)

	var buckets []*dayBucket
	byDay := make(map[string]*dayBucket)
	for _, s := range ordered {
		day := startOfDay(s.Time, cal)
		if a.SkipToday && day.Equal(today) {
			continue
		}
		key := day.Format("2006-01-02")
		b, ok := byDay[key]
		if !ok {
			if len(buckets) == maxDays {
				break
			}
			b = &dayBucket{day: day, first: s}
			byDay[key] = b
			buckets = append(buckets, b)
		}
		b.sum = b.sum.Add(decimal.NewFromFloat(*s.TemperatureC))
		b.n++
	}

	entries := make([]DigestEntry, 0, len(buckets))
	for _, b := range buckets {
		mean := b.sum.Div(decimal.NewFromInt(int64(b.n))).Round(1)
		entries = append(entries, DigestEntry{
			Day:              b.day,
			MeanTemperatureC: mean.InexactFloat64(),
			Condition:        b.first.Condition,
			Samples:          b.n,
		})
	}
	return entries
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
