package forecast

import (
	"strings"
	"time"
)

// Condition is the provider's categorical sky condition: a short tag such as
// "Rain" or "Clouds" plus a free-text description.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// IsZero reports whether the condition was missing from the source data.
func (c Condition) IsZero() bool {
	return strings.TrimSpace(c.Main) == "" && strings.TrimSpace(c.Description) == ""
}

// Text returns the tag and description joined for substring matching.
func (c Condition) Text() string {
	return strings.TrimSpace(c.Main + " " + c.Description)
}

// Sample is one provider-supplied forecast observation.
// A zero Time marks a sample whose timestamp could not be read.
type Sample struct {
	Time         time.Time `json:"timestamp"`
	PrecipMM     float64   `json:"precipitationMm"`
	Condition    Condition `json:"condition"`
	TemperatureC *float64  `json:"temperatureC,omitempty"`
}

// CurrentConditions is the "now" snapshot used by the advisory engine.
type CurrentConditions struct {
	Location     string    `json:"location"`
	TemperatureC *float64  `json:"temperatureC,omitempty"`
	Condition    Condition `json:"condition"`
}

// Classification is the rainfall risk category of a window.
type Classification string

const (
	ClassNone     Classification = "none"
	ClassModerate Classification = "moderate"
	ClassHeavy    Classification = "heavy"
)

// Horizon identifies which of the two rain windows a value belongs to.
type Horizon string

const (
	HorizonNext24h  Horizon = "next24h"
	HorizonTomorrow Horizon = "24h-48h"
)

// RainWindow is the aggregated rainfall for one window. Start is exclusive
// and End inclusive.
type RainWindow struct {
	Horizon        Horizon        `json:"horizon"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	TotalMM        float64        `json:"totalMm"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
}

// DigestEntry summarizes one calendar day of samples.
type DigestEntry struct {
	Day              time.Time `json:"day"`
	MeanTemperatureC float64   `json:"meanTemperatureC"`
	Condition        Condition `json:"condition"`
	Samples          int       `json:"samples"`
}

// Summary is the output of one aggregation call.
type Summary struct {
	Next24h  RainWindow    `json:"next24h"`
	Tomorrow RainWindow    `json:"tomorrow"`
	Digest   []DigestEntry `json:"digest"`
	Skipped  int           `json:"skipped"`
}

// Float returns a pointer to v, for building samples with a temperature.
func Float(v float64) *float64 {
	return &v
}
