package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNotASequence is returned when the payload is not a JSON array.
var ErrNotASequence = errors.New("forecast samples must be a JSON array")

// rawSample accepts both the flat sample format and the OpenWeatherMap
// 5 day / 3 hour list item format.
type rawSample struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Dt        json.RawMessage `json:"dt"`

	PrecipMM json.RawMessage `json:"precipitationMm"`
	Rain     json.RawMessage `json:"rain"`

	Condition json.RawMessage `json:"condition"`
	Weather   []Condition     `json:"weather"`

	TemperatureC json.RawMessage `json:"temperatureC"`
	Main         struct {
		Temp json.RawMessage `json:"temp"`
	} `json:"main"`
}

// DecodeSamples parses a JSON array of samples. Individual samples with an
// unreadable timestamp or a non-numeric precipitation are dropped and counted
// in skipped; a missing condition or temperature is kept as missing.
func DecodeSamples(data []byte) (samples []Sample, skipped int, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotASequence, err)
	}

	samples = make([]Sample, 0, len(items))
	for _, item := range items {
		s, ok := decodeSample(item)
		if !ok {
			skipped++
			continue
		}
		samples = append(samples, s)
	}
	return samples, skipped, nil
}

func decodeSample(item json.RawMessage) (Sample, bool) {
	var raw rawSample
	if err := json.Unmarshal(item, &raw); err != nil {
		return Sample{}, false
	}

	tsField := raw.Timestamp
	if isAbsent(tsField) {
		tsField = raw.Dt
	}
	ts, ok := parseTimestamp(tsField)
	if !ok {
		return Sample{}, false
	}

	precip, ok := parsePrecip(raw)
	if !ok {
		return Sample{}, false
	}

	s := Sample{
		Time:      ts,
		PrecipMM:  precip,
		Condition: parseCondition(raw),
	}

	temp := raw.TemperatureC
	if isAbsent(temp) {
		temp = raw.Main.Temp
	}
	if v, ok := parseNumber(temp); ok {
		s.TemperatureC = &v
	}
	return s, true
}

// maxFloatSeconds bounds fractional epoch timestamps to the exactly
// representable integer range of a float64.
const maxFloatSeconds = 1 << 53

func parseTimestamp(field json.RawMessage) (time.Time, bool) {
	if isAbsent(field) {
		return time.Time{}, false
	}
	var n json.Number
	if err := json.Unmarshal(field, &n); err == nil {
		secs, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || !finite(f) || math.Abs(f) > maxFloatSeconds {
				return time.Time{}, false
			}
			secs = int64(f)
		}
		return time.Unix(secs, 0).UTC(), true
	}
	var str string
	if err := json.Unmarshal(field, &str); err != nil {
		return time.Time{}, false
	}
	str = strings.TrimSpace(str)
	if secs, err := strconv.ParseInt(str, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePrecip reads precipitationMm, falling back to rain.3h then rain.1h.
// Absence means zero; a present but non-numeric value is malformed.
func parsePrecip(raw rawSample) (float64, bool) {
	if !isAbsent(raw.PrecipMM) {
		v, ok := parseNumber(raw.PrecipMM)
		return v, ok
	}
	if isAbsent(raw.Rain) {
		return 0, true
	}
	var rain map[string]json.RawMessage
	if err := json.Unmarshal(raw.Rain, &rain); err != nil {
		return 0, false
	}
	for _, key := range []string{"3h", "1h"} {
		if field, ok := rain[key]; ok && !isAbsent(field) {
			v, ok := parseNumber(field)
			return v, ok
		}
	}
	return 0, true
}

func parseCondition(raw rawSample) Condition {
	if !isAbsent(raw.Condition) {
		var c Condition
		if err := json.Unmarshal(raw.Condition, &c); err == nil {
			return c
		}
		var tag string
		if err := json.Unmarshal(raw.Condition, &tag); err == nil {
			return Condition{Main: tag}
		}
		return Condition{}
	}
	if len(raw.Weather) > 0 {
		return raw.Weather[0]
	}
	return Condition{}
}

func parseNumber(field json.RawMessage) (float64, bool) {
	if isAbsent(field) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(field, &n); err != nil {
		return 0, false
	}
	v, err := n.Float64()
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func isAbsent(field json.RawMessage) bool {
	trimmed := bytes.TrimSpace(field)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
