package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/weather"
)

var errCoordsRequired = errors.New("openmeteo requires latitude and longitude")

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	days    int
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		days:    3,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuit("openmeteo"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type omResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WeatherCode int      `json:"weathercode"`
	} `json:"current_weather"`
	Hourly struct {
		Time          []int64    `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
		Precipitation []*float64 `json:"precipitation"`
		WeatherCode   []*int     `json:"weathercode"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, loc weather.Location) (omResponse, error) {
	if !loc.HasCoords() {
		return omResponse{}, errCoordsRequired
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
	values.Set("current_weather", "true")
	values.Set("hourly", "temperature_2m,precipitation,weathercode")
	values.Set("timeformat", "unixtime")
	values.Set("forecast_days", fmt.Sprintf("%d", p.days))

	var payload omResponse
	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, getRequest(u), &payload); err != nil {
		return omResponse{}, err
	}
	return payload, nil
}

// FetchForecast returns the hourly series. The parallel arrays are read up
// to the shortest one.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]forecast.Sample, error) {
	payload, err := p.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	h := payload.Hourly
	n := len(h.Time)
	samples := make([]forecast.Sample, 0, n)
	for i := 0; i < n; i++ {
		s := forecast.Sample{}
		if h.Time[i] > 0 {
			s.Time = time.Unix(h.Time[i], 0).UTC()
		}
		if i < len(h.Temperature2m) {
			s.TemperatureC = h.Temperature2m[i]
		}
		if i < len(h.Precipitation) && h.Precipitation[i] != nil {
			s.PrecipMM = *h.Precipitation[i]
		}
		if i < len(h.WeatherCode) && h.WeatherCode[i] != nil {
			s.Condition = mapOpenMeteoCondition(*h.WeatherCode[i])
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// FetchCurrent returns the current_weather block.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, loc weather.Location) (forecast.CurrentConditions, error) {
	payload, err := p.fetch(ctx, loc)
	if err != nil {
		return forecast.CurrentConditions{}, err
	}
	if payload.CurrentWeather == nil {
		return forecast.CurrentConditions{}, fmt.Errorf("openmeteo: current_weather missing from response")
	}

	return forecast.CurrentConditions{
		Location:     loc.City,
		TemperatureC: payload.CurrentWeather.Temperature,
		Condition:    mapOpenMeteoCondition(payload.CurrentWeather.WeatherCode),
	}, nil
}

// mapOpenMeteoCondition maps WMO weather codes onto the OpenWeather groups.
func mapOpenMeteoCondition(code int) forecast.Condition {
	switch {
	case code == 0:
		return forecast.Condition{Main: "Clear", Description: "clear sky"}
	case code >= 1 && code <= 3:
		return forecast.Condition{Main: "Clouds", Description: "partly cloudy"}
	case code == 45 || code == 48:
		return forecast.Condition{Main: "Fog", Description: "fog"}
	case code >= 51 && code <= 57:
		return forecast.Condition{Main: "Drizzle", Description: "drizzle"}
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return forecast.Condition{Main: "Rain", Description: "rain"}
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return forecast.Condition{Main: "Snow", Description: "snow"}
	case code >= 95:
		return forecast.Condition{Main: "Thunderstorm", Description: "thunderstorm"}
	default:
		return forecast.Condition{}
	}
}
