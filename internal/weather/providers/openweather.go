package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuit("openweather"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
	Rain    struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
}

type owForecastResponse struct {
	List []owForecastItem `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

type owCurrentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
}

func (p *OpenWeatherProvider) url(endpoint string, loc weather.Location) string {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if loc.HasCoords() {
		values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
		values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
	} else {
		values.Set("q", loc.Query())
	}
	return fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
}

// FetchForecast returns the 5 day / 3 hour forecast list.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]forecast.Sample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w: api key is missing", errNotConfigured)
	}

	var payload owForecastResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, getRequest(p.url("forecast", loc)), &payload); err != nil {
		return nil, err
	}

	samples := make([]forecast.Sample, 0, len(payload.List))
	for _, item := range payload.List {
		s := forecast.Sample{
			PrecipMM:     item.Rain.ThreeH,
			TemperatureC: item.Main.Temp,
			Condition:    firstCondition(item.Weather),
		}
		if item.Dt > 0 {
			s.Time = time.Unix(item.Dt, 0).UTC()
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// FetchCurrent returns the current conditions snapshot.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location) (forecast.CurrentConditions, error) {
	if p.apiKey == "" {
		return forecast.CurrentConditions{}, fmt.Errorf("openweather: %w: api key is missing", errNotConfigured)
	}

	var payload owCurrentResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, getRequest(p.url("weather", loc)), &payload); err != nil {
		return forecast.CurrentConditions{}, err
	}

	name := payload.Name
	if name == "" {
		name = loc.City
	}
	return forecast.CurrentConditions{
		Location:     name,
		TemperatureC: payload.Main.Temp,
		Condition:    firstCondition(payload.Weather),
	}, nil
}

func firstCondition(items []owCondition) forecast.Condition {
	if len(items) == 0 {
		return forecast.Condition{}
	}
	return forecast.Condition{Main: items[0].Main, Description: items[0].Description}
}
