package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agro-weather/internal/common"
	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	days    int
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		days:    3,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuit("weatherapi"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type waCondition struct {
	Text string `json:"text"`
}

type waHour struct {
	TimeEpoch int64       `json:"time_epoch"`
	TempC     *float64    `json:"temp_c"`
	PrecipMM  float64     `json:"precip_mm"`
	Condition waCondition `json:"condition"`
}

type waResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     *float64    `json:"temp_c"`
		Condition waCondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Hour []waHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, endpoint string, loc weather.Location) (waResponse, error) {
	if p.apiKey == "" {
		return waResponse{}, fmt.Errorf("weatherapi: %w: api key is missing", errNotConfigured)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	values.Set("q", loc.Query())
	if endpoint == "forecast.json" {
		values.Set("days", fmt.Sprintf("%d", p.days))
	}

	var payload waResponse
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, getRequest(u), &payload); err != nil {
		return waResponse{}, err
	}
	return payload, nil
}

// FetchForecast returns the hourly forecast for the next few days.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]forecast.Sample, error) {
	payload, err := p.fetch(ctx, "forecast.json", loc)
	if err != nil {
		return nil, err
	}

	var samples []forecast.Sample
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			s := forecast.Sample{
				PrecipMM:     h.PrecipMM,
				TemperatureC: h.TempC,
				Condition:    mapWeatherAPICondition(h.Condition.Text),
			}
			if h.TimeEpoch > 0 {
				s.Time = time.Unix(h.TimeEpoch, 0).UTC()
			}
			samples = append(samples, s)
		}
	}
	return samples, nil
}

// FetchCurrent returns the current conditions snapshot.
func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, loc weather.Location) (forecast.CurrentConditions, error) {
	payload, err := p.fetch(ctx, "current.json", loc)
	if err != nil {
		return forecast.CurrentConditions{}, err
	}

	name := payload.Location.Name
	if name == "" {
		name = loc.City
	}
	return forecast.CurrentConditions{
		Location:     name,
		TemperatureC: payload.Current.TempC,
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

// mapWeatherAPICondition derives an OpenWeather style main group from the
// free-text condition so the advisory rules see the same vocabulary.
func mapWeatherAPICondition(text string) forecast.Condition {
	cond := forecast.Condition{Description: text}
	switch {
	case text == "":
		return forecast.Condition{}
	case common.HasAny(text, "thunder"):
		cond.Main = "Thunderstorm"
	case common.HasAny(text, "rain", "shower", "drizzle"):
		cond.Main = "Rain"
	case common.HasAny(text, "snow", "sleet", "blizzard"):
		cond.Main = "Snow"
	case common.HasAny(text, "cloud", "overcast"):
		cond.Main = "Clouds"
	case common.HasAny(text, "mist", "fog"):
		cond.Main = "Mist"
	case common.HasAny(text, "sunny", "clear"):
		cond.Main = "Clear"
	}
	return cond
}
