package weather

import (
	"context"

	"github.com/i474232898/agro-weather/internal/forecast"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) ([]forecast.Sample, error)
	FetchCurrent(ctx context.Context, loc Location) (forecast.CurrentConditions, error)
}

// Cache is the contract the in-memory cache (and the Redis cache) must satisfy.
type Cache interface {
	Get(ctx context.Context, loc Location) (ProviderForecast, bool, error)
	Put(ctx context.Context, loc Location, f ProviderForecast) error
}
