package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/agro-weather/internal/advisory"
	"github.com/i474232898/agro-weather/internal/alerting"
	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/i18n"
)

// Options configures a Service.
type Options struct {
	// Calendar groups the digest by day; nil means UTC.
	Calendar *time.Location
	// SkipToday drops the current day from the digest.
	SkipToday bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service fetches forecasts through a provider chain, caches them and turns
// them into outlooks.
type Service struct {
	providers []Provider
	cache     Cache
	alerts    alerting.Publisher
	opts      Options
}

// NewService creates a new Service. cache and alerts may be nil.
func NewService(providers []Provider, cache Cache, alerts alerting.Publisher, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if alerts == nil {
		alerts = alerting.LogPublisher{}
	}
	return &Service{
		providers: providers,
		cache:     cache,
		alerts:    alerts,
		opts:      opts,
	}
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.opts.Now()
}

// Aggregator returns the aggregation conventions for lang.
func (s *Service) Aggregator(lang string) forecast.Aggregator {
	return forecast.Aggregator{
		Calendar:  s.opts.Calendar,
		SkipToday: s.opts.SkipToday,
		Lang:      lang,
	}
}

// Refresh fetches the forecast from the first provider that succeeds and
// stores it in the cache.
func (s *Service) Refresh(ctx context.Context, loc Location) (ProviderForecast, error) {
	if err := loc.Validate(); err != nil {
		return ProviderForecast{}, err
	}
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return ProviderForecast{}, ErrNoProviders
	}

	var errs []error
	for _, p := range s.providers {
		pf, err := s.fetchFrom(ctx, p, loc)
		if err != nil {
			// Log and continue; the next provider may serve the location.
			log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if s.cache != nil {
			if err := s.cache.Put(ctx, loc, pf); err != nil {
				log.Printf("ERROR: cache put failed for %s: %v", loc.Key(), err)
			}
		}
		return pf, nil
	}
	return ProviderForecast{}, fmt.Errorf("%w: %w", ErrNoProviders, errors.Join(errs...))
}

// fetchFrom requests the forecast and the current conditions concurrently.
// When the current endpoint fails, the earliest forecast sample stands in.
func (s *Service) fetchFrom(ctx context.Context, p Provider, loc Location) (ProviderForecast, error) {
	var (
		wg         sync.WaitGroup
		samples    []forecast.Sample
		current    forecast.CurrentConditions
		sampleErr  error
		currentErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		samples, sampleErr = p.FetchForecast(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		current, currentErr = p.FetchCurrent(ctx, loc)
	}()
	wg.Wait()

	if sampleErr != nil {
		return ProviderForecast{}, sampleErr
	}
	if currentErr != nil {
		log.Printf("INFO: provider %s current conditions failed for %s, using first forecast sample: %v", p.Name(), loc.Key(), currentErr)
		current = currentFromSamples(samples, loc)
	}

	return ProviderForecast{
		Provider:  p.Name(),
		FetchedAt: s.Now(),
		Current:   current,
		Samples:   samples,
	}, nil
}

func currentFromSamples(samples []forecast.Sample, loc Location) forecast.CurrentConditions {
	cur := forecast.CurrentConditions{Location: loc.City}
	var first *forecast.Sample
	for i := range samples {
		if samples[i].Time.IsZero() {
			continue
		}
		if first == nil || samples[i].Time.Before(first.Time) {
			first = &samples[i]
		}
	}
	if first != nil {
		cur.TemperatureC = first.TemperatureC
		cur.Condition = first.Condition
	}
	return cur
}

// Load returns the cached forecast for loc, refreshing it on a miss.
func (s *Service) Load(ctx context.Context, loc Location) (ProviderForecast, error) {
	pf, _, err := s.load(ctx, loc)
	return pf, err
}

// load reports whether the forecast was fetched from a provider rather than
// served from the cache.
func (s *Service) load(ctx context.Context, loc Location) (ProviderForecast, bool, error) {
	if err := loc.Validate(); err != nil {
		return ProviderForecast{}, false, err
	}
	if s.cache != nil {
		pf, ok, err := s.cache.Get(ctx, loc)
		if err != nil {
			log.Printf("ERROR: cache get failed for %s: %v", loc.Key(), err)
		} else if ok {
			log.Printf("DEBUG: cache hit for %s (%s, fetched %s)", loc.Key(), pf.Provider, pf.FetchedAt.Format(time.RFC3339))
			return pf, false, nil
		}
	}
	pf, err := s.Refresh(ctx, loc)
	if err != nil {
		return ProviderForecast{}, false, err
	}
	return pf, true, nil
}

// Outlook loads the forecast for loc and builds windows, digest and advice.
// Rain alerts are published only when the forecast was freshly fetched.
func (s *Service) Outlook(ctx context.Context, loc Location, lang string) (Outlook, error) {
	pf, fresh, err := s.load(ctx, loc)
	if err != nil {
		return Outlook{}, err
	}
	out := s.Build(loc, pf, lang)
	if fresh {
		s.publishAlerts(ctx, loc, out)
	}
	return out, nil
}

// Build derives an outlook from an already fetched forecast.
func (s *Service) Build(loc Location, pf ProviderForecast, lang string) Outlook {
	now := s.Now()
	summary := s.Aggregator(lang).Aggregate(now, pf.Samples)
	if summary.Skipped > 0 {
		log.Printf("INFO: skipped %d undated samples from %s for %s", summary.Skipped, pf.Provider, loc.Key())
	}

	next := summary.Next24h
	return Outlook{
		Location:        loc,
		Provider:        pf.Provider,
		FetchedAt:       pf.FetchedAt,
		GeneratedAt:     now,
		Current:         pf.Current,
		Next24h:         summary.Next24h,
		Tomorrow:        summary.Tomorrow,
		Digest:          DigestDays(summary.Digest, lang),
		Advisory:        advisory.Advise(pf.Current, &next, lang),
		CropSuitability: advisory.CropForTemperature(pf.Current.TemperatureC, lang),
	}
}

// DigestDays adds display labels to digest entries.
func DigestDays(entries []forecast.DigestEntry, lang string) []DigestDay {
	days := make([]DigestDay, 0, len(entries))
	for _, e := range entries {
		desc := e.Condition.Description
		if desc == "" {
			desc = e.Condition.Main
		}
		days = append(days, DigestDay{
			DigestEntry: e,
			Label:       e.Day.Format("Mon 2006-01-02"),
			Description: i18n.Title(lang, desc),
		})
	}
	return days
}

func (s *Service) publishAlerts(ctx context.Context, loc Location, out Outlook) {
	var alerts []alerting.RainAlert
	for _, w := range []forecast.RainWindow{out.Next24h, out.Tomorrow} {
		if w.Classification != forecast.ClassHeavy {
			continue
		}
		alerts = append(alerts, alerting.NewRainAlert(
			loc.Key(), string(w.Horizon), string(w.Classification), w.Message, w.TotalMM, w.End, out.GeneratedAt,
		))
	}
	if len(alerts) == 0 {
		return
	}
	if err := s.alerts.Publish(ctx, alerts...); err != nil {
		log.Printf("ERROR: publishing %d rain alerts for %s: %v", len(alerts), loc.Key(), err)
	}
}

// RefreshAll refreshes every location concurrently and returns the keys
// that failed, sorted.
func (s *Service) RefreshAll(ctx context.Context, locs []Location, lang string) []string {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	for _, loc := range locs {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			pf, err := s.Refresh(ctx, loc)
			if err != nil {
				mu.Lock()
				failed = append(failed, loc.Key())
				mu.Unlock()
				return
			}
			s.publishAlerts(ctx, loc, s.Build(loc, pf, lang))
		}()
	}
	wg.Wait()
	sort.Strings(failed)
	return failed
}
