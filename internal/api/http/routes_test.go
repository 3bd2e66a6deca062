package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/i474232898/agro-weather/internal/auth"
	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/store"
	"github.com/i474232898/agro-weather/internal/weather"
)

var testNow = time.Date(2024, 6, 13, 6, 0, 0, 0, time.UTC)

type fakeProvider struct {
	err error
}

func (f fakeProvider) Name() string { return "fake" }

func (f fakeProvider) FetchForecast(_ context.Context, _ weather.Location) ([]forecast.Sample, error) {
	if f.err != nil {
		return nil, f.err
	}
	rain := forecast.Condition{Main: "Rain", Description: "moderate rain"}
	return []forecast.Sample{
		{Time: testNow.Add(3 * time.Hour), PrecipMM: 15, Condition: rain, TemperatureC: forecast.Float(27)},
		{Time: testNow.Add(6 * time.Hour), PrecipMM: 10, Condition: rain, TemperatureC: forecast.Float(25)},
		{Time: testNow.Add(30 * time.Hour), PrecipMM: 1, Condition: rain, TemperatureC: forecast.Float(26)},
	}, nil
}

func (f fakeProvider) FetchCurrent(_ context.Context, loc weather.Location) (forecast.CurrentConditions, error) {
	if f.err != nil {
		return forecast.CurrentConditions{}, f.err
	}
	return forecast.CurrentConditions{
		Location:     loc.City,
		TemperatureC: forecast.Float(29),
		Condition:    forecast.Condition{Main: "Rain", Description: "light rain"},
	}, nil
}

func newTestApp(t *testing.T, p weather.Provider) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	svc := weather.NewService([]weather.Provider{p}, store.NewMemoryCache(0, 0), nil, weather.Options{
		Now: func() time.Time { return testNow },
	})
	RegisterRoutes(app, svc, "en")

	accounts := store.NewMemoryStore()
	manager, err := auth.NewManager(auth.Config{JWTSecret: "test", BcryptCost: bcrypt.MinCost}, accounts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	RegisterAccountRoutes(app, manager, accounts)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]interface{}) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("response is not JSON: %s", raw)
		}
	}
	return resp.StatusCode, out
}

func TestOutlookLocationValidation(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	tests := []struct {
		name string
		path string
	}{
		{"missing location", "/api/v1/outlook"},
		{"lat without lon", "/api/v1/outlook?lat=18.5"},
		{"lat out of range", "/api/v1/outlook?lat=91&lon=73"},
		{"lat not a number", "/api/v1/outlook?lat=north&lon=73"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodGet, tt.path, "", "")
			if status != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
			}
			if body["error"] != true {
				t.Fatalf("expected error envelope, got %v", body)
			}
		})
	}
}

func TestOutlook(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook?city=Pune&country=IN", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var out weather.Outlook
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Provider != "fake" {
		t.Fatalf("unexpected provider %q", out.Provider)
	}
	if out.Next24h.Classification != forecast.ClassHeavy || out.Next24h.TotalMM != 25 {
		t.Fatalf("unexpected next24h window %+v", out.Next24h)
	}
	if out.Tomorrow.Classification != forecast.ClassNone || out.Tomorrow.TotalMM != 1 {
		t.Fatalf("unexpected tomorrow window %+v", out.Tomorrow)
	}
	if out.Advisory.Rule != "rain" || out.Advisory.RainOutlook == "" {
		t.Fatalf("unexpected advisory %+v", out.Advisory)
	}
	if len(out.Digest) != 2 {
		t.Fatalf("expected 2 digest days, got %d", len(out.Digest))
	}
}

func TestOutlookLanguage(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook?city=Pune", nil)
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var hi weather.Outlook
	if err := json.NewDecoder(resp.Body).Decode(&hi); err != nil {
		t.Fatalf("decode: %v", err)
	}

	_, en := do(t, app, http.MethodGet, "/api/v1/outlook?city=Pune&lang=en", "", "")
	enAdvisory := en["advisory"].(map[string]interface{})
	if hi.Advisory.FieldWork == enAdvisory["fieldWorkGuidance"] {
		t.Fatalf("expected Hindi guidance to differ from English, got %q", hi.Advisory.FieldWork)
	}
}

func TestOutlookProviderFailure(t *testing.T) {
	app := newTestApp(t, fakeProvider{err: errors.New("boom")})

	status, body := do(t, app, http.MethodGet, "/api/v1/outlook?city=Pune", "", "")
	if status != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, status)
	}
	if body["message"] != "failed to fetch weather data" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestAnalyze(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	body := `{
		"now": "2024-06-13T06:00:00Z",
		"samples": [
			{"timestamp": "2024-06-13T09:00:00Z", "precipitationMm": 1.2, "condition": {"main": "Rain", "description": "light rain"}, "temperatureC": 27},
			{"timestamp": "2024-06-13T12:00:00Z", "precipitationMm": 0.8, "condition": "Clouds", "temperatureC": 29},
			{"timestamp": "not a time", "precipitationMm": 50},
			{"timestamp": "2024-06-14T09:00:00Z", "precipitationMm": 0, "condition": {"main": "Thunderstorm", "description": "thunderstorm"}, "temperatureC": 24}
		],
		"current": {"temperatureC": 33, "condition": {"main": "Clear", "description": "clear sky"}}
	}`

	status, out := do(t, app, http.MethodPost, "/api/v1/forecast/analyze", body, "")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %v", http.StatusOK, status, out)
	}
	if out["skipped"].(float64) != 1 {
		t.Fatalf("expected 1 skipped sample, got %v", out["skipped"])
	}

	next := out["next24h"].(map[string]interface{})
	if next["totalMm"].(float64) != 2 || next["classification"] != "moderate" {
		t.Fatalf("unexpected next24h %v", next)
	}
	tomorrow := out["tomorrow"].(map[string]interface{})
	if tomorrow["totalMm"].(float64) != 5 || tomorrow["classification"] != "moderate" {
		t.Fatalf("thunder bias should apply to tomorrow, got %v", tomorrow)
	}

	adv := out["advisory"].(map[string]interface{})
	if adv["rule"] != "clear-hot" {
		t.Fatalf("unexpected advisory %v", adv)
	}
}

func TestAnalyzeRejectsNonArray(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	status, _ := do(t, app, http.MethodPost, "/api/v1/forecast/analyze", `{"samples": {"a": 1}}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}
	status, _ = do(t, app, http.MethodPost, "/api/v1/forecast/analyze", `{"samples": [], "now": "yesterday"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d for bad now, got %d", http.StatusBadRequest, status)
	}
}

func TestAdvisory(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	status, out := do(t, app, http.MethodPost, "/api/v1/advisory",
		`{"temperatureC": 36, "condition": {"main": "Clear", "description": "clear sky"}, "rain": 25}`, "")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %v", http.StatusOK, status, out)
	}
	adv := out["advisory"].(map[string]interface{})
	if adv["rule"] != "clear-hot" {
		t.Fatalf("unexpected rule %v", adv["rule"])
	}
	if !strings.Contains(adv["rainOutlook"].(string), "Heavy rainfall") {
		t.Fatalf("unexpected rain outlook %v", adv["rainOutlook"])
	}
	if !strings.Contains(out["cropSuitability"].(string), "Heat stress") {
		t.Fatalf("unexpected crop suitability %v", out["cropSuitability"])
	}

	status, out = do(t, app, http.MethodPost, "/api/v1/advisory", `{"condition": {"main": "Clear"}}`, "")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if out["advisory"].(map[string]interface{})["rule"] != "normal" {
		t.Fatalf("missing temperature should fall back to the neutral rule, got %v", out["advisory"])
	}

	status, _ = do(t, app, http.MethodPost, "/api/v1/advisory", `{"rain": -1}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d for negative rain, got %d", http.StatusBadRequest, status)
	}
}

func TestAccountsAndFavorites(t *testing.T) {
	app := newTestApp(t, fakeProvider{})

	creds := `{"email": "farmer@example.com", "password": "s3cret!"}`
	status, out := do(t, app, http.MethodPost, "/api/auth/register", creds, "")
	if status != http.StatusOK {
		t.Fatalf("register: expected %d, got %d: %v", http.StatusOK, status, out)
	}
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token: %v", out)
	}

	status, out = do(t, app, http.MethodPost, "/api/auth/register", creds, "")
	if status != http.StatusBadRequest || out["message"] != "User already exists" {
		t.Fatalf("duplicate register: got %d %v", status, out)
	}

	status, out = do(t, app, http.MethodPost, "/api/auth/login", `{"email": "farmer@example.com", "password": "wrong!!"}`, "")
	if status != http.StatusBadRequest || out["message"] != "Invalid credentials" {
		t.Fatalf("bad login: got %d %v", status, out)
	}

	status, out = do(t, app, http.MethodPost, "/api/auth/login", `{"email": "farmer@example.com"}`, "")
	if status != http.StatusBadRequest || out["message"] != "Email and password required" {
		t.Fatalf("missing password: got %d %v", status, out)
	}

	status, out = do(t, app, http.MethodPost, "/api/auth/login", creds, "")
	if status != http.StatusOK {
		t.Fatalf("login: got %d %v", status, out)
	}
	token = out["token"].(string)

	if status, _ := do(t, app, http.MethodGet, "/api/favorites", "", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	do(t, app, http.MethodPost, "/api/favorites", `{"city": "New Delhi"}`, token)
	do(t, app, http.MethodPost, "/api/favorites", `{"city": "Pune"}`, token)
	status, out = do(t, app, http.MethodPost, "/api/favorites", `{"city": "Pune"}`, token)
	if status != http.StatusOK {
		t.Fatalf("add favorite: got %d %v", status, out)
	}
	if got := out["favorites"].([]interface{}); len(got) != 2 {
		t.Fatalf("expected 2 favorites, got %v", got)
	}

	status, out = do(t, app, http.MethodPost, "/api/favorites", `{"city": "  "}`, token)
	if status != http.StatusBadRequest || out["message"] != "City required" {
		t.Fatalf("blank city: got %d %v", status, out)
	}

	status, out = do(t, app, http.MethodDelete, "/api/favorites/New%20Delhi", "", token)
	if status != http.StatusOK {
		t.Fatalf("delete favorite: got %d %v", status, out)
	}

	status, out = do(t, app, http.MethodGet, "/api/favorites", "", token)
	if status != http.StatusOK {
		t.Fatalf("list favorites: got %d %v", status, out)
	}
	got := out["favorites"].([]interface{})
	if len(got) != 1 || got[0] != "Pune" {
		t.Fatalf("unexpected favorites %v", got)
	}
}
