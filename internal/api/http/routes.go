package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/agro-weather/internal/advisory"
	"github.com/i474232898/agro-weather/internal/forecast"
	"github.com/i474232898/agro-weather/internal/weather"
)

var validate = validator.New()

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the weather handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultLang string) {
	v1 := app.Group("/api/v1")

	v1.Get("/outlook", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		out, err := service.Outlook(c.UserContext(), q.toLocation(), requestLang(c, "", defaultLang))
		if err != nil {
			if errors.Is(err, weather.ErrLocationRequired) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}
		return c.JSON(out)
	})

	v1.Post("/forecast/analyze", func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		samples, skipped, err := forecast.DecodeSamples(req.Samples)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		now := service.Now()
		if req.Now != "" {
			now, err = parseTime(req.Now)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		lang := requestLang(c, req.Lang, defaultLang)
		summary := service.Aggregator(lang).Aggregate(now, samples)
		summary.Skipped += skipped

		resp := analyzeResponse{
			Now:      now,
			Next24h:  summary.Next24h,
			Tomorrow: summary.Tomorrow,
			Digest:   weather.DigestDays(summary.Digest, lang),
			Skipped:  summary.Skipped,
		}
		if req.Current != nil {
			res := advisory.Advise(*req.Current, &summary.Next24h, lang)
			resp.Advisory = &res
			resp.CropSuitability = advisory.CropForTemperature(req.Current.TemperatureC, lang)
		}
		return c.JSON(resp)
	})

	v1.Post("/advisory", func(c *fiber.Ctx) error {
		var req advisoryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		lang := requestLang(c, req.Lang, defaultLang)
		cur := forecast.CurrentConditions{TemperatureC: req.TemperatureC, Condition: req.Condition}

		var next *forecast.RainWindow
		if req.RainMM != nil {
			next = &forecast.RainWindow{
				Horizon:        forecast.HorizonNext24h,
				TotalMM:        forecast.Round(*req.RainMM),
				Classification: forecast.Classify(*req.RainMM),
			}
		}

		return c.JSON(fiber.Map{
			"advisory":        advisory.Advise(cur, next, lang),
			"cropSuitability": advisory.CropForTemperature(req.TemperatureC, lang),
		})
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string   `validate:"required_without=Lat"`
	Country string   `validate:"omitempty,max=64"`
	Lat     *float64 `validate:"required_without=City,required_with=Lon,omitempty,gte=-90,lte=90"`
	Lon     *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
		Lat:     l.Lat,
		Lon:     l.Lon,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = strings.TrimSpace(c.Query("city"))
	q.Country = strings.TrimSpace(c.Query("country"))

	var err error
	if q.Lat, err = parseCoord(c.Query("lat")); err != nil {
		return q, errors.New("lat must be a number")
	}
	if q.Lon, err = parseCoord(c.Query("lon")); err != nil {
		return q, errors.New("lon must be a number")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func parseCoord(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type analyzeRequest struct {
	Now     string                      `json:"now"`
	Samples json.RawMessage             `json:"samples"`
	Current *forecast.CurrentConditions `json:"current"`
	Lang    string                      `json:"lang"`
}

type analyzeResponse struct {
	Now             time.Time           `json:"now"`
	Next24h         forecast.RainWindow `json:"next24h"`
	Tomorrow        forecast.RainWindow `json:"tomorrow"`
	Digest          []weather.DigestDay `json:"digest"`
	Skipped         int                 `json:"skipped"`
	Advisory        *advisory.Result    `json:"advisory,omitempty"`
	CropSuitability string              `json:"cropSuitability,omitempty"`
}

type advisoryRequest struct {
	TemperatureC *float64           `json:"temperatureC" validate:"omitempty,gte=-90,lte=60"`
	Condition    forecast.Condition `json:"condition"`
	RainMM       *float64           `json:"rain" validate:"omitempty,gte=0"`
	Lang         string             `json:"lang"`
}

// requestLang picks the body language, then ?lang, then Accept-Language.
func requestLang(c *fiber.Ctx, bodyLang, def string) string {
	if bodyLang != "" {
		return bodyLang
	}
	if q := c.Query("lang"); q != "" {
		return q
	}
	if h := c.Get(fiber.HeaderAcceptLanguage); h != "" {
		return h
	}
	return def
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
