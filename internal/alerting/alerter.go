package alerting

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// RainAlert is emitted when a rain window classifies as heavy.
type RainAlert struct {
	ID             string    `json:"id"`
	Location       string    `json:"location"`
	Horizon        string    `json:"horizon"`
	TotalMM        float64   `json:"totalMm"`
	Classification string    `json:"classification"`
	Message        string    `json:"message"`
	WindowEnd      time.Time `json:"windowEnd"`
	At             time.Time `json:"at"`
}

// NewRainAlert stamps an alert with a fresh ID.
func NewRainAlert(location, horizon, class, message string, totalMM float64, windowEnd, at time.Time) RainAlert {
	return RainAlert{
		ID:             uuid.NewString(),
		Location:       location,
		Horizon:        horizon,
		TotalMM:        totalMM,
		Classification: class,
		Message:        message,
		WindowEnd:      windowEnd,
		At:             at,
	}
}

// Publisher delivers alerts to a channel (Kafka, logs, ...).
type Publisher interface {
	Publish(ctx context.Context, alerts ...RainAlert) error
	Close() error
}

// LogPublisher writes alerts to the standard logger.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, alerts ...RainAlert) error {
	for _, a := range alerts {
		log.Printf("ALERT: %s %s %.1f mm (%s): %s", a.Location, a.Horizon, a.TotalMM, a.Classification, a.Message)
	}
	return nil
}

func (LogPublisher) Close() error { return nil }

// Multi fans alerts out to several publishers. Every publisher is attempted;
// the first error is returned.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, alerts ...RainAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, alerts...); err != nil {
			log.Printf("ERROR: alert publish failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m Multi) Close() error {
	var firstErr error
	for _, p := range m {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
