package alerting

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recorder struct {
	got    []RainAlert
	err    error
	closed bool
}

func (r *recorder) Publish(_ context.Context, alerts ...RainAlert) error {
	r.got = append(r.got, alerts...)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestMultiPublishesToAll(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}
	m := Multi{failing, ok, LogPublisher{}}

	a := NewRainAlert("Pune:IN", "next24h", "heavy", "Heavy rainfall", 25, time.Unix(86400, 0), time.Unix(0, 0))
	err := m.Publish(context.Background(), a)
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(ok.got) != 1 || ok.got[0].ID != a.ID {
		t.Errorf("second publisher did not receive alert: %+v", ok.got)
	}
	if a.ID == "" {
		t.Errorf("alert has no id")
	}

	if err := m.Publish(context.Background()); err != nil {
		t.Errorf("empty publish returned %v", err)
	}
	if len(ok.got) != 1 {
		t.Errorf("empty publish reached publishers")
	}

	if err := m.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if !failing.closed || !ok.closed {
		t.Errorf("close did not reach every publisher")
	}
}
