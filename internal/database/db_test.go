package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/config"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPingWithRetry(t *testing.T) {
	rc := config.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{"first try", 0, false, 1},
		{"recovers", 2, false, 3},
		{"gives up", 5, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &flakyPinger{failures: tt.failures}
			err := pingWithRetry(context.Background(), p, rc, discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if p.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", p.calls, tt.wantCalls)
			}
		})
	}
}

func TestOpenMemory(t *testing.T) {
	cfg := config.Default()
	st, err := Open(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	if _, err := st.NextSequence(context.Background(), "customer"); err != nil {
		t.Errorf("NextSequence: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "sqlite"
	if _, err := Open(context.Background(), cfg, discard()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
