package app

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Listen:            "127.0.0.1:0",
		Mode:              ModeHN,
		APIURL:            "http://127.0.0.1:1",
		TopTTL:            time.Minute,
		ItemTTL:           time.Minute,
		TopLimit:          10,
		HTTPTimeout:       time.Second,
		RequestsPerSecond: 10,
		Rates:             "EUR=0.9",
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	for _, mode := range []string{ModeHN, ModeConvert} {
		cfg := testConfig()
		cfg.Mode = mode
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Run(ctx, cfg) }()
		time.Sleep(50 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("%s: expected clean shutdown, got %v", mode, err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("%s: Run did not return after cancellation", mode)
		}
	}
}

func TestRunRejectsBadRates(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = ModeConvert
	cfg.Rates = "nonsense"
	err := Run(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "parse rates") {
		t.Fatalf("expected rates error, got %v", err)
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Listen = "256.0.0.1:99999"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := Run(ctx, cfg); err == nil {
		t.Fatalf("expected listen error")
	}
}
