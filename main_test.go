package main

import (
	"testing"

	"github.com/atomicstack/hn-over-ssh/internal/app"
	"github.com/atomicstack/hn-over-ssh/internal/config"
	"github.com/atomicstack/hn-over-ssh/internal/logging"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Listen:   ":2200",
			Mode:     app.ModeHN,
			TopLimit: 200,
			AuthUser: "user",
			AuthPass: "secret",
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"listen":   ":2200",
			"mode":     "hn",
			"topLimit": "200",
			"authPass": "********",
		},
		Args: []string{"-listen", ":2200"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["listen"] != ":2200" {
		t.Fatalf("expected listen flag %q, got %v", ":2200", flagsValue["listen"])
	}
	if flagsValue["mode"] != "hn" {
		t.Fatalf("expected mode hn, got %v", flagsValue["mode"])
	}
	if flagsValue["topLimit"] != "200" {
		t.Fatalf("expected top limit 200, got %v", flagsValue["topLimit"])
	}
	if flagsValue["authPass"] == "secret" {
		t.Fatalf("expected password to stay redacted")
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func TestLogFilePathDefaultsForLocalMode(t *testing.T) {
	local := config.Config{App: app.Config{Local: true}}
	if got := logFilePath(local); got != logging.DefaultLogFile {
		t.Fatalf("expected %q for local mode, got %q", logging.DefaultLogFile, got)
	}
	remote := config.Config{}
	if got := logFilePath(remote); got != "" {
		t.Fatalf("expected stderr logging for server mode, got %q", got)
	}
	explicit := config.Config{App: app.Config{Local: true}, Logging: config.Logging{FilePath: "x.log"}}
	if got := logFilePath(explicit); got != "x.log" {
		t.Fatalf("expected explicit path to win, got %q", got)
	}
}
