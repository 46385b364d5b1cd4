// Package app wires the HN client, the shared cache and the selected front
// end together.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/hn-over-ssh/internal/backend"
	"github.com/atomicstack/hn-over-ssh/internal/cache"
	"github.com/atomicstack/hn-over-ssh/internal/convert"
	"github.com/atomicstack/hn-over-ssh/internal/hn"
	"github.com/atomicstack/hn-over-ssh/internal/logging/events"
	"github.com/atomicstack/hn-over-ssh/internal/render"
	"github.com/atomicstack/hn-over-ssh/internal/server"
	"github.com/atomicstack/hn-over-ssh/internal/theme"
	"github.com/atomicstack/hn-over-ssh/internal/ui"
)

const (
	ModeHN      = "hn"
	ModeConvert = "convert"

	shutdownGrace = 5 * time.Second
)

// Config describes user-provided application options.
type Config struct {
	Listen            string
	HostKeyFile       string
	Mode              string
	Local             bool
	APIURL            string
	TopTTL            time.Duration
	ItemTTL           time.Duration
	TopLimit          int
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	Prefetch          time.Duration
	PrefetchCount     int
	IdleTimeout       time.Duration
	AuthUser          string
	AuthPass          string `json:"-"`
	Rates             string
	Color             bool
}

// Run serves the configured mode until ctx is cancelled or the program exits.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Mode == ModeConvert {
		rates, err := convert.ParseRates(cfg.Rates)
		if err != nil {
			return fmt.Errorf("parse rates: %w", err)
		}
		return serve(ctx, cfg, server.Convert(rates))
	}

	client := hn.NewClient(hn.Options{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	store := cache.New(client, cache.WithTTL(cfg.TopTTL, cfg.ItemTTL), cache.WithTopLimit(cfg.TopLimit))
	defer func() {
		st := store.Stats()
		events.Cache.Summary(st.Hits, st.Refreshes, st.Stale, st.Unavailable, st.Items)
	}()

	var warmer *backend.Warmer
	if cfg.Prefetch > 0 {
		warmer = backend.NewWarmer(ctx, store, backend.Options{Interval: cfg.Prefetch, Count: cfg.PrefetchCount})
		defer func() {
			warmer.Stop()
			warmer.Wait()
		}()
	}

	if cfg.Local {
		return runLocal(ctx, cfg, store, warmer)
	}

	var opts []render.Option
	if cfg.Color {
		opts = append(opts, render.WithStyles(theme.New(nil)))
	}
	return serve(ctx, cfg, server.Browse(store, render.New(opts...)))
}

func serve(ctx context.Context, cfg Config, h server.Handler) error {
	srv, err := server.New(server.Options{
		Addr:        cfg.Listen,
		HostKeyFile: cfg.HostKeyFile,
		IdleTimeout: cfg.IdleTimeout,
		AuthUser:    cfg.AuthUser,
		AuthPass:    cfg.AuthPass,
	}, cfg.Mode, h)
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		events.App.Stop(context.Cause(ctx).Error())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			events.App.Stop("forced: " + err.Error())
		}
	}()

	err = srv.ListenAndServe()
	if err != nil {
		return err
	}
	<-stopped
	return nil
}

func runLocal(ctx context.Context, cfg Config, store *cache.Cache, warmer *backend.Warmer) error {
	opts := ui.Options{Renderer: render.New(render.WithoutClear())}
	if cfg.Color {
		styles := theme.New(lipgloss.DefaultRenderer())
		opts.Styles = styles
		opts.Renderer = render.New(render.WithoutClear(), render.WithStyles(styles))
	}
	if warmer != nil {
		opts.WarmerEvents = warmer.Events()
	}
	model := ui.NewModel(ctx, store, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
