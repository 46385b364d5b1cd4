package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/hn-over-ssh/internal/app"
	"github.com/atomicstack/hn-over-ssh/internal/cache"
	"github.com/atomicstack/hn-over-ssh/internal/convert"
	"github.com/atomicstack/hn-over-ssh/internal/hn"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envListen        = "HN_OVER_SSH_LISTEN"
	envHostKey       = "HN_OVER_SSH_HOST_KEY"
	envMode          = "HN_OVER_SSH_MODE"
	envLocal         = "HN_OVER_SSH_LOCAL"
	envAPIURL        = "HN_OVER_SSH_API_URL"
	envTopTTL        = "HN_OVER_SSH_TOP_TTL"
	envItemTTL       = "HN_OVER_SSH_ITEM_TTL"
	envTopLimit      = "HN_OVER_SSH_TOP_LIMIT"
	envHTTPTimeout   = "HN_OVER_SSH_HTTP_TIMEOUT"
	envRate          = "HN_OVER_SSH_RATE"
	envPrefetch      = "HN_OVER_SSH_PREFETCH"
	envPrefetchCount = "HN_OVER_SSH_PREFETCH_COUNT"
	envIdleTimeout   = "HN_OVER_SSH_IDLE_TIMEOUT"
	envAuthUser      = "HN_OVER_SSH_AUTH_USER"
	envAuthPass      = "HN_OVER_SSH_AUTH_PASS"
	envRates         = "HN_OVER_SSH_RATES"
	envColor         = "HN_OVER_SSH_COLOR"
	envTrace         = "HN_OVER_SSH_TRACE"
	envLogFile       = "HN_OVER_SSH_LOG_FILE"

	// maxTopLimit is the length of the upstream top-stories list.
	maxTopLimit = 500
	redacted    = "********"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Flags override
// environment variables, which override built-in defaults.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("hn-over-ssh", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	listen := fs.String("listen", envOrDefault(env, envListen, ":2200"), "address the SSH server listens on")
	hostKey := fs.String("host-key", envOrDefault(env, envHostKey, ""), "path to a PEM host key (empty generates one at startup)")
	mode := fs.String("mode", envOrDefault(env, envMode, app.ModeHN), "service to expose: hn or convert")
	local := fs.Bool("local", envOrBool(env, envLocal, false), "run the browser in this terminal instead of serving SSH")
	apiURL := fs.String("api-url", envOrDefault(env, envAPIURL, hn.DefaultBaseURL), "Hacker News API base URL")
	topTTL := fs.Duration("top-ttl", envOrDuration(env, envTopTTL, cache.DefaultTopTTL), "freshness window for the top-story list")
	itemTTL := fs.Duration("item-ttl", envOrDuration(env, envItemTTL, cache.DefaultItemTTL), "freshness window for items")
	topLimit := fs.Int("top-limit", envOrInt(env, envTopLimit, cache.DefaultTopLimit), "number of top stories kept")
	httpTimeout := fs.Duration("http-timeout", envOrDuration(env, envHTTPTimeout, 10*time.Second), "timeout for one API request")
	reqRate := fs.Float64("rate", envOrFloat(env, envRate, 20), "maximum API requests per second")
	prefetch := fs.Duration("prefetch", envOrDuration(env, envPrefetch, 5*time.Minute), "interval for background cache warming (0 disables)")
	prefetchCount := fs.Int("prefetch-count", envOrInt(env, envPrefetchCount, 30), "number of leading stories warmed per cycle")
	idleTimeout := fs.Duration("idle-timeout", envOrDuration(env, envIdleTimeout, 30*time.Minute), "disconnect sessions idle for this long (0 disables)")
	authUser := fs.String("auth-user", envOrDefault(env, envAuthUser, ""), "require this user name (with -auth-pass)")
	authPass := fs.String("auth-pass", envOrDefault(env, envAuthPass, ""), "require this password (with -auth-user)")
	rates := fs.String("rates", envOrDefault(env, envRates, convert.DefaultRates), "conversion rates for convert mode, as CODE=RATE,...")
	color := fs.Bool("color", envOrBool(env, envColor, false), "colour the browser output")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file (default stderr, or hn-over-ssh.log with -local)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	pass := ""
	if *authPass != "" {
		pass = redacted
	}
	cfg := Config{
		App: app.Config{
			Listen:            *listen,
			HostKeyFile:       *hostKey,
			Mode:              strings.ToLower(strings.TrimSpace(*mode)),
			Local:             *local,
			APIURL:            *apiURL,
			TopTTL:            *topTTL,
			ItemTTL:           *itemTTL,
			TopLimit:          *topLimit,
			HTTPTimeout:       *httpTimeout,
			RequestsPerSecond: *reqRate,
			Prefetch:          *prefetch,
			PrefetchCount:     *prefetchCount,
			IdleTimeout:       *idleTimeout,
			AuthUser:          *authUser,
			AuthPass:          *authPass,
			Rates:             *rates,
			Color:             *color,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"listen":        *listen,
			"hostKey":       *hostKey,
			"mode":          *mode,
			"local":         strconv.FormatBool(*local),
			"apiURL":        *apiURL,
			"topTTL":        topTTL.String(),
			"itemTTL":       itemTTL.String(),
			"topLimit":      strconv.Itoa(*topLimit),
			"httpTimeout":   httpTimeout.String(),
			"rate":          strconv.FormatFloat(*reqRate, 'f', -1, 64),
			"prefetch":      prefetch.String(),
			"prefetchCount": strconv.Itoa(*prefetchCount),
			"idleTimeout":   idleTimeout.String(),
			"authUser":      *authUser,
			"authPass":      pass,
			"rates":         *rates,
			"color":         strconv.FormatBool(*color),
			"trace":         strconv.FormatBool(*trace),
			"logFile":       *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate reports the first configuration value that cannot be used.
func Validate(cfg Config) error {
	a := cfg.App
	switch a.Mode {
	case app.ModeHN, app.ModeConvert:
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", app.ModeHN, app.ModeConvert, a.Mode)
	}
	if a.Local && a.Mode != app.ModeHN {
		return fmt.Errorf("-local only supports mode %q", app.ModeHN)
	}
	if a.TopTTL <= 0 {
		return fmt.Errorf("top-ttl must be > 0 (got %s)", a.TopTTL)
	}
	if a.ItemTTL <= 0 {
		return fmt.Errorf("item-ttl must be > 0 (got %s)", a.ItemTTL)
	}
	if a.TopLimit < 1 || a.TopLimit > maxTopLimit {
		return fmt.Errorf("top-limit must be between 1 and %d (got %d)", maxTopLimit, a.TopLimit)
	}
	if a.HTTPTimeout <= 0 {
		return fmt.Errorf("http-timeout must be > 0 (got %s)", a.HTTPTimeout)
	}
	if a.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate must be > 0 (got %v)", a.RequestsPerSecond)
	}
	if a.Prefetch < 0 {
		return fmt.Errorf("prefetch must be >= 0 (got %s)", a.Prefetch)
	}
	if a.PrefetchCount < 0 {
		return fmt.Errorf("prefetch-count must be >= 0 (got %d)", a.PrefetchCount)
	}
	if a.IdleTimeout < 0 {
		return fmt.Errorf("idle-timeout must be >= 0 (got %s)", a.IdleTimeout)
	}
	if (a.AuthUser == "") != (a.AuthPass == "") {
		return fmt.Errorf("auth-user and auth-pass must be set together")
	}
	if strings.TrimSpace(a.APIURL) == "" {
		return fmt.Errorf("api-url must not be empty")
	}
	if a.Mode == app.ModeConvert {
		if _, err := convert.ParseRates(a.Rates); err != nil {
			return fmt.Errorf("rates: %w", err)
		}
	}
	return nil
}
