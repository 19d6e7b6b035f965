// Package config builds the application configuration from command-line
// flags, GLMEAL_* environment variables and an optional .env file.
//
// Priority, highest first: explicit flags, process environment, .env file
// entries, built-in defaults. godotenv never overrides variables already
// present in the environment.
package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/logging"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "GLMEAL_"

// Defaults.
const (
	DefaultBaseURL  = "http://localhost:5000"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "warn"
	DefaultEnvFile  = ".env"
)

// AppConfig holds every setting of the application.
type AppConfig struct {
	// BaseURL is the root URL of the meal-analysis service.
	BaseURL string
	// Token is the bearer token sent to metered endpoints.
	Token string
	// Timeout bounds each remote request.
	Timeout time.Duration

	// Meal is the free-text description for a one-shot run.
	Meal string
	// Smart selects the matching parser with disambiguation.
	Smart bool
	// Choices maps an ambiguous food name (lower case) to the candidate to
	// pick in one-shot mode.
	Choices map[string]string
	// Portions maps a food name (lower case) to the quantity to use in
	// one-shot mode, overriding the parsed quantity.
	Portions map[string]float64

	JSON  bool
	Quiet bool
	TUI   bool

	NoColor     bool
	LogLevel    string
	LogFile     string
	MetricsAddr string

	// Health prints the service status and exits.
	Health bool
	// Foods prints the service's food list and exits.
	Foods bool
	// Concurrency bounds parallel portion lookups.
	Concurrency int

	// EnvFile is the dotenv file loaded before environment overrides.
	EnvFile string
}

// Mode names the kind of run selected by the configuration.
type Mode string

const (
	ModeHealth      Mode = "health"
	ModeFoods       Mode = "foods"
	ModeInteractive Mode = "tui"
	ModeOneShot     Mode = "oneshot"
)

// Mode returns the run mode. Without a meal the interactive UI is used.
func (c AppConfig) Mode() Mode {
	switch {
	case c.Health:
		return ModeHealth
	case c.Foods:
		return ModeFoods
	case c.TUI || c.Meal == "":
		return ModeInteractive
	default:
		return ModeOneShot
	}
}

// PortionFor returns the configured quantity override for food.
func (c AppConfig) PortionFor(food string) (float64, bool) {
	q, ok := c.Portions[strings.ToLower(strings.TrimSpace(food))]
	return q, ok
}

// ChoiceFor returns the configured candidate for an ambiguous food name.
func (c AppConfig) ChoiceFor(originalName string) (string, bool) {
	v, ok := c.Choices[strings.ToLower(strings.TrimSpace(originalName))]
	return v, ok
}

// Validate checks the configuration for inconsistencies.
func (c AppConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("invalid -url %q: expected http(s)://host[:port]", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("-timeout must be positive, got %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return apperrors.NewConfigError("-concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid -log-level: %v", err)
	}
	if c.Health && c.Foods {
		return apperrors.NewConfigError("-health and -foods are mutually exclusive")
	}
	if c.TUI && c.JSON {
		return apperrors.NewConfigError("-json cannot be combined with -tui")
	}
	if c.Meal == "" && !c.Health && !c.Foods && (c.JSON || c.Quiet) {
		return apperrors.NewConfigError("-json and -quiet require -meal")
	}
	for food, q := range c.Portions {
		if q <= 0 {
			return apperrors.NewConfigError("-portion %s: quantity must be positive", food)
		}
	}
	return nil
}

// keyValueFlag collects repeatable "key=value" flags.
type keyValueFlag struct {
	entries map[string]string
}

func (f *keyValueFlag) String() string {
	if f == nil || len(f.entries) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f.entries[k]
	}
	return strings.Join(parts, ",")
}

func (f *keyValueFlag) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if !ok || key == "" || value == "" {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	if f.entries == nil {
		f.entries = map[string]string{}
	}
	f.entries[key] = value
	return nil
}

// ParseConfig parses command-line arguments into an AppConfig.
//
// Parameters:
//   - programName: Name shown in usage output.
//   - args: Arguments without the program name.
//   - errorWriter: Destination for usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp for -h, a ConfigError for invalid values, or a
//     flag parse error.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintln(errorWriter, "Estimate the glycemic load of a meal described in plain text.")
		fmt.Fprintln(errorWriter, "Without -meal an interactive terminal UI is started.")
		fmt.Fprintln(errorWriter)
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery flag can also be set with an %s<NAME> environment variable\n", EnvPrefix)
		fmt.Fprintln(errorWriter, "(e.g. GLMEAL_URL, GLMEAL_TOKEN) or in a .env file.")
	}

	config := AppConfig{}
	var choices, portions keyValueFlag

	fs.StringVar(&config.BaseURL, "url", DefaultBaseURL, "Base URL of the meal-analysis service.")
	fs.StringVar(&config.Token, "token", "", "Bearer token for the service.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Timeout of each remote request (e.g. 10s, 1m).")
	fs.StringVar(&config.Meal, "meal", "", "Meal description for a non-interactive run.")
	fs.StringVar(&config.Meal, "m", "", "Shorthand for -meal.")
	fs.BoolVar(&config.Smart, "smart", false, "Use database matching with disambiguation.")
	fs.Var(&choices, "choose", "Candidate for an ambiguous food, as name=candidate (repeatable).")
	fs.Var(&portions, "portion", "Quantity override, as food=quantity (repeatable).")
	fs.BoolVar(&config.JSON, "json", false, "Print the result as JSON.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the total glycemic load.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.TUI, "tui", false, "Force the interactive terminal UI.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error, disabled.")
	fs.StringVar(&config.LogFile, "log-file", "", "Write logs to this file instead of stderr.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.BoolVar(&config.Health, "health", false, "Print the service status and exit.")
	fs.BoolVar(&config.Foods, "foods", false, "List the foods known to the service and exit.")
	fs.IntVar(&config.Concurrency, "concurrency", EstimatePortionConcurrency(), "Maximum parallel portion lookups.")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "Dotenv file to load (missing file is ignored).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		if config.Meal != "" {
			return AppConfig{}, apperrors.NewConfigError("unexpected arguments %q after -meal", fs.Args())
		}
		config.Meal = strings.Join(fs.Args(), " ")
	}

	if err := loadEnvFile(config.EnvFile, isFlagSet(fs, "env-file")); err != nil {
		return AppConfig{}, err
	}
	applyEnvOverrides(&config, fs)

	config.Meal = strings.TrimSpace(config.Meal)
	config.Choices = choices.entries
	config.Portions = make(map[string]float64, len(portions.entries))
	for food, raw := range portions.entries {
		q, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return AppConfig{}, apperrors.NewConfigError("-portion %s=%s: %v", food, raw, err)
		}
		config.Portions[food] = q
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// loadEnvFile loads path into the process environment without overriding
// existing variables. A missing default file is not an error; a missing file
// named explicitly is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && isNotExist(err) {
			return nil
		}
		return apperrors.NewConfigError("cannot load env file %s: %v", path, err)
	}
	return nil
}
