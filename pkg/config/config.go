package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// ErrMissingConfiguration is returned when a required destination or
// credential setting is absent.
var ErrMissingConfiguration = errors.New("missing configuration")

// Behaviours when no destination spreadsheet is configured.
const (
	OnMissingAbort = "abort"
	OnMissingPrint = "print"
)

// Config holds the settings of both stages. Stages take it as an argument;
// nothing reads the environment after Load.
type Config struct {
	// Trainer
	SourceCSV string // historical records, also the synthesis pool
	ModelPath string
	Regressor string // "linear", "forest" or "knn"
	Trees     int
	MaxDepth  int // forest tree depth, 0 => unlimited
	Neighbors int
	Evaluate  bool    // report MAE/RMSE on a held-out split
	TestRatio float64 // held-out fraction
	Refit     bool    // refit on all rows after evaluating
	Seed      int64   // split and forest seed

	// Predictor
	NewEntriesCSV        string
	Samples              int
	NoiseSeed            int64 // 0 => seeded from the clock
	ServiceAccountFile   string
	SpreadsheetURL       string
	SpreadsheetKey       string
	OnMissingDestination string
	Schedule             string // cron spec; empty => run once

	// Ambient
	LogLevel       string
	LogFormat      string
	PushgatewayURL string

	DotEnv bool // a .env file was found and loaded
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		SourceCSV: "data/responses.csv",
		ModelPath: "models/pipeline.gob",
		Regressor: "linear",
		Trees:     100,
		Neighbors: 5,
		Evaluate:  true,
		TestRatio: 0.2,
		Refit:     true,
		Seed:      42,

		NewEntriesCSV:        "data/new_entries.csv",
		Samples:              5,
		ServiceAccountFile:   "service_account.json",
		OnMissingDestination: OnMissingAbort,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads an optional .env file, then overlays environment variables on
// the defaults. The result is not validated: callers apply their flag
// overrides first and call Validate once.
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	d := Default()
	cfg := &Config{
		SourceCSV: getEnv("EXISTING_CSV", d.SourceCSV),
		ModelPath: getEnv("MODEL_PATH", d.ModelPath),
		Regressor: strings.ToLower(getEnv("REGRESSOR", d.Regressor)),
		Trees:     getEnvInt("FOREST_TREES", d.Trees),
		MaxDepth:  getEnvInt("FOREST_MAX_DEPTH", d.MaxDepth),
		Neighbors: getEnvInt("KNN_NEIGHBORS", d.Neighbors),
		Evaluate:  getEnvBool("EVALUATE", d.Evaluate),
		TestRatio: getEnvFloat("TEST_RATIO", d.TestRatio),
		Refit:     getEnvBool("REFIT", d.Refit),
		Seed:      int64(getEnvInt("SEED", int(d.Seed))),

		NewEntriesCSV:        getEnv("NEW_ENTRIES_CSV", d.NewEntriesCSV),
		Samples:              getEnvInt("SYNTHETIC_SAMPLES", d.Samples),
		NoiseSeed:            int64(getEnvInt("NOISE_SEED", int(d.NoiseSeed))),
		ServiceAccountFile:   getEnv("SERVICE_ACCOUNT_FILE", d.ServiceAccountFile),
		SpreadsheetURL:       getEnv("SPREADSHEET_URL", ""),
		SpreadsheetKey:       getEnv("SPREADSHEET_KEY", ""),
		OnMissingDestination: strings.ToLower(getEnv("ON_MISSING_DESTINATION", d.OnMissingDestination)),
		Schedule:             getEnv("PREDICT_SCHEDULE", ""),

		LogLevel:       getEnv("LOG_LEVEL", d.LogLevel),
		LogFormat:      getEnv("LOG_FORMAT", d.LogFormat),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
	}
	cfg.DotEnv = envFileLoaded
	return cfg
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch c.Regressor {
	case "linear", "forest", "knn":
	default:
		return fmt.Errorf("config: REGRESSOR must be linear, forest or knn, got %q", c.Regressor)
	}
	switch c.OnMissingDestination {
	case OnMissingAbort, OnMissingPrint:
	default:
		return fmt.Errorf("config: ON_MISSING_DESTINATION must be %s or %s, got %q",
			OnMissingAbort, OnMissingPrint, c.OnMissingDestination)
	}
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		return fmt.Errorf("config: TEST_RATIO must be in (0,1), got %v", c.TestRatio)
	}
	if c.Samples < 1 {
		return fmt.Errorf("config: SYNTHETIC_SAMPLES must be positive, got %d", c.Samples)
	}
	if c.Trees < 1 {
		return fmt.Errorf("config: FOREST_TREES must be positive, got %d", c.Trees)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: FOREST_MAX_DEPTH must not be negative, got %d", c.MaxDepth)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("config: KNN_NEIGHBORS must be positive, got %d", c.Neighbors)
	}
	return nil
}

// Destination returns the configured spreadsheet URL or key, URL first.
func (c *Config) Destination() string {
	if c.SpreadsheetURL != "" {
		return c.SpreadsheetURL
	}
	return c.SpreadsheetKey
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := cast.ToFloat64E(strings.TrimSpace(val))
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := cast.ToBoolE(strings.ToLower(strings.TrimSpace(val)))
		if err == nil {
			return b
		}
	}
	return fallback
}
