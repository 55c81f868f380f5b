// Package config provides configuration loading and validation for the
// tracker CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Store kinds accepted in Config.Store.
const (
	StoreAPI        = "api"
	StoreRepository = "repository"
	StoreWorkbook   = "workbook"
	StoreSheets     = "sheets"
	StoreMemory     = "memory"
)

// Config represents the tracker configuration. It can be loaded from a JSON
// file; environment variables override file values.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL, sqlite://<path> or memory://

	// Candidate store used by the tracker
	Store             string `json:"store,omitempty" validate:"omitempty,oneof=api repository workbook sheets memory"`
	APIURL            string `json:"api_url,omitempty" validate:"omitempty,url"`
	APIToken          string `json:"api_token,omitempty"`
	WorkbookPath      string `json:"workbook_path,omitempty"`
	SpreadsheetID     string `json:"spreadsheet_id,omitempty"`
	SheetsCredentials string `json:"sheets_credentials,omitempty"` // Service-account JSON file

	// Tracking
	Recruiter           string `json:"recruiter,omitempty" validate:"max=200"` // Default processed-by value
	ProcessIntervalMS   int    `json:"process_interval_ms,omitempty" validate:"gte=0"`
	DebounceMS          int    `json:"debounce_ms,omitempty" validate:"gte=0"`
	MinNavigationGapMS  int    `json:"min_navigation_gap_ms,omitempty" validate:"gte=0"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds,omitempty" validate:"gte=0"`
	Workers             int    `json:"workers,omitempty" validate:"gte=0,lte=64"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Render profiles with headless Chrome
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                3000,
		Store:               StoreAPI,
		APIURL:              "http://localhost:3000",
		ProcessIntervalMS:   1500,
		DebounceMS:          1500,
		MinNavigationGapMS:  3000,
		FetchTimeoutSeconds: 30,
		Workers:             4,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any of these environment variables that
// are set: PORT, DATABASE_URL, CANDIDATE_STORE, CANDIDATE_API_URL,
// CANDIDATE_API_TOKEN, WORKBOOK_PATH, SPREADSHEET_ID,
// GOOGLE_APPLICATION_CREDENTIALS and RECRUITER. Malformed PORT values are
// ignored.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Store, "CANDIDATE_STORE")
	setString(&c.APIURL, "CANDIDATE_API_URL")
	setString(&c.APIToken, "CANDIDATE_API_TOKEN")
	setString(&c.WorkbookPath, "WORKBOOK_PATH")
	setString(&c.SpreadsheetID, "SPREADSHEET_ID")
	setString(&c.SheetsCredentials, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Recruiter, "RECRUITER")
}

// Validate checks field ranges with validator tags, then the settings each
// store kind requires.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", jsonName(fe.StructField()), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	switch c.Store {
	case StoreAPI:
		if c.APIURL == "" {
			return fmt.Errorf("config error: 'api_url' is required for the api store")
		}
	case StoreWorkbook:
		if c.WorkbookPath == "" {
			return fmt.Errorf("config error: 'workbook_path' is required for the workbook store")
		}
	case StoreSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("config error: 'spreadsheet_id' is required for the sheets store")
		}
		if c.SheetsCredentials != "" {
			if _, err := os.Stat(c.SheetsCredentials); os.IsNotExist(err) {
				return fmt.Errorf("config error: credentials file not found: %s", c.SheetsCredentials)
			}
		}
	}
	return nil
}

// jsonName maps a struct field to its JSON key for error messages.
func jsonName(field string) string {
	names := map[string]string{
		"Port":                "port",
		"Store":               "store",
		"APIURL":              "api_url",
		"Recruiter":           "recruiter",
		"ProcessIntervalMS":   "process_interval_ms",
		"DebounceMS":          "debounce_ms",
		"MinNavigationGapMS":  "min_navigation_gap_ms",
		"FetchTimeoutSeconds": "fetch_timeout_seconds",
		"Workers":             "workers",
	}
	if name, ok := names[field]; ok {
		return name
	}
	return field
}

// MergeWithDefaults returns a new Config with zero fields filled from
// defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct{ dst, def *string }{
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.Store, &defaults.Store},
		{&result.APIURL, &defaults.APIURL},
		{&result.APIToken, &defaults.APIToken},
		{&result.WorkbookPath, &defaults.WorkbookPath},
		{&result.SpreadsheetID, &defaults.SpreadsheetID},
		{&result.SheetsCredentials, &defaults.SheetsCredentials},
		{&result.Recruiter, &defaults.Recruiter},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}

	// Int fields: use default if zero
	for _, f := range []struct{ dst, def *int }{
		{&result.Port, &defaults.Port},
		{&result.ProcessIntervalMS, &defaults.ProcessIntervalMS},
		{&result.DebounceMS, &defaults.DebounceMS},
		{&result.MinNavigationGapMS, &defaults.MinNavigationGapMS},
		{&result.FetchTimeoutSeconds, &defaults.FetchTimeoutSeconds},
		{&result.Workers, &defaults.Workers},
	} {
		if *f.dst == 0 {
			*f.dst = *f.def
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ProcessInterval is the minimum time between extraction passes.
func (c *Config) ProcessInterval() time.Duration {
	return time.Duration(c.ProcessIntervalMS) * time.Millisecond
}

// Debounce is the delay before re-extracting after a navigation.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// MinNavigationGap is the minimum time between navigation-triggered passes.
func (c *Config) MinNavigationGap() time.Duration {
	return time.Duration(c.MinNavigationGapMS) * time.Millisecond
}

// FetchTimeout bounds a single page fetch.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
