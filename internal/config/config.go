// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Input     string `json:"input,omitempty"`      // Path to customer batch file (.xlsx, .csv, .txt)
	OutputDir string `json:"output_dir,omitempty"` // Directory receiving generated PDFs
	FontPath  string `json:"font_path,omitempty"`  // Path to a TTF font with Hangul and CJK coverage

	// Generation
	ServiceID string `json:"service_id,omitempty"` // Catalog service to generate reports for
	Workers   int    `json:"workers,omitempty"`    // Concurrent customers processed per batch

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed progress information

	// Mail delivery (optional; reports are mailed only when configured)
	SendGridAPIKey string `json:"sendgrid_api_key,omitempty"`
	MailFrom       string `json:"mail_from,omitempty"`
	MailFromName   string `json:"mail_from_name,omitempty"`

	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // Address for serve mode, e.g. ":8080"
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}
	if c.FontPath != "" {
		if _, err := os.Stat(c.FontPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: font file not found: %s", c.FontPath)
		}
	}

	// Mail settings travel together.
	if c.SendGridAPIKey != "" && c.MailFrom == "" {
		return fmt.Errorf("config error: 'mail_from' is required when 'sendgrid_api_key' is set")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.FontPath == "" {
		result.FontPath = defaults.FontPath
	}
	if result.ServiceID == "" {
		result.ServiceID = defaults.ServiceID
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SendGridAPIKey == "" {
		result.SendGridAPIKey = defaults.SendGridAPIKey
	}
	if result.MailFrom == "" {
		result.MailFrom = defaults.MailFrom
	}
	if result.MailFromName == "" {
		result.MailFromName = defaults.MailFromName
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Workers == 0 {
		result.Workers = 4
	}

	if result.OutputDir == "" {
		result.OutputDir = "reports"
	}
	if result.ListenAddr == "" {
		result.ListenAddr = ":8080"
	}

	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
