// Package config loads render defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-page2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory under os.UserConfigDir searched for configs.
const appDir = "go-page2pdf"

// Config holds defaults for the render command. Unset fields leave the
// command-line default in place.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Render   RenderConfig   `yaml:"render"`
	Log      LogConfig      `yaml:"log"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// BrowserConfig selects and configures the browser.
type BrowserConfig struct {
	Binary     string   `yaml:"binary"`     // empty = detect
	Flags      []string `yaml:"flags"`      // appended verbatim
	RemoteHost string   `yaml:"remoteHost"` // set = attach, never spawn
	RemotePort int      `yaml:"remotePort"` // default 9222
	WindowSize string   `yaml:"windowSize"` // "1280,800"
}

// RenderConfig defines output settings.
type RenderConfig struct {
	Format            string   `yaml:"format"` // pdf, png, jpeg, webp
	Landscape         *bool    `yaml:"landscape"`
	NoMargins         bool     `yaml:"noMargins"`
	IncludeBackground *bool    `yaml:"includeBackground"`
	PaperWidth        *float64 `yaml:"paperWidth"`  // inches
	PaperHeight       *float64 `yaml:"paperHeight"` // inches
	PageRanges        string   `yaml:"pageRanges"`
	Scale             *float64 `yaml:"scale"`
}

// LogConfig switches log output.
type LogConfig struct {
	PrintLogs   *bool `yaml:"printLogs"`
	PrintErrors *bool `yaml:"printErrors"`
}

// TimeoutsConfig holds Go duration strings ("30s", "2m").
type TimeoutsConfig struct {
	Connect string `yaml:"connect"`
	Job     string `yaml:"job"`
}

// Validate checks values that the YAML types cannot.
func (c *Config) Validate() error {
	if c.Browser.RemotePort < 0 || c.Browser.RemotePort > 65535 {
		return fmt.Errorf("%w: browser.remotePort: %d out of range", ErrInvalidValue, c.Browser.RemotePort)
	}
	if c.Browser.WindowSize != "" {
		if _, _, err := ParseWindowSize(c.Browser.WindowSize); err != nil {
			return fmt.Errorf("%w: browser.windowSize: %v", ErrInvalidValue, err)
		}
	}

	switch strings.ToLower(c.Render.Format) {
	case "", "pdf", "png", "jpeg", "jpg", "webp":
	default:
		return fmt.Errorf("%w: render.format: %q (must be pdf, png, jpeg or webp)", ErrInvalidValue, c.Render.Format)
	}
	for name, v := range map[string]*float64{
		"render.paperWidth":  c.Render.PaperWidth,
		"render.paperHeight": c.Render.PaperHeight,
	} {
		if v != nil && (math.IsNaN(*v) || *v <= 0) {
			return fmt.Errorf("%w: %s: must be positive, got %v", ErrInvalidValue, name, *v)
		}
	}
	if s := c.Render.Scale; s != nil && (math.IsNaN(*s) || math.IsInf(*s, 0)) {
		return fmt.Errorf("%w: render.scale: %v", ErrInvalidValue, *s)
	}

	if _, err := c.ConnectTimeout(); err != nil {
		return err
	}
	_, err := c.JobTimeout()
	return err
}

// ConnectTimeout parses timeouts.connect. Zero means unset.
func (c *Config) ConnectTimeout() (time.Duration, error) {
	return parseTimeout("timeouts.connect", c.Timeouts.Connect)
}

// JobTimeout parses timeouts.job. Zero means unset.
func (c *Config) JobTimeout() (time.Duration, error) {
	return parseTimeout("timeouts.job", c.Timeouts.Job)
}

func parseTimeout(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, field, s)
	}
	return d, nil
}

// ParseWindowSize parses "W,H" (an "x" separator is accepted too).
func ParseWindowSize(s string) (width, height int, err error) {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = "x"
	}
	w, h, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("window size %q: want W,H", s)
	}
	width, werr := strconv.Atoi(strings.TrimSpace(w))
	height, herr := strconv.Atoi(strings.TrimSpace(h))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("window size %q: want positive integers W,H", s)
	}
	return width, height, nil
}

// DefaultConfig returns an empty configuration: every field unset.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
// An empty document yields the default config.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yamlutil.DecodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths returns the candidate files for name, in lookup order:
// current directory, then <UserConfigDir>/go-page2pdf/, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing search path for name.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
