package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-page2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // PAGE2PDF_CONFIG: config file name or path

	// Browser
	ChromeBinary  string   // PAGE2PDF_CHROME_BINARY
	ChromeOptions []string // PAGE2PDF_CHROME_OPTIONS: space-separated flags
	RemoteHost    string   // PAGE2PDF_REMOTE_HOST
	RemotePort    int      // PAGE2PDF_REMOTE_PORT
	WindowSize    string   // PAGE2PDF_WINDOW_SIZE

	// Output
	Format string // PAGE2PDF_FORMAT

	// Timeouts
	ConnectTimeout time.Duration // PAGE2PDF_CONNECT_TIMEOUT
	JobTimeout     time.Duration // PAGE2PDF_JOB_TIMEOUT

	// Logging
	PrintLogs   *bool // PAGE2PDF_PRINT_LOGS
	PrintErrors *bool // PAGE2PDF_PRINT_ERRORS
}

// knownEnvVars lists valid PAGE2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAGE2PDF_CONFIG":          true,
	"PAGE2PDF_CHROME_BINARY":   true,
	"PAGE2PDF_CHROME_OPTIONS":  true,
	"PAGE2PDF_REMOTE_HOST":     true,
	"PAGE2PDF_REMOTE_PORT":     true,
	"PAGE2PDF_WINDOW_SIZE":     true,
	"PAGE2PDF_FORMAT":          true,
	"PAGE2PDF_CONNECT_TIMEOUT": true,
	"PAGE2PDF_JOB_TIMEOUT":     true,
	"PAGE2PDF_PRINT_LOGS":      true,
	"PAGE2PDF_PRINT_ERRORS":    true,
	"PAGE2PDF_CONTAINER":       true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers, durations and booleans are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("PAGE2PDF_CONFIG"),
		ChromeBinary:  os.Getenv("PAGE2PDF_CHROME_BINARY"),
		ChromeOptions: strings.Fields(os.Getenv("PAGE2PDF_CHROME_OPTIONS")),
		RemoteHost:    os.Getenv("PAGE2PDF_REMOTE_HOST"),
		WindowSize:    os.Getenv("PAGE2PDF_WINDOW_SIZE"),
		Format:        os.Getenv("PAGE2PDF_FORMAT"),
		PrintLogs:     envBool("PAGE2PDF_PRINT_LOGS"),
		PrintErrors:   envBool("PAGE2PDF_PRINT_ERRORS"),
	}

	if port := os.Getenv("PAGE2PDF_REMOTE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			cfg.RemotePort = p
		}
	}
	cfg.ConnectTimeout = envDuration("PAGE2PDF_CONNECT_TIMEOUT")
	cfg.JobTimeout = envDuration("PAGE2PDF_JOB_TIMEOUT")

	return cfg
}

func envBool(name string) *bool {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// warnUnknownEnvVars writes a warning for each unrecognized PAGE2PDF_* variable.
// Helps catch typos like PAGE2PDF_REMOTEHOST.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PAGE2PDF_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the environment.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.ChromeBinary != "" {
		cfg.Browser.Binary = env.ChromeBinary
	}
	if len(env.ChromeOptions) > 0 {
		cfg.Browser.Flags = append(cfg.Browser.Flags, env.ChromeOptions...)
	}
	if env.RemoteHost != "" {
		cfg.Browser.RemoteHost = env.RemoteHost
	}
	if env.RemotePort != 0 {
		cfg.Browser.RemotePort = env.RemotePort
	}
	if env.WindowSize != "" {
		cfg.Browser.WindowSize = env.WindowSize
	}

	if env.Format != "" {
		cfg.Render.Format = env.Format
	}

	if env.ConnectTimeout > 0 {
		cfg.Timeouts.Connect = env.ConnectTimeout.String()
	}
	if env.JobTimeout > 0 {
		cfg.Timeouts.Job = env.JobTimeout.String()
	}

	if env.PrintLogs != nil {
		cfg.Log.PrintLogs = env.PrintLogs
	}
	if env.PrintErrors != nil {
		cfg.Log.PrintErrors = env.PrintErrors
	}
}
