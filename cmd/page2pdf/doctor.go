package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-page2pdf/internal/config"
	"github.com/alnah/go-page2pdf/internal/devtools"
	"github.com/alnah/go-page2pdf/internal/locator"
	"github.com/alnah/go-page2pdf/internal/port"
)

// Doctor probe bounds.
const (
	versionTimeout = 10 * time.Second
	probeTimeout   = 2 * time.Second
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	Remote   *remoteInfo `json:"remote,omitempty"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// remoteInfo holds the probe of the configured remote browser.
type remoteInfo struct {
	Addr      string `json:"addr"`
	Reachable bool   `json:"reachable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	ChromeBinary  string `json:"chrome_binary,omitempty"`
	ChromeOptions string `json:"chrome_options,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
	DebugPort    int  `json:"debug_port,omitempty"` // a free port the next render could use
}

// doctor runs the checks. Each probe is a field so tests can stub the system.
type doctor struct {
	getenv    func(string) string
	detect    func() (string, error)
	version   func(ctx context.Context, bin string) (string, error)
	freePort  func(ctx context.Context) (int, error)
	probe     func(ctx context.Context, ep devtools.Endpoint) error
	container func() (bool, string)
	tempDir   func() string
}

// newDoctor returns a doctor probing the real system.
func newDoctor() *doctor {
	return &doctor{
		getenv:    os.Getenv,
		detect:    locator.New().Detect,
		version:   chromeVersion,
		freePort:  port.New().SelectFreePort,
		probe:     devtools.NewWaiter(nil).WaitForPort,
		container: isContainer,
		tempDir:   os.TempDir,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var (
		jsonOutput bool
		configName string
	)
	fs.BoolVar(&jsonOutput, "json", false, "machine-readable output")
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'page2pdf help doctor' for usage.")
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(env.Stderr, "error: unexpected argument %s\n", fs.Arg(0))
		return ExitUsage
	}

	cfg, err := resolveDoctorConfig(configName, loadEnvConfig(), env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, configHint(err, configName))
		return exitCodeFor(err)
	}

	result := newDoctor().run(ctx, cfg.Browser)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// resolveDoctorConfig layers the config file and the environment the same
// way render does, so the doctor checks the browser render would use.
func resolveDoctorConfig(flagName string, envCfg *envConfig, env *Environment) (*config.Config, error) {
	cfg, err := loadConfig(flagName, envCfg.ConfigPath, env.Config)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run performs all diagnostic checks against the resolved browser settings.
func (d *doctor) run(ctx context.Context, browser config.BrowserConfig) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:            runtime.GOOS,
			Arch:          runtime.GOARCH,
			ChromeBinary:  browser.Binary,
			ChromeOptions: strings.Join(browser.Flags, " "),
		},
	}

	if browser.RemoteHost != "" {
		ep := devtools.Endpoint{Host: browser.RemoteHost, Port: browser.RemotePort}
		if ep.Port == 0 {
			ep.Port = devtools.DefaultRemotePort
		}
		d.checkRemote(ctx, result, ep)
	} else {
		d.checkChrome(ctx, result, browser)
		d.checkPort(ctx, result)
	}
	d.checkEnvironment(result)
	d.checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkChrome detects the browser the render command would launch.
func (d *doctor) checkChrome(ctx context.Context, result *doctorResult, browser config.BrowserConfig) {
	bin := browser.Binary
	if bin == "" {
		var err error
		if bin, err = d.detect(); err != nil {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set PAGE2PDF_CHROME_BINARY (or browser.binary in the config)")
			return
		}
	}

	result.Chrome.Found = true
	result.Chrome.Path = bin

	vctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	v, err := d.version(vctx, bin)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	} else {
		result.Chrome.Version = v
		if strings.Contains(v, " 64.") {
			result.Warnings = append(result.Warnings,
				"Chrome 64 is known to produce broken captures, upgrade it")
		}
	}

	result.Chrome.Sandbox = !slices.Contains(browser.Flags, "--no-sandbox")
}

// checkPort verifies a debug port can be allocated.
func (d *doctor) checkPort(ctx context.Context, result *doctorResult) {
	p, err := d.freePort(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("No free debug port: %v", err))
		return
	}
	result.System.DebugPort = p
}

// checkRemote probes the remote browser's debug port.
func (d *doctor) checkRemote(ctx context.Context, result *doctorResult, ep devtools.Endpoint) {
	result.Remote = &remoteInfo{Addr: ep.Addr()}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := d.probe(pctx, ep); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Remote browser unreachable at %s", ep.Addr()))
		return
	}
	result.Remote.Reachable = true
}

// checkEnvironment detects container and CI environments.
func (d *doctor) checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = d.container()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if d.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// A remote browser's sandbox is not ours to configure.
	if result.Remote == nil && result.Chrome.Found && result.Chrome.Sandbox &&
		(result.Env.Container || result.Env.CI) {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but sandbox enabled. Set PAGE2PDF_CHROME_OPTIONS=--no-sandbox")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("PAGE2PDF_CONTAINER") == "1" {
		return true, "PAGE2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func (d *doctor) checkSystem(result *doctorResult) {
	tmpDir := d.tempDir()
	f, err := os.CreateTemp(tmpDir, "page2pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// chromeVersion runs "<bin> --version".
func chromeVersion(ctx context.Context, bin string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- binary chosen by locator or user
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "page2pdf doctor")
	fmt.Fprintln(w)

	if r.Remote != nil {
		fmt.Fprintln(w, "Remote browser")
		if r.Remote.Reachable {
			fmt.Fprintf(w, "  [OK] Reachable at %s\n", r.Remote.Addr)
		} else {
			fmt.Fprintf(w, "  [ERROR] Unreachable at %s\n", r.Remote.Addr)
		}
	} else {
		fmt.Fprintln(w, "Chrome/Chromium")
		if r.Chrome.Found {
			fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
			if r.Chrome.Version != "" {
				fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
			}
			if r.Chrome.Sandbox {
				fmt.Fprintln(w, "  [OK] Sandbox: enabled")
			} else {
				fmt.Fprintln(w, "  [OK] Sandbox: disabled (--no-sandbox)")
			}
		} else {
			fmt.Fprintln(w, "  [ERROR] Not found")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.DebugPort != 0 {
		fmt.Fprintf(w, "  [OK] Debug port: %d available\n", r.System.DebugPort)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
