// Package process spawns and supervises the headless browser process.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sentinel errors for process supervision.
var (
	ErrSpawn        = errors.New("failed to start browser")
	ErrStillRunning = errors.New("browser did not exit after kill")
)

// terminateWait bounds how long Terminate waits for exit diagnostics.
const terminateWait = 5 * time.Second

// WindowSize is the optional --window-size flag value.
type WindowSize struct {
	Width  int
	Height int
}

// String formats the size as the browser expects it: "W,H".
func (w WindowSize) String() string {
	return strconv.Itoa(w.Width) + "," + strconv.Itoa(w.Height)
}

// Spec describes one browser launch.
type Spec struct {
	Bin        string
	Port       int
	Flags      []string    // caller-supplied extra flags, passed verbatim
	WindowSize *WindowSize // nil = browser default
	Logger     *slog.Logger
}

// Args returns the command line for the launch, without the binary.
func (s Spec) Args() []string {
	args := []string{
		"--headless",
		"--remote-debugging-port=" + strconv.Itoa(s.Port),
		"--disable-gpu",
	}
	args = append(args, s.Flags...)
	if s.WindowSize != nil {
		args = append(args, "--window-size="+s.WindowSize.String())
	}
	return args
}

// Process is the handle to a spawned browser. It is owned by exactly one session.
type Process struct {
	cmd    *exec.Cmd
	log    *slog.Logger
	stdout *output
	stderr *output
	done   chan struct{}
	once   sync.Once
	code   int
}

// output accumulates a stream for post-mortem diagnostics.
type output struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

// Spawn starts the browser described by spec. Stdout and stderr are drained
// in the background and logged once the process exits.
func Spawn(ctx context.Context, spec Spec) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := spec.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cmd := exec.Command(spec.Bin, spec.Args()...) // #nosec G204 -- binary chosen by locator or user
	detach(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, spec.Bin, err)
	}

	p := &Process{
		cmd:    cmd,
		log:    log,
		stdout: &output{},
		stderr: &output{},
		done:   make(chan struct{}),
		code:   -1,
	}

	var g errgroup.Group
	g.Go(func() error { return drain(p.stdout, stdout) })
	g.Go(func() error { return drain(p.stderr, stderr) })
	go p.watch(&g)

	log.Info("browser started", "bin", spec.Bin, "pid", cmd.Process.Pid, "port", spec.Port)
	return p, nil
}

// drain copies r into o until EOF.
func drain(o *output, r io.Reader) error {
	_, err := io.Copy(o, r)
	return err
}

// watch waits for both streams to close, reaps the process and logs diagnostics.
func (p *Process) watch(g *errgroup.Group) {
	_ = g.Wait()
	_ = p.cmd.Wait()
	if p.cmd.ProcessState != nil {
		p.code = p.cmd.ProcessState.ExitCode()
	}

	p.log.Info("browser stopped", "code", p.code)
	p.logStream("out", p.stdout.String())
	p.logStream("err", p.stderr.String())
	close(p.done)
}

func (p *Process) logStream(stream, data string) {
	for _, line := range strings.Split(data, "\n") {
		if line = strings.TrimRight(line, "\r"); line == "" {
			continue
		}
		p.log.Info("(chrome) ("+stream+") "+line, "stream", stream)
	}
}

// PID returns the process id of the browser.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Done is closed once the process exited and its output was logged.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitCode returns the exit code, or -1 while running or when killed by a signal.
func (p *Process) ExitCode() int {
	select {
	case <-p.done:
		return p.code
	default:
		return -1
	}
}

// Stdout returns the output captured so far.
func (p *Process) Stdout() string { return p.stdout.String() }

// Stderr returns the error output captured so far.
func (p *Process) Stderr() string { return p.stderr.String() }

// Terminate force-kills the browser and its children, then waits for the
// exit diagnostics. Safe to call more than once.
func (p *Process) Terminate() error {
	var err error
	p.once.Do(func() {
		KillProcessGroup(p.cmd.Process.Pid)
		if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = kerr
		}

		select {
		case <-p.done:
		case <-time.After(terminateWait):
			err = errors.Join(err, fmt.Errorf("%w: pid %d", ErrStillRunning, p.cmd.Process.Pid))
		}
	})
	return err
}
