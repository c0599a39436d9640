// Package render drives one page through navigation, staged waits and capture.
//
// A render walks a fixed sequence of phases over an open protocol session:
//
//	Navigating -> WaitingForLoad -> WaitingForScriptSettle ->
//	WaitingForAnimationSettle -> Capturing -> Done
//
// Any error moves the render to Failed. The session stays usable for the
// next render either way.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Sentinel errors for render failures.
var (
	ErrProtocol = errors.New("protocol call failed")
	ErrTimeout  = errors.New("render timed out")
)

// Wait-strategy defaults.
const (
	DefaultVirtualTimeBudget = 5000.0 // virtual milliseconds
	DefaultIdleWindow        = 100 * time.Millisecond
	DefaultSettleCeiling     = 5 * time.Second
)

// Phase is a state of the render state machine.
type Phase int

// Phases in the order a successful render visits them.
const (
	PhaseNavigating Phase = iota
	PhaseWaitingForLoad
	PhaseWaitingForScriptSettle
	PhaseWaitingForAnimationSettle
	PhaseCapturing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseNavigating:
		return "navigating"
	case PhaseWaitingForLoad:
		return "waiting for load"
	case PhaseWaitingForScriptSettle:
		return "waiting for script settle"
	case PhaseWaitingForAnimationSettle:
		return "waiting for animation settle"
	case PhaseCapturing:
		return "capturing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Request is one page to render. A non-nil PDF selects Page.printToPDF;
// otherwise Screenshot (or a PNG default) is used.
type Request struct {
	URL        string
	PDF        *proto.PagePrintToPDF
	Screenshot *proto.PageCaptureScreenshot
}

// Pipeline holds the wait strategy. The zero value uses the defaults.
type Pipeline struct {
	Budget        float64       // virtual time budget in virtual ms
	IdleWindow    time.Duration // quiet period that ends animation settle
	SettleCeiling time.Duration // hard cap on animation settle
	Logger        *slog.Logger

	// OnPhase, if set, observes every phase transition.
	OnPhase func(Phase)
}

// New returns a Pipeline with the default wait strategy.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Budget:        DefaultVirtualTimeBudget,
		IdleWindow:    DefaultIdleWindow,
		SettleCeiling: DefaultSettleCeiling,
		Logger:        logger,
	}
}

// Render drives s through every phase and returns the captured bytes.
// Waits end early only when ctx ends; a deadline yields ErrTimeout.
func (p *Pipeline) Render(ctx context.Context, s Session, req Request) (data []byte, err error) {
	// Cancelling releases every subscription armed for this render.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if err != nil {
			p.enter(PhaseFailed)
		}
	}()

	log := p.logger().With("url", req.URL)
	log.Info("opening")

	p.enter(PhaseNavigating)
	if err := s.EnableDomains(ctx); err != nil {
		return nil, p.fail(ctx, PhaseNavigating, "enable domains", err)
	}

	loaded := s.Once(ctx, EventLoad)
	settled := s.Once(ctx, EventBudgetExpired)

	if err := s.Navigate(ctx, req.URL); err != nil {
		return nil, p.fail(ctx, PhaseNavigating, "navigate", err)
	}
	budget := p.budget()
	policy := &proto.EmulationSetVirtualTimePolicy{
		Policy: proto.EmulationVirtualTimePolicyPauseIfNetworkFetchesPending,
		Budget: &budget,
	}
	if err := s.SetVirtualTimePolicy(ctx, policy); err != nil {
		return nil, p.fail(ctx, PhaseNavigating, "set virtual time policy", err)
	}

	p.enter(PhaseWaitingForLoad)
	if err := p.await(ctx, log, PhaseWaitingForLoad, loaded); err != nil {
		return nil, err
	}

	p.enter(PhaseWaitingForScriptSettle)
	if err := p.await(ctx, log, PhaseWaitingForScriptSettle, settled); err != nil {
		return nil, err
	}

	p.enter(PhaseWaitingForAnimationSettle)
	if err := p.settleAnimations(ctx, log, s); err != nil {
		return nil, err
	}

	p.enter(PhaseCapturing)
	data, err = p.capture(ctx, s, req)
	if err != nil {
		return nil, err
	}

	p.enter(PhaseDone)
	return data, nil
}

// await blocks until ch fires or ctx ends.
func (p *Pipeline) await(ctx context.Context, log *slog.Logger, phase Phase, ch <-chan struct{}) error {
	start := time.Now()
	select {
	case <-ch:
		log.Info(phase.String(), "took", time.Since(start).Round(time.Millisecond))
		return nil
	case <-ctx.Done():
		return p.interrupted(ctx, phase)
	}
}

// settleAnimations resolves after IdleWindow without a layer paint, or at
// SettleCeiling, whichever comes first.
func (p *Pipeline) settleAnimations(ctx context.Context, log *slog.Logger, s Session) error {
	paintCtx, stop := context.WithCancel(ctx)
	defer stop()

	start := time.Now()
	paints := s.Each(paintCtx, EventLayerPainted)

	ceiling := time.NewTimer(p.ceiling())
	defer ceiling.Stop()
	idle := time.NewTimer(p.idle())
	defer idle.Stop()

	for {
		select {
		case _, ok := <-paints:
			if !ok {
				paints = nil
				continue
			}
			idle.Reset(p.idle())
		case <-idle.C:
			log.Info(PhaseWaitingForAnimationSettle.String(), "took", time.Since(start).Round(time.Millisecond))
			return nil
		case <-ceiling.C:
			log.Info(PhaseWaitingForAnimationSettle.String(), "took", time.Since(start).Round(time.Millisecond), "ceiling", true)
			return nil
		case <-ctx.Done():
			return p.interrupted(ctx, PhaseWaitingForAnimationSettle)
		}
	}
}

func (p *Pipeline) capture(ctx context.Context, s Session, req Request) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if req.PDF != nil {
		data, err = s.PrintToPDF(ctx, req.PDF)
	} else {
		shot := req.Screenshot
		if shot == nil {
			shot = &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
		}
		data, err = s.CaptureScreenshot(ctx, shot)
	}
	if err != nil {
		return nil, p.fail(ctx, PhaseCapturing, "capture", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: capture: empty payload", ErrProtocol)
	}
	return data, nil
}

// fail classifies an error from a protocol call made during phase.
func (p *Pipeline) fail(ctx context.Context, phase Phase, op string, err error) error {
	if ctx.Err() != nil {
		return p.interrupted(ctx, phase)
	}
	return fmt.Errorf("%w: %s: %s: %v", ErrProtocol, phase, op, err)
}

// interrupted reports why ctx ended during phase.
func (p *Pipeline) interrupted(ctx context.Context, phase Phase) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, phase, ctx.Err())
	}
	return fmt.Errorf("%s: %w", phase, ctx.Err())
}

func (p *Pipeline) enter(phase Phase) {
	if p.OnPhase != nil {
		p.OnPhase(phase)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (p *Pipeline) budget() float64 {
	if p.Budget > 0 {
		return p.Budget
	}
	return DefaultVirtualTimeBudget
}

func (p *Pipeline) idle() time.Duration {
	if p.IdleWindow > 0 {
		return p.IdleWindow
	}
	return DefaultIdleWindow
}

func (p *Pipeline) ceiling() time.Duration {
	if p.SettleCeiling > 0 {
		return p.SettleCeiling
	}
	return DefaultSettleCeiling
}
