package render

import (
	"context"

	"github.com/go-rod/rod/lib/proto"
)

// Event identifies a protocol event the pipeline waits on.
type Event int

// Events used by the wait phases.
const (
	EventLoad          Event = iota // Page.loadEventFired
	EventBudgetExpired              // Emulation.virtualTimeBudgetExpired
	EventLayerPainted               // LayerTree.layerPainted
)

func (e Event) String() string {
	switch e {
	case EventLoad:
		return "Page.loadEventFired"
	case EventBudgetExpired:
		return "Emulation.virtualTimeBudgetExpired"
	case EventLayerPainted:
		return "LayerTree.layerPainted"
	}
	return "unknown"
}

// Session is the slice of the DevTools protocol the pipeline drives.
// Implementations are not safe for concurrent navigations.
type Session interface {
	// EnableDomains enables the Page and LayerTree domains.
	EnableDomains(ctx context.Context) error

	// Once subscribes to the next occurrence of ev. The channel is closed
	// when it fires; the subscription is released after one notification
	// or when ctx ends.
	Once(ctx context.Context, ev Event) <-chan struct{}

	// Each streams occurrences of ev until ctx ends. Bursts may be coalesced.
	Each(ctx context.Context, ev Event) <-chan struct{}

	Navigate(ctx context.Context, url string) error
	SetVirtualTimePolicy(ctx context.Context, req *proto.EmulationSetVirtualTimePolicy) error
	PrintToPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error)
	CaptureScreenshot(ctx context.Context, req *proto.PageCaptureScreenshot) ([]byte, error)
}
