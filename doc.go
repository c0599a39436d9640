// Package page2pdf renders web pages to PDF or images with headless Chrome.
//
// # Quick Start
//
// Render one page into a file:
//
//	r := page2pdf.NewRenderer()
//
//	f, err := os.Create("example.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	err = r.RenderOne(ctx, "https://example.com", page2pdf.WriterSink(f), page2pdf.Options{})
//
// Or keep the bytes in memory:
//
//	data, err := r.RenderBuffer(ctx, "https://example.com", page2pdf.Options{Format: page2pdf.FormatPNG})
//
// # Sessions
//
// Every call opens one browser session: a Chrome process (or a remote
// endpoint), one protocol connection and one page target. RenderMany runs a
// batch of jobs through a single session, one job at a time, and tears the
// session down once at the end. A failed job is recorded in its JobResult and
// the batch continues.
//
// # Waiting for the page
//
// A page is captured after four waits, in order:
//
//  1. the load event
//  2. a 5000ms virtual time budget, paused while network fetches are pending
//  3. 100ms without a layer paint, capped at 5s
//  4. the capture itself (Page.printToPDF or Page.captureScreenshot)
//
// Each wait is bounded by the job timeout (WithJobTimeout).
//
// # Configuration
//
// Renderer-level settings use functional options:
//
//	r := page2pdf.NewRenderer(
//	    page2pdf.WithLogger(page2pdf.NewLogger(os.Stderr, true, true)),
//	    page2pdf.WithChromeBinary("/usr/bin/chromium"),
//	    page2pdf.WithChromeFlags("--no-sandbox"),
//	    page2pdf.WithJobTimeout(time.Minute),
//	)
//
// Use WithRemote to attach to an already running browser instead of spawning
// one. Remote browsers are never started or killed.
//
// Per-render settings (format, margins, paper size, scale) are passed in
// Options.
//
// # Errors
//
// Setup errors (ErrBrowserNotFound, ErrPortSelection, ErrBrowserSpawn,
// ErrConnectionUnavailable) abort the run. Job errors (ErrProtocol,
// ErrRenderTimeout, ErrDeliver, ErrEmptyURL) fail a single job. Use errors.Is.
package page2pdf
