package page2pdf

import (
	"io"
	"time"
)

// Result is the captured output of one job.
type Result struct {
	Data   []byte
	Format Format
}

// Sink consumes a job's result. Deliver is called at most once per job.
type Sink interface {
	Deliver(Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(r Result) error {
	return f(r)
}

// WriterSink writes the result bytes to w.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(r Result) error {
		_, err := w.Write(r.Data)
		return err
	})
}

// Job is one URL to render and where its result goes.
type Job struct {
	URL  string
	Sink Sink
}

// JobResult reports the outcome of one job in a batch.
type JobResult struct {
	URL      string
	Err      error
	Duration time.Duration
	Size     int // bytes delivered, 0 on failure
}
