package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	page2pdf "github.com/alnah/go-page2pdf"
	"github.com/alnah/go-page2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake renderer and file store
// ---------------------------------------------------------------------------

// fakeRenderer delivers fixed bytes to every job sink, failing the URLs in fail.
type fakeRenderer struct {
	data     []byte
	fail     map[string]error
	setupErr error

	mu       sync.Mutex
	calls    int
	jobs     []page2pdf.Job
	opts     page2pdf.Options
	nOptions int // options passed to the factory
}

func (f *fakeRenderer) RenderMany(_ context.Context, jobs []page2pdf.Job, opts page2pdf.Options) ([]page2pdf.JobResult, error) {
	f.mu.Lock()
	f.calls++
	f.jobs = jobs
	f.opts = opts
	f.mu.Unlock()

	if f.setupErr != nil {
		return nil, f.setupErr
	}

	results := make([]page2pdf.JobResult, 0, len(jobs))
	for _, j := range jobs {
		if err := f.fail[j.URL]; err != nil {
			results = append(results, page2pdf.JobResult{URL: j.URL, Err: err})
			continue
		}
		if err := j.Sink.Deliver(page2pdf.Result{Data: f.data, Format: opts.Format}); err != nil {
			results = append(results, page2pdf.JobResult{URL: j.URL, Err: fmt.Errorf("%w: %v", page2pdf.ErrDeliver, err)})
			continue
		}
		results = append(results, page2pdf.JobResult{URL: j.URL, Size: len(f.data)})
	}
	return results, nil
}

// fileStore records WriteFile calls in memory.
type fileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	perms map[string]os.FileMode
	err   error
}

func newFileStore() *fileStore {
	return &fileStore{files: map[string][]byte{}, perms: map[string]os.FileMode{}}
}

func (s *fileStore) write(path string, data []byte, perm os.FileMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.files[path] = data
	s.perms[path] = perm
	return nil
}

// testEnv wires r and a fresh file store into an Environment.
func testEnv(r *fakeRenderer) (*Environment, *bytes.Buffer, *bytes.Buffer, *fileStore) {
	var stdout, stderr bytes.Buffer
	store := newFileStore()
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Config: config.DefaultConfig(),
		NewRenderer: func(opts ...page2pdf.Option) BatchRenderer {
			r.mu.Lock()
			r.nOptions = len(opts)
			r.mu.Unlock()
			return r
		},
		WriteFile: store.write,
	}
	return env, &stdout, &stderr, store
}
