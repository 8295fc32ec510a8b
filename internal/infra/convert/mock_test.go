package convert

import (
	"context"
	"sync"
)

// fakeRunner records every invocation instead of executing binaries. OnRun,
// when set, lets a test materialize the file a real tool would have written.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	Err   error
	OnRun func(name string, args ...string) error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.OnRun != nil {
		if err := f.OnRun(name, args...); err != nil {
			return err
		}
	}
	return f.Err
}

func (f *fakeRunner) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
