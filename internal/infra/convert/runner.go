package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external conversion tool. Adapters depend on this
// interface so tests can assert the exact invocation without the binaries
// installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner { return execRunner{} }

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
