package nvme

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
)

// waitDelay bounds how long a killed command may hold its output pipes open.
const waitDelay = 2 * time.Second

// Runner executes an external command and returns its standard output.
// It abstracts os/exec so the client can be tested without nvme-cli.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. The command is killed when ctx is
// done.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	errFactory := errors.New()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errFactory.Wrap(ErrCommandTimeout, ctx.Err())
		}

		return nil, errFactory.Wrap(ErrCommandFailed, &commandError{
			args:   append([]string{name}, args...),
			err:    err,
			stderr: strings.TrimSpace(stderr.String()),
		})
	}

	return stdout.Bytes(), nil
}
