package launch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Runner starts a single entry and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, entry Entry) error
}

// ProcessRunner runs each entry as a child process of the configured
// runtime, e.g. `node <path>`.
type ProcessRunner struct {
	Runtime string
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewProcessRunner creates a runner that writes child output to the
// process's stdout and stderr.
func NewProcessRunner(runtime, dir string) *ProcessRunner {
	return &ProcessRunner{
		Runtime: runtime,
		Dir:     dir,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Command builds the child process for an entry without starting it.
func (r *ProcessRunner) Command(ctx context.Context, entry Entry) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.Runtime, entry.Path)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = append(os.Environ(), entry.Env()...)
	return cmd
}

func (r *ProcessRunner) Run(ctx context.Context, entry Entry) error {
	return r.Command(ctx, entry).Run()
}

// Launcher starts every entry of a plan concurrently.
type Launcher struct {
	runner Runner
	logger *slog.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the launcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a launcher.
func New(runner Runner, opts ...Option) *Launcher {
	l := &Launcher{runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run starts all entries and waits for them. The first failure cancels
// the context handed to the remaining entries.
func (l *Launcher) Run(ctx context.Context, plan *Plan) error {
	if len(plan.Entries) == 0 {
		return fmt.Errorf("nothing to launch")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range plan.Entries {
		g.Go(func() error {
			l.logger.Info("starting", "kind", entry.Kind, "name", entry.Name, "path", entry.Path)
			if err := l.runner.Run(ctx, entry); err != nil {
				return fmt.Errorf("failed to run %s %s: %w", entry.Kind, entry.Name, err)
			}
			l.logger.Debug("exited", "kind", entry.Kind, "name", entry.Name)
			return nil
		})
	}

	return g.Wait()
}
