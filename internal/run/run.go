// Package run launches the external trainer process for a subcommand and
// supervises it until exit. Child output is relayed through the structured
// logger; high-frequency progress lines are throttled so they do not flood
// the log.
package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrNoScript is returned when a launch spec names no trainer script.
var ErrNoScript = errors.New("launch spec must name a trainer script")

// Spec describes a single trainer invocation.
type Spec struct {
	// Script is the trainer subcommand, e.g. "sft" or "dpo".
	Script string
	// Args is the merged argv forwarded to the trainer.
	Args []string
	// Env holds extra environment variables for the child, on top of the
	// parent's environment.
	Env map[string]string
}

// Launcher runs trainer processes.
type Launcher struct {
	logger   *zap.Logger
	trainer  string
	throttle lineLimiter
}

// Option configures Launcher behaviour.
type Option func(*Launcher)

// WithProgressThrottle sets the relay rate for progress lines.
func WithProgressThrottle(linesPerSecond float64, burst int) Option {
	return func(l *Launcher) {
		l.throttle = newTokenBucketLimiter(linesPerSecond, burst)
	}
}

// WithLineLimiter overrides the progress line limiter (primarily for tests).
func WithLineLimiter(limiter lineLimiter) Option {
	return func(l *Launcher) {
		l.throttle = limiter
	}
}

// New constructs a Launcher that invokes the given trainer executable.
func New(logger *zap.Logger, trainer string, opts ...Option) *Launcher {
	l := &Launcher{
		logger:   logger,
		trainer:  trainer,
		throttle: newTokenBucketLimiter(2, 5),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run starts the trainer and blocks until it exits. Context cancellation
// kills the child.
func (l *Launcher) Run(ctx context.Context, spec Spec) error {
	cmd, err := l.command(ctx, spec)
	if err != nil {
		return err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("attach stderr: %w", err)
	}

	l.logger.Info("launching trainer",
		zap.String("trainer", l.trainer),
		zap.String("script", spec.Script),
		zap.Strings("args", spec.Args),
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start trainer: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.relay(stdout, zapcore.InfoLevel)
	}()
	go func() {
		defer wg.Done()
		l.relay(stderr, zapcore.WarnLevel)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("trainer %s: %w", spec.Script, err)
	}
	return nil
}

// command builds the child process from a spec.
func (l *Launcher) command(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	if spec.Script == "" {
		return nil, ErrNoScript
	}

	argv := append([]string{spec.Script}, spec.Args...)
	cmd := exec.CommandContext(ctx, l.trainer, argv...)
	cmd.Env = childEnv(spec.Env)
	return cmd, nil
}

// childEnv layers extra variables over the parent environment.
func childEnv(extra map[string]string) []string {
	env := os.Environ()
	for name, value := range extra {
		env = append(env, name+"="+value)
	}
	return env
}

// relay forwards child output lines to the logger, sampling progress lines
// through the throttle.
func (l *Launcher) relay(r io.Reader, level zapcore.Level) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if isProgressLine(line) && !l.throttle.Allow() {
			continue
		}
		if entry := l.logger.Check(level, line); entry != nil {
			entry.Write(zap.String("source", "trainer"))
		}
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn("trainer output truncated", zap.Error(err))
	}
}

// isProgressLine recognises the per-step progress bars trainers print at high
// frequency.
func isProgressLine(line string) bool {
	return strings.Contains(line, "it/s") || strings.Contains(line, "%|")
}
