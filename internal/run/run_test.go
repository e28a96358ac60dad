package run

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type allowAll struct{}

func (allowAll) Allow() bool { return true }

type denyAll struct{}

func (denyAll) Allow() bool { return false }

func observedLauncher(t *testing.T, limiter lineLimiter) (*Launcher, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core), "trl-trainer", WithLineLimiter(limiter)), logs
}

func TestCommand(t *testing.T) {
	t.Run("builds argv with script first", func(t *testing.T) {
		launcher := New(zap.NewNop(), "/usr/local/bin/trl-trainer")
		cmd, err := launcher.command(context.Background(), Spec{
			Script: "sft",
			Args:   []string{"--dataset_name", "imdb"},
		})
		if err != nil {
			t.Fatalf("command returned error: %v", err)
		}

		want := []string{"/usr/local/bin/trl-trainer", "sft", "--dataset_name", "imdb"}
		if len(cmd.Args) != len(want) {
			t.Fatalf("unexpected argv: %v", cmd.Args)
		}
		for i, arg := range want {
			if cmd.Args[i] != arg {
				t.Fatalf("argv[%d] = %q, want %q", i, cmd.Args[i], arg)
			}
		}
	})

	t.Run("requires a script", func(t *testing.T) {
		launcher := New(zap.NewNop(), "trl-trainer")
		if _, err := launcher.command(context.Background(), Spec{}); !errors.Is(err, ErrNoScript) {
			t.Fatalf("expected ErrNoScript, got %v", err)
		}
	})
}

func TestChildEnv(t *testing.T) {
	t.Setenv("TRL_PARENT_VAR", "inherited")

	env := childEnv(map[string]string{"TRL_EXTRA_VAR": "added"})

	var foundParent, foundExtra bool
	for _, entry := range env {
		if entry == "TRL_PARENT_VAR=inherited" {
			foundParent = true
		}
		if entry == "TRL_EXTRA_VAR=added" {
			foundExtra = true
		}
	}
	if !foundParent {
		t.Fatalf("expected parent environment to be inherited")
	}
	if !foundExtra {
		t.Fatalf("expected extra variables to be appended")
	}
}

func TestRelay(t *testing.T) {
	t.Run("forwards lines at the requested level", func(t *testing.T) {
		launcher, logs := observedLauncher(t, allowAll{})
		launcher.relay(strings.NewReader("loading model\nstarting epoch 1\n"), zapcore.InfoLevel)

		entries := logs.All()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Message != "loading model" || entries[0].Level != zapcore.InfoLevel {
			t.Fatalf("unexpected first entry: %+v", entries[0].Entry)
		}
	})

	t.Run("drops throttled progress lines", func(t *testing.T) {
		launcher, logs := observedLauncher(t, denyAll{})
		launcher.relay(strings.NewReader("12%|███ | 120/1000 [00:12<01:28, 9.95it/s]\nepoch complete\n"), zapcore.InfoLevel)

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("expected progress line to be dropped, got %d entries", len(entries))
		}
		if entries[0].Message != "epoch complete" {
			t.Fatalf("unexpected surviving entry: %q", entries[0].Message)
		}
	})

	t.Run("skips blank lines", func(t *testing.T) {
		launcher, logs := observedLauncher(t, allowAll{})
		launcher.relay(strings.NewReader("\n\ndone\n"), zapcore.InfoLevel)

		if logs.Len() != 1 {
			t.Fatalf("expected blank lines to be skipped, got %d entries", logs.Len())
		}
	})
}

func TestIsProgressLine(t *testing.T) {
	progress := []string{
		" 45%|████▌     | 450/1000 [00:45<00:55, 10.00it/s]",
		"3.21it/s",
	}
	for _, line := range progress {
		if !isProgressLine(line) {
			t.Fatalf("expected progress line: %q", line)
		}
	}

	regular := []string{
		"loading checkpoint shards",
		"{'loss': 1.234, 'epoch': 0.1}",
	}
	for _, line := range regular {
		if isProgressLine(line) {
			t.Fatalf("did not expect progress line: %q", line)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	launcher, logs := observedLauncher(t, allowAll{})
	launcher.trainer = "echo"

	err := launcher.Run(context.Background(), Spec{
		Script: "sft",
		Args:   []string{"--dataset_name", "imdb"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var sawOutput bool
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, "sft --dataset_name imdb") {
			sawOutput = true
		}
	}
	if !sawOutput {
		t.Fatalf("expected child output to be relayed, got %v", logs.All())
	}
}
