package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields empty config", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Len() != 0 {
			t.Fatalf("expected empty config, got %d keys", cfg.Len())
		}
	})

	t.Run("parses mapping", func(t *testing.T) {
		path := writeConfigFile(t, "learning_rate: 0.0001\ndataset_name: imdb\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Has("learning_rate") || !cfg.Has("dataset_name") {
			t.Fatalf("expected keys to be loaded")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := writeConfigFile(t, ":\n\t-")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error for invalid YAML")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("exports mapping", func(t *testing.T) {
		t.Setenv("TRL_TEST_VAR", "")
		t.Setenv("TRL_TEST_NUM", "")

		path := writeConfigFile(t, "env:\n  TRL_TEST_VAR: hello\n  TRL_TEST_NUM: 42\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv returned error: %v", err)
		}

		if got := os.Getenv("TRL_TEST_VAR"); got != "hello" {
			t.Fatalf("expected TRL_TEST_VAR=hello, got %q", got)
		}
		if got := os.Getenv("TRL_TEST_NUM"); got != "42" {
			t.Fatalf("expected stringified TRL_TEST_NUM=42, got %q", got)
		}
	})

	t.Run("no env block is a no-op", func(t *testing.T) {
		path := writeConfigFile(t, "learning_rate: 0.0001\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects non-mapping env", func(t *testing.T) {
		path := writeConfigFile(t, "env:\n  - FOO\n  - BAR\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.ApplyEnv(); !errors.Is(err, ErrEnvNotMapping) {
			t.Fatalf("expected ErrEnvNotMapping, got %v", err)
		}
	})
}

func TestArgString(t *testing.T) {
	path := writeConfigFile(t, `
env:
  HIDDEN: "yes"
beta: 0.2
dataset_name: imdb
report_to: [wandb, tensorboard]
empty_list: []
kwargs:
  use_reentrant: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := cfg.ArgString()
	want := `--beta 0.2 --dataset_name imdb --kwargs '{"use_reentrant":true}' --report_to '["wandb","tensorboard"]'`
	if got != want {
		t.Fatalf("unexpected arg string:\n got: %s\nwant: %s", got, want)
	}
}
