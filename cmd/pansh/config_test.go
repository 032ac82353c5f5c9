// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/testutil"
)

func TestConfigShow(t *testing.T) {
	t.Parallel()

	h := newHarness(stubProvider{cfg: testConfig(t), source: "/etc/pansh/config.cue"}, "")
	if err := h.run("config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"Current Configuration", "/etc/pansh/config.cue", "history", "palette", "prompt", "shell", "ui", "ssh", "max_size"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestConfigShow_TOML(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.History.MaxSize = 42
	h := newHarness(stubProvider{cfg: cfg}, "")
	if err := h.run("config", "show", "--format", "toml"); err != nil {
		t.Fatalf("config show: %v", err)
	}

	var decoded config.Config
	if err := toml.Unmarshal(h.stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, h.stdout.String())
	}
	if decoded.History.MaxSize != 42 {
		t.Errorf("history.max_size = %d, want 42", decoded.History.MaxSize)
	}
}

func TestConfigShow_LoadFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(stubProvider{err: errors.New("syntax error")}, "")
	err := h.run("config", "show")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected a ServiceError, got %v", err)
	}
	if svcErr.IssueID == 0 {
		t.Error("config load failures should name an issue page")
	}
}

func TestConfigDump_LoadsWithRealProvider(t *testing.T) {
	t.Parallel()

	want := testConfig(t)
	want.History.MaxSize = 7
	file := filepath.Join(t.TempDir(), "config.cue")
	testutil.MustWriteFile(t, file, config.GenerateCUE(want))

	h := newHarness(config.NewProvider(), "")
	if err := h.run("config", "dump", "--config", file); err != nil {
		t.Fatalf("config dump: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "max_size: 7") {
		t.Errorf("dump = %q", h.stdout.String())
	}
}

func TestConfigPath_Explicit(t *testing.T) {
	t.Parallel()

	h := newHarness(stubProvider{cfg: testConfig(t)}, "")
	if err := h.run("config", "path", "--config", "/tmp/pansh.cue"); err != nil {
		t.Fatalf("config path: %v", err)
	}
	if got := h.stdout.String(); got != "Config file: /tmp/pansh.cue\n" {
		t.Errorf("output = %q", got)
	}
}

func TestConfigShow_HidesPassword(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.SSH.Password = "hunter2"
	for _, format := range []string{"text", "toml"} {
		h := newHarness(stubProvider{cfg: cfg}, "")
		if err := h.run("config", "show", "--format", format); err != nil {
			t.Fatalf("config show --format %s: %v", format, err)
		}
		if strings.Contains(h.stdout.String(), "hunter2") {
			t.Errorf("config show --format %s printed the ssh password", format)
		}
	}
}
