// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/issue"
)

func TestServe_HostKeyDirectoryUnavailable(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.SSH.HostKey = config.FilePath(filepath.Join(blocker, "keys", "host_key"))

	h := newHarness(stubProvider{cfg: cfg}, "")
	err := h.run("serve", "--port", "0")
	if err == nil {
		t.Fatal("serve should fail when the host key directory cannot be created")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.IssueID != issue.HostKeyUnavailableId {
		t.Fatalf("error = %#v, want a ServiceError for HostKeyUnavailableId", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should carry an ActionableError, got %v", err)
	}
	if ae.Operation != "create host key directory" || ae.Resource != filepath.Join(blocker, "keys") {
		t.Errorf("ActionableError = %q on %q", ae.Operation, ae.Resource)
	}
}
