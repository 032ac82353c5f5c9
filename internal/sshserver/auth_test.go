// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	gossh "golang.org/x/crypto/ssh"

	"github.com/invowk/pansh/internal/testutil"
)

func newSigner(t *testing.T) gossh.Signer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := gossh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("NewSignerFromKey: %v", err)
	}
	return signer
}

func TestServerGeneratesPassword(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t))
	if srv.Password() == "" {
		t.Fatal("a server without authorized keys must have a password")
	}
	if other := New(testConfig(t)); other.Password() == srv.Password() {
		t.Error("generated passwords should differ between servers")
	}
}

func TestServerRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	srv := startServer(t)

	victim := filepath.Join(t.TempDir(), "victim.txt")
	testutil.MustWriteFile(t, victim, "keep me")

	if client, err := dialWith(srv); err == nil {
		sess, serr := client.NewSession()
		if serr == nil {
			_ = sess.Run("rm " + victim)
		}
		_ = client.Close()
		t.Error("a client without credentials must not log in")
	}
	if _, err := os.Stat(victim); err != nil {
		t.Errorf("file removed by an unauthenticated client: %v", err)
	}
}

func TestServerRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	srv := startServer(t)
	if client, err := dialWith(srv, gossh.Password("not-"+srv.Password())); err == nil {
		_ = client.Close()
		t.Error("a wrong password must not log in")
	}
}

func TestServerAuthorizedKeys(t *testing.T) {
	t.Parallel()

	allowed := newSigner(t)
	stranger := newSigner(t)
	keysFile := filepath.Join(t.TempDir(), "authorized_keys")
	testutil.MustWriteFile(t, keysFile, "# pansh users\n"+string(gossh.MarshalAuthorizedKey(allowed.PublicKey())))

	cfg := testConfig(t)
	cfg.AuthorizedKeysPath = keysFile
	srv := New(cfg)
	if srv.Password() != "" {
		t.Errorf("no password should be generated when keys are configured, got %q", srv.Password())
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { testutil.MustStop(t, srv) })

	client, err := dialWith(srv, gossh.PublicKeys(allowed))
	if err != nil {
		t.Fatalf("listed key should log in: %v", err)
	}
	_ = client.Close()

	if client, err := dialWith(srv, gossh.PublicKeys(stranger)); err == nil {
		_ = client.Close()
		t.Error("unlisted key must not log in")
	}
	if client, err := dialWith(srv); err == nil {
		_ = client.Close()
		t.Error("a client without credentials must not log in")
	}
}

func TestServerMissingAuthorizedKeys(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.AuthorizedKeysPath = filepath.Join(t.TempDir(), "missing")
	srv := New(cfg)
	if err := srv.Start(context.Background()); err == nil {
		testutil.MustStop(t, srv)
		t.Fatal("Start should fail when the authorized keys file is missing")
	}
	if srv.State() != StateFailed {
		t.Errorf("State = %s, want failed", srv.State())
	}
}
