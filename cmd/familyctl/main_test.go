package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/client"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/service"
	"github.com/mmynk/familyspend/internal/storage/sqlite"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	mux := http.NewServeMux()
	service.Register(mux, service.Deps{
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		Sessions:      auth.NewSessionManager(auth.NewJWTManager("cli-test-secret"), store, time.Hour),
		Accounts:      store,
		Ledger: ledger.New(store).WithClock(func() time.Time {
			return time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC)
		}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return server
}

type session struct {
	t         *testing.T
	server    *httptest.Server
	tokenFile string
}

func (s session) run(args ...string) (string, error) {
	var out bytes.Buffer
	full := append([]string{"-server", s.server.URL, "-token-file", s.tokenFile}, args...)
	err := run(context.Background(), full, &out, s.server.Client())
	return out.String(), err
}

func (s session) mustRun(args ...string) string {
	s.t.Helper()
	out, err := s.run(args...)
	if err != nil {
		s.t.Fatalf("familyctl %v: %v\n%s", args, err, out)
	}
	return out
}

func TestCommandsEndToEnd(t *testing.T) {
	s := session{t: t, server: setupServer(t), tokenFile: filepath.Join(t.TempDir(), "cfg", "token")}

	out := s.mustRun("signup", "-email", "sam@example.com", "-password", "secret1", "-name", "Sam")
	if !strings.Contains(out, "Signed up as Sam") {
		t.Errorf("unexpected signup output: %q", out)
	}
	if _, err := os.Stat(s.tokenFile); err != nil {
		t.Fatalf("expected token file: %v", err)
	}

	out = s.mustRun("add-member", "-name", "Lee")
	if !strings.Contains(out, "Lee") || !strings.Contains(out, "Admin") {
		t.Errorf("members output missing rows: %q", out)
	}

	out = s.mustRun("month", "-month", "2024-02")
	if !strings.Contains(out, "No expenses this month") {
		t.Errorf("expected empty month, got %q", out)
	}

	// Sam is member 1 and Lee member 2 in a fresh database.
	out = s.mustRun("add", "-month", "2024-02", "-member", "2", "-category", "Groceries", "-amount", "12,50")
	for _, want := range []string{"February 2024", "(1 transactions, 2 members)", "2024-02-29", "Groceries", "Lee", "12.50", "100.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("add output missing %q:\n%s", want, out)
		}
	}

	out = s.mustRun("rm-member", "-id", "2")
	if strings.Contains(out, "Lee") {
		t.Errorf("Lee should be gone:\n%s", out)
	}

	out = s.mustRun("month", "-month", "2024-02")
	if strings.Contains(out, "Lee") || !strings.Contains(out, "Sam") {
		t.Errorf("expense should be reassigned to Sam:\n%s", out)
	}

	s.mustRun("signout")
	if _, err := os.Stat(s.tokenFile); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("token file should be removed, stat err = %v", err)
	}
	if _, err := s.run("month"); err == nil {
		t.Error("expected month to fail after sign out")
	}
}

func TestValidationFailsLocally(t *testing.T) {
	s := session{t: t, server: setupServer(t), tokenFile: filepath.Join(t.TempDir(), "token")}
	s.mustRun("signup", "-email", "sam@example.com", "-password", "secret1", "-name", "Sam")

	_, err := s.run("add", "-month", "2024-02", "-member", "1", "-category", "Meal")
	var ve *ledger.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Fatalf("expected amount validation error, got %v", err)
	}
}

func TestSignOutWithoutToken(t *testing.T) {
	s := session{t: t, server: setupServer(t), tokenFile: filepath.Join(t.TempDir(), "token")}

	if _, err := s.run("signout"); !errors.Is(err, client.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := session{t: t, server: setupServer(t), tokenFile: filepath.Join(t.TempDir(), "token")}

	out, err := s.run("frobnicate")
	if err == nil || !strings.Contains(out, "usage:") {
		t.Errorf("expected usage error, got err=%v out=%q", err, out)
	}
	if _, err := s.run(); !errors.Is(err, errUsage) {
		t.Errorf("expected errUsage with no command, got %v", err)
	}
}

func TestTokenStore(t *testing.T) {
	store := tokenStore{path: filepath.Join(t.TempDir(), "nested", "token")}

	token, err := store.load()
	if err != nil || token != "" {
		t.Fatalf("load on missing file = %q, %v", token, err)
	}
	if err := store.save("abc.def"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if token, _ := store.load(); token != "abc.def" {
		t.Errorf("load = %q, want abc.def", token)
	}

	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	if err := store.clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.clear(); err != nil {
		t.Errorf("second clear should be a no-op: %v", err)
	}
}
