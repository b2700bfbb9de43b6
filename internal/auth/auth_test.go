package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/storage/sqlite"
)

func setup(t *testing.T) (*auth.PasswordAuthenticator, *auth.SessionManager, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	sessions := auth.NewSessionManager(auth.NewJWTManager("test-secret-key-0123456789"), store, time.Hour)
	return authenticator, sessions, store
}

func TestRegisterCreatesAdminMember(t *testing.T) {
	authenticator, _, store := setup(t)
	ctx := context.Background()

	account, err := authenticator.Register(ctx, "Sam@Example.com", "  Sam ", "secret1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Email != "sam@example.com" {
		t.Errorf("email not normalized: %s", account.Email)
	}

	members, err := store.ListMembers(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if !members[0].IsAdmin() || members[0].Name != "Sam" || members[0].Email != "sam@example.com" {
		t.Errorf("unexpected admin member: %+v", members[0])
	}
}

func TestRegisterValidation(t *testing.T) {
	authenticator, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		wantErr  error
	}{
		{"missing name", "a@example.com", "  ", "secret1", auth.ErrMissingName},
		{"bad email", "not-an-email", "A", "secret1", auth.ErrInvalidEmail},
		{"short password", "a@example.com", "A", "12345", auth.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authenticator.Register(ctx, tt.email, tt.display, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := authenticator.Register(ctx, "dup@example.com", "Dup", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := authenticator.Register(ctx, "DUP@example.com", "Dup", "secret1"); !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	authenticator, _, _ := setup(t)
	ctx := context.Background()

	if _, err := authenticator.Register(ctx, "lee@example.com", "Lee", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := authenticator.Authenticate(ctx, "lee@example.com", "secret1"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := authenticator.Authenticate(ctx, "lee@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := authenticator.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	authenticator, _, store := setup(t)
	ctx := context.Background()

	if _, err := authenticator.Register(ctx, "lee@example.com", "Lee", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	store.Close()

	_, err := authenticator.Authenticate(ctx, "lee@example.com", "secret1")
	if err == nil {
		t.Fatal("expected an error from a closed store")
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("store failure should not be reported as invalid credentials: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	authenticator, sessions, _ := setup(t)
	ctx := context.Background()

	account, err := authenticator.Register(ctx, "kim@example.com", "Kim", "secret1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	session, err := sessions.Open(ctx, account)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if session.Token == "" || session.OwnerID() != account.ID {
		t.Fatalf("unexpected session: %+v", session)
	}

	resolved, err := sessions.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.ID != session.ID || resolved.AccountID != account.ID {
		t.Errorf("resolved session mismatch: %+v", resolved)
	}

	if err := sessions.Close(ctx, resolved); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := sessions.Resolve(ctx, session.Token); !errors.Is(err, auth.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after sign-out, got %v", err)
	}
	if err := sessions.Close(ctx, resolved); err != nil {
		t.Errorf("second Close should succeed, got %v", err)
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	_, sessions, _ := setup(t)
	ctx := context.Background()

	if _, err := sessions.Resolve(ctx, ""); !errors.Is(err, auth.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
	if _, err := sessions.Resolve(ctx, "not.a.token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	other := auth.NewJWTManager("another-secret-key-987654321")
	forged, err := other.Generate("sid", "acct", "x@example.com", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := sessions.Resolve(ctx, forged); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
