package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/client"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/service"
	"github.com/mmynk/familyspend/internal/storage/sqlite"
)

var feb2024 = calendar.Window{Year: 2024, Month: time.February}

func setupClient(t *testing.T) *client.Client {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	sessions := auth.NewSessionManager(auth.NewJWTManager("client-test-secret-0123456789"), store, time.Hour)
	mux := http.NewServeMux()
	service.Register(mux, service.Deps{
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		Sessions:      sessions,
		Accounts:      store,
		Ledger:        ledger.New(store),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return client.New(server.Client(), server.URL)
}

func TestClientRoundTrip(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	if _, err := c.Auth.SignUp(ctx, "sam@example.com", "secret1", "Sam"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if c.Token() == "" {
		t.Fatal("expected token to be stored")
	}

	data, err := c.Ledger.AddMember(ctx, feb2024, ledger.MemberInput{Name: "Lee"})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	lee := data.Members[1]

	data, err = c.Ledger.SaveExpense(ctx, feb2024, ledger.ExpenseInput{
		MemberID: lee.ID,
		Category: "Transport",
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString("3.20")),
		Date:     "2024-02-14",
	})
	if err != nil {
		t.Fatalf("SaveExpense failed: %v", err)
	}
	if !data.Summary.Total.Equal(decimal.RequireFromString("3.2")) {
		t.Errorf("expected recomputed total 3.2, got %s", data.Summary.Total)
	}
	if data.Window != feb2024 {
		t.Errorf("unexpected window %v", data.Window)
	}

	account, err := c.Auth.CurrentAccount(ctx)
	if err != nil {
		t.Fatalf("CurrentAccount failed: %v", err)
	}
	if account.DisplayName != "Sam" {
		t.Errorf("unexpected account %+v", account)
	}

	categories, err := c.Ledger.Categories(ctx, feb2024)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 6 {
		t.Errorf("expected 6 categories, got %v", categories)
	}
}

func TestClientZeroWindowFetchesCurrentMonth(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	if _, err := c.Auth.SignUp(ctx, "sam@example.com", "secret1", "Sam"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	data, err := c.Ledger.FetchMonth(ctx, calendar.Window{})
	if err != nil {
		t.Fatalf("FetchMonth with zero window failed: %v", err)
	}
	if data.Window.IsZero() {
		t.Error("expected the server to resolve the current month")
	}
	if len(data.Members) != 1 {
		t.Errorf("expected the Admin member, got %d members", len(data.Members))
	}
}

func TestClientRebuildsLedgerErrors(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	if _, err := c.Auth.SignUp(ctx, "sam@example.com", "secret1", "Sam"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	data, err := c.Ledger.FetchMonth(ctx, feb2024)
	if err != nil {
		t.Fatalf("FetchMonth failed: %v", err)
	}
	adminID := data.Members[0].ID

	_, err = c.Ledger.SaveExpense(ctx, feb2024, ledger.ExpenseInput{MemberID: adminID, Category: "Meal"})
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) || verr.Field != "amount" {
		t.Errorf("expected amount ValidationError, got %v", err)
	}

	_, err = c.Ledger.DeleteMember(ctx, feb2024, adminID)
	var derr *ledger.DomainError
	if !errors.As(err, &derr) || derr.Code != ledger.CodeTargetIsAdmin {
		t.Errorf("expected target-is-admin DomainError, got %v", err)
	}

	_, err = c.Ledger.DeleteExpense(ctx, feb2024, 12345)
	var rerr *ledger.RemoteError
	if !errors.As(err, &rerr) || !rerr.NotFound {
		t.Errorf("expected not-found RemoteError, got %v", err)
	}
}

func TestClientSignOut(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	if err := c.Auth.SignOut(ctx); !errors.Is(err, client.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}

	resp, err := c.Auth.SignUp(ctx, "sam@example.com", "secret1", "Sam")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := c.Auth.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if c.Token() != "" {
		t.Error("expected token cleared")
	}

	c.SetToken(resp.Token)
	if _, err := c.Ledger.FetchMonth(ctx, feb2024); !errors.Is(err, ledger.ErrNoSession) {
		t.Errorf("expected ErrNoSession for a signed-out token, got %v", err)
	}
}
