package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/middleware"
)

// Deps are the components the API routes are built from.
type Deps struct {
	Authenticator auth.Authenticator
	Sessions      *auth.SessionManager
	Accounts      AccountReader
	Ledger        *ledger.Ledger
	Logger        *slog.Logger

	// Metrics is optional.
	Metrics *middleware.Metrics
}

// Register mounts AuthService, LedgerService and the export route on mux.
// AuthService runs behind optional auth so SignUp and SignIn work without a
// token; everything else requires a session.
func Register(mux *http.ServeMux, d Deps) {
	var outer []connect.Interceptor
	if d.Metrics != nil {
		outer = append(outer, d.Metrics.Interceptor())
	}
	chain := func(authenticate connect.Interceptor) connect.HandlerOption {
		interceptors := append(append([]connect.Interceptor{}, outer...), authenticate, middleware.LoggingInterceptor())
		return connect.WithInterceptors(interceptors...)
	}

	authPath, authHandler := NewAuthServiceHandler(
		NewAuthService(d.Authenticator, d.Sessions, d.Accounts, d.Logger),
		chain(middleware.OptionalAuth(d.Sessions)),
	)
	mux.Handle(authPath, authHandler)

	ledgerPath, ledgerHandler := NewLedgerServiceHandler(
		NewLedgerService(d.Ledger),
		chain(middleware.RequireAuth(d.Sessions)),
	)
	mux.Handle(ledgerPath, ledgerHandler)

	mux.Handle(ExportPattern, middleware.RequireAuthHTTP(d.Sessions)(NewExportHandler(d.Ledger)))
}
