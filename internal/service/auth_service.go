package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/middleware"
	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/pkg/api"
)

// AccountReader loads accounts by ID.
type AccountReader interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	sessions      *auth.SessionManager
	accounts      AccountReader
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, sessions *auth.SessionManager, accounts AccountReader, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		sessions:      sessions,
		accounts:      accounts,
		logger:        logger,
	}
}

// NewAuthServiceHandler builds an HTTP handler serving every AuthService
// procedure. It returns the path to mount it on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)

	signUp := connect.NewUnaryHandler(api.AuthServiceSignUpProcedure, svc.SignUp, opts...)
	signIn := connect.NewUnaryHandler(api.AuthServiceSignInProcedure, svc.SignIn, opts...)
	signOut := connect.NewUnaryHandler(api.AuthServiceSignOutProcedure, svc.SignOut, opts...)
	current := connect.NewUnaryHandler(api.AuthServiceCurrentAccountProcedure, svc.CurrentAccount, opts...)

	return "/" + api.AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.AuthServiceSignUpProcedure:
			signUp.ServeHTTP(w, r)
		case api.AuthServiceSignInProcedure:
			signIn.ServeHTTP(w, r)
		case api.AuthServiceSignOutProcedure:
			signOut.ServeHTTP(w, r)
		case api.AuthServiceCurrentAccountProcedure:
			current.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SignUp creates an account with its Admin member and opens a session.
func (s *AuthService) SignUp(ctx context.Context, req *connect.Request[api.SignUpRequest]) (*connect.Response[api.SessionResponse], error) {
	s.logger.Info("SignUp request", "email", req.Msg.Email)

	account, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrInvalidEmail),
			errors.Is(err, auth.ErrMissingName):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		default:
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	resp, err := s.openSession(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account registered successfully", "account_id", account.ID, "email", account.Email)
	return resp, nil
}

// SignIn authenticates an account and opens a session.
func (s *AuthService) SignIn(ctx context.Context, req *connect.Request[api.SignInRequest]) (*connect.Response[api.SessionResponse], error) {
	s.logger.Info("SignIn request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	account, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("Failed to authenticate", "email", req.Msg.Email, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		s.logger.Warn("SignIn failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	resp, err := s.openSession(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account signed in successfully", "account_id", account.ID)
	return resp, nil
}

func (s *AuthService) openSession(ctx context.Context, account *models.Account) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.sessions.Open(ctx, account)
	if err != nil {
		s.logger.Error("Failed to open session", "account_id", account.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.SessionResponse{
		Account:   api.AccountToAPI(account),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.Unix(),
	}), nil
}

// SignOut destroys the caller's session. The token is rejected afterwards.
func (s *AuthService) SignOut(ctx context.Context, req *connect.Request[api.SignOutRequest]) (*connect.Response[api.SignOutResponse], error) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if err := s.sessions.Close(ctx, sess); err != nil {
		s.logger.Error("Failed to close session", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Account signed out", "account_id", sess.AccountID)
	return connect.NewResponse(&api.SignOutResponse{}), nil
}

// CurrentAccount returns the signed-in account.
func (s *AuthService) CurrentAccount(ctx context.Context, req *connect.Request[api.CurrentAccountRequest]) (*connect.Response[api.CurrentAccountResponse], error) {
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	account, err := s.accounts.GetAccountByID(ctx, sess.AccountID)
	if err != nil {
		s.logger.Error("Failed to load account", "account_id", sess.AccountID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.CurrentAccountResponse{Account: api.AccountToAPI(account)}), nil
}
