package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionKey is the context key for storing the authenticated session.
const SessionKey contextKey = "session"

// SessionResolver turns a bearer token into an open session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Session, error)
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// GetSession extracts the session from the context.
// Returns nil if not found.
func GetSession(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(SessionKey).(*auth.Session)
	return sess
}

// GetAccountID extracts the account ID from the context.
// Returns empty string if not found.
func GetAccountID(ctx context.Context) string {
	if sess := GetSession(ctx); sess != nil {
		return sess.AccountID
	}
	return ""
}

// bearerToken parses an Authorization header of the form "Bearer <token>".
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns a middleware that resolves the bearer token into a
// session and rejects the call when there is none.
func RequireAuth(resolver SessionResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			sess, err := resolver.Resolve(ctx, token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSession(ctx, sess), req)
		}
	}
}

// OptionalAuth returns a middleware that attaches the session if the token
// resolves, but allows requests without authentication. SignUp and SignIn
// run behind it.
func OptionalAuth(resolver SessionResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token, err := bearerToken(req.Header().Get("Authorization")); err == nil {
				// Ignore errors - optional auth
				if sess, err := resolver.Resolve(ctx, token); err == nil {
					ctx = WithSession(ctx, sess)
				}
			}
			return next(ctx, req)
		}
	}
}

// RequireAuthHTTP is RequireAuth for plain HTTP handlers.
func RequireAuthHTTP(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			sess, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
