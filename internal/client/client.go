// Package client provides typed Connect clients for the familyspend API.
// LedgerClient satisfies dashboard.Backend, so a remote dashboard behaves
// like one backed by an in-process ledger.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/pkg/api"
)

// ErrNotSignedIn is returned by calls that need a token when none is set.
var ErrNotSignedIn = errors.New("not signed in")

// tokenSource holds the bearer token shared by the clients of one Client.
type tokenSource struct {
	mu    sync.RWMutex
	token string
}

func (t *tokenSource) get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *tokenSource) set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// interceptor adds the Authorization header when a token is set.
func (t *tokenSource) interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := t.get(); token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// Client bundles the Auth and Ledger clients of one server.
type Client struct {
	Auth   *AuthClient
	Ledger *LedgerClient

	tokens *tokenSource
}

// New creates a client for the server at baseURL.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	tokens := &tokenSource{}
	opts = append([]connect.ClientOption{api.WithJSON(), connect.WithInterceptors(tokens.interceptor())}, opts...)

	return &Client{
		Auth:   newAuthClient(httpClient, baseURL, tokens, opts),
		Ledger: newLedgerClient(httpClient, baseURL, opts),
		tokens: tokens,
	}
}

// NewDefault uses http.DefaultClient.
func NewDefault(baseURL string) *Client {
	return New(http.DefaultClient, baseURL)
}

// SetToken installs a token obtained earlier, e.g. read from disk.
func (c *Client) SetToken(token string) {
	c.tokens.set(token)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.tokens.get()
}

// fromConnectError rebuilds the ledger error a LedgerService call failed with.
func fromConnectError(op string, err error) error {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return &ledger.RemoteError{Op: op, Err: err}
	}

	switch cerr.Code() {
	case connect.CodeInvalidArgument:
		return &ledger.ValidationError{
			Field:   cerr.Meta().Get(api.ValidationFieldHeader),
			Message: cerr.Message(),
		}
	case connect.CodeFailedPrecondition:
		return &ledger.DomainError{
			Code:    cerr.Meta().Get(api.DomainCodeHeader),
			Message: cerr.Message(),
		}
	case connect.CodeUnauthenticated:
		return fmt.Errorf("%w: %s", ledger.ErrNoSession, cerr.Message())
	case connect.CodeNotFound:
		return &ledger.RemoteError{Op: op, Err: cerr, NotFound: true}
	default:
		return &ledger.RemoteError{
			Op:      op,
			Err:     cerr,
			Partial: cerr.Meta().Get(api.PartialHeader) == "true",
		}
	}
}
