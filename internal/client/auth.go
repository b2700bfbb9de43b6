package client

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/pkg/api"
)

// AuthClient calls AuthService. A successful SignUp or SignIn stores the
// returned token for every later call; SignOut clears it.
type AuthClient struct {
	signUp  *connect.Client[api.SignUpRequest, api.SessionResponse]
	signIn  *connect.Client[api.SignInRequest, api.SessionResponse]
	signOut *connect.Client[api.SignOutRequest, api.SignOutResponse]
	current *connect.Client[api.CurrentAccountRequest, api.CurrentAccountResponse]
	tokens  *tokenSource
}

func newAuthClient(httpClient connect.HTTPClient, baseURL string, tokens *tokenSource, opts []connect.ClientOption) *AuthClient {
	return &AuthClient{
		signUp:  connect.NewClient[api.SignUpRequest, api.SessionResponse](httpClient, baseURL+api.AuthServiceSignUpProcedure, opts...),
		signIn:  connect.NewClient[api.SignInRequest, api.SessionResponse](httpClient, baseURL+api.AuthServiceSignInProcedure, opts...),
		signOut: connect.NewClient[api.SignOutRequest, api.SignOutResponse](httpClient, baseURL+api.AuthServiceSignOutProcedure, opts...),
		current: connect.NewClient[api.CurrentAccountRequest, api.CurrentAccountResponse](httpClient, baseURL+api.AuthServiceCurrentAccountProcedure, opts...),
		tokens:  tokens,
	}
}

func (c *AuthClient) SignUp(ctx context.Context, email, password, displayName string) (*api.SessionResponse, error) {
	resp, err := c.signUp.CallUnary(ctx, connect.NewRequest(&api.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}))
	if err != nil {
		return nil, err
	}
	c.tokens.set(resp.Msg.Token)
	return resp.Msg, nil
}

func (c *AuthClient) SignIn(ctx context.Context, email, password string) (*api.SessionResponse, error) {
	resp, err := c.signIn.CallUnary(ctx, connect.NewRequest(&api.SignInRequest{
		Email:    email,
		Password: password,
	}))
	if err != nil {
		return nil, err
	}
	c.tokens.set(resp.Msg.Token)
	return resp.Msg, nil
}

// SignOut ends the session on the server and forgets the token.
func (c *AuthClient) SignOut(ctx context.Context) error {
	if c.tokens.get() == "" {
		return ErrNotSignedIn
	}
	_, err := c.signOut.CallUnary(ctx, connect.NewRequest(&api.SignOutRequest{}))
	c.tokens.set("")
	return err
}

func (c *AuthClient) CurrentAccount(ctx context.Context) (*api.Account, error) {
	resp, err := c.current.CallUnary(ctx, connect.NewRequest(&api.CurrentAccountRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Account, nil
}
