package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/auth/types"
	"github.com/Yulian302/lfusys-wetransfer/requester"
)

type Authorizer interface {
	Login(ctx context.Context) (types.Credential, error)
}

// Client exchanges an API key for a session token.
type Client struct {
	http         *http.Client
	authorizeURL string
	apiKey       string
}

func NewClient(httpClient *http.Client, authorizeURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:         httpClient,
		authorizeURL: authorizeURL,
		apiKey:       apiKey,
	}
}

func (c *Client) Login(ctx context.Context) (types.Credential, error) {
	if c.apiKey == "" {
		return types.Credential{}, apperror.ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authorizeURL, nil)
	if err != nil {
		return types.Credential{}, &apperror.TransportError{Message: err.Error(), Err: err}
	}
	req.Header.Set(requester.HeaderAPIKey, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Credential{}, &apperror.TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	var login types.LoginResponse
	if err := requester.HandleResponse(resp, &login); err != nil {
		return types.Credential{}, err
	}
	if !login.Success || login.Token == "" {
		return types.Credential{}, fmt.Errorf("%w: %s", apperror.ErrAuthorizationFailed, login.Message)
	}

	return types.Credential{
		Token:     login.Token,
		ExpiresAt: ExpiryOf(login.Token),
	}, nil
}
