package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/auth"
	authtypes "github.com/Yulian302/lfusys-wetransfer/auth/types"
	"github.com/Yulian302/lfusys-wetransfer/caching"
	"github.com/Yulian302/lfusys-wetransfer/config"
	"github.com/Yulian302/lfusys-wetransfer/files"
	"github.com/Yulian302/lfusys-wetransfer/logging"
	"github.com/Yulian302/lfusys-wetransfer/requester"
	"github.com/Yulian302/lfusys-wetransfer/services"
	"github.com/Yulian302/lfusys-wetransfer/store"
)

const defaultTokenTTL = time.Hour

// Deps are the optional collaborators of a Client. Zero values fall back to a
// logging http.Client, no token cache and no resource store.
type Deps struct {
	HTTPClient *http.Client
	Cache      caching.CachingService
	Resources  store.ResourceStore
	Inspector  files.Inspector
	Logger     *slog.Logger
}

// Client is an authenticated session. Both services share the same
// credential; nothing refreshes it.
type Client struct {
	Transfers *services.TransferServiceImpl
	Boards    *services.BoardServiceImpl

	credential authtypes.Credential
}

// New authenticates once and builds the transfer and board services.
func New(ctx context.Context, cfg config.Config, deps Deps) (*Client, error) {
	if err := cfg.ValidateAllSecrets(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithLogger(ctx, logger)

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = requester.NewHTTPClient(cfg.HTTPTimeout, nil)
	}
	inspector := deps.Inspector
	if inspector == nil {
		inspector = files.NewFileInspector()
	}

	var authorizer auth.Authorizer = auth.NewClient(httpClient, cfg.AuthorizeURL(), cfg.APIKey)
	if deps.Cache != nil {
		authorizer = auth.NewCachedAuthorizer(authorizer, deps.Cache, cfg.APIKey, defaultTokenTTL)
	}

	cred, err := authorizer.Login(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("authenticated", slog.Time("expires_at", cred.ExpiresAt))

	newRequester := func(name, baseURL string) *requester.Requester {
		opts := requester.Options{HTTPClient: httpClient}
		if bc := cfg.BreakerConfig; bc != nil && bc.Enabled {
			opts.Breaker = requester.NewBreaker(name, bc.MaxFailures, bc.Timeout, logger)
		}
		return requester.New(baseURL, cfg.APIKey, cred.Token, opts)
	}

	return &Client{
		Transfers:  services.NewTransferService(newRequester("transfers", cfg.TransfersURL()), inspector, deps.Resources),
		Boards:     services.NewBoardService(newRequester("boards", cfg.BoardsURL()), inspector, deps.Resources),
		credential: cred,
	}, nil
}

func (c *Client) Credential() authtypes.Credential {
	return c.credential
}
