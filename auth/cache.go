package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/auth/types"
	"github.com/Yulian302/lfusys-wetransfer/caching"
	"github.com/Yulian302/lfusys-wetransfer/logging"
)

const (
	tokenKeyPrefix = "token:"
	expirySkew     = time.Minute
)

// CachedAuthorizer reuses a token stored by an earlier process before
// logging in. Cache failures never fail a login.
type CachedAuthorizer struct {
	next       Authorizer
	cache      caching.CachingService
	key        string
	defaultTTL time.Duration
	now        func() time.Time
}

func NewCachedAuthorizer(next Authorizer, cache caching.CachingService, apiKey string, defaultTTL time.Duration) *CachedAuthorizer {
	sum := sha256.Sum256([]byte(apiKey))
	return &CachedAuthorizer{
		next:       next,
		cache:      cache,
		key:        tokenKeyPrefix + hex.EncodeToString(sum[:]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (a *CachedAuthorizer) Login(ctx context.Context) (types.Credential, error) {
	logger := logging.FromContext(ctx)

	token, err := a.cache.Get(ctx, a.key)
	if err != nil {
		logger.Warn("token cache lookup failed", slog.String("error", err.Error()))
	}
	if token != "" {
		cred := types.Credential{Token: token, ExpiresAt: ExpiryOf(token)}
		if !cred.Expired(a.now().Add(expirySkew)) {
			logger.Debug("using cached token")
			return cred, nil
		}
	}

	cred, err := a.next.Login(ctx)
	if err != nil {
		return types.Credential{}, err
	}

	ttl := a.defaultTTL
	if !cred.ExpiresAt.IsZero() {
		ttl = cred.ExpiresAt.Sub(a.now()) - expirySkew
	}
	if ttl > 0 {
		if err := a.cache.Set(ctx, a.key, cred.Token, ttl); err != nil {
			logger.Warn("token cache store failed", slog.String("error", err.Error()))
		}
	}

	return cred, nil
}
