package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/auth/types"
	"github.com/Yulian302/lfusys-wetransfer/caching"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func authorizeServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/authorize", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLogin_Success(t *testing.T) {
	srv, _ := authorizeServer(t, http.StatusOK, `{"token": "jwt_token", "success": true}`)

	cred, err := NewClient(srv.Client(), srv.URL+"/v2/authorize", "secret").Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "jwt_token", cred.Token)
	assert.True(t, cred.ExpiresAt.IsZero())
}

func TestLogin_ReadsExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	srv, _ := authorizeServer(t, http.StatusOK, `{"success": true, "token": "`+token+`"}`)

	cred, err := NewClient(srv.Client(), srv.URL+"/v2/authorize", "secret").Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, token, cred.Token)
	assert.True(t, exp.Equal(cred.ExpiresAt))
}

func TestLogin_Forbidden(t *testing.T) {
	srv, _ := authorizeServer(t, http.StatusForbidden, `{"message": "Forbidden"}`)

	_, err := NewClient(srv.Client(), srv.URL+"/v2/authorize", "secret").Login(context.Background())

	var apiErr *apperror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestLogin_UnsuccessfulBody(t *testing.T) {
	srv, _ := authorizeServer(t, http.StatusOK, `{"success": false, "message": "key revoked"}`)

	_, err := NewClient(srv.Client(), srv.URL+"/v2/authorize", "secret").Login(context.Background())

	assert.ErrorIs(t, err, apperror.ErrAuthorizationFailed)
	assert.Contains(t, err.Error(), "key revoked")
}

func TestLogin_MissingKey(t *testing.T) {
	_, err := NewClient(nil, "http://127.0.0.1:1/v2/authorize", "").Login(context.Background())
	assert.ErrorIs(t, err, apperror.ErrMissingAPIKey)
}

func TestLogin_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, url+"/v2/authorize", "secret").Login(context.Background())

	var transportErr *apperror.TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 0, apperror.Status(err))
}

type stubAuthorizer struct {
	cred  types.Credential
	err   error
	calls int
}

func (s *stubAuthorizer) Login(ctx context.Context) (types.Credential, error) {
	s.calls++
	return s.cred, s.err
}

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *caching.RedisCachingService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, caching.NewRedisCachingService(client, "wetransfer:")
}

func TestCachedAuthorizer_ReusesToken(t *testing.T) {
	mr, cache := newRedisCache(t)
	token := signedToken(t, time.Now().Add(time.Hour))
	next := &stubAuthorizer{cred: types.Credential{Token: token, ExpiresAt: ExpiryOf(token)}}

	a := NewCachedAuthorizer(next, cache, "secret", 10*time.Minute)

	first, err := a.Login(context.Background())
	require.NoError(t, err)
	second, err := a.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.Token, second.Token)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "secret")
	ttl := mr.TTL(keys[0])
	assert.Greater(t, ttl, 50*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestCachedAuthorizer_OpaqueTokenUsesDefaultTTL(t *testing.T) {
	mr, cache := newRedisCache(t)
	next := &stubAuthorizer{cred: types.Credential{Token: "jwt_token"}}

	a := NewCachedAuthorizer(next, cache, "secret", 10*time.Minute)
	_, err := a.Login(context.Background())
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 10*time.Minute, mr.TTL(keys[0]))

	mr.FastForward(11 * time.Minute)
	_, err = a.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedAuthorizer_SkipsExpiredCachedToken(t *testing.T) {
	_, cache := newRedisCache(t)
	stale := signedToken(t, time.Now().Add(30*time.Second))
	fresh := signedToken(t, time.Now().Add(time.Hour))
	next := &stubAuthorizer{cred: types.Credential{Token: fresh, ExpiresAt: ExpiryOf(fresh)}}

	a := NewCachedAuthorizer(next, cache, "secret", 10*time.Minute)
	require.NoError(t, cache.Set(context.Background(), a.key, stale, time.Hour))

	cred, err := a.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, cred.Token)
	assert.Equal(t, 1, next.calls)
}

func TestCachedAuthorizer_CacheDownFallsThrough(t *testing.T) {
	mr, cache := newRedisCache(t)
	mr.Close()
	next := &stubAuthorizer{cred: types.Credential{Token: "jwt_token"}}

	cred, err := NewCachedAuthorizer(next, cache, "secret", time.Minute).Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "jwt_token", cred.Token)
}

func TestCachedAuthorizer_PropagatesLoginError(t *testing.T) {
	next := &stubAuthorizer{err: &apperror.APIError{Status: 403, Message: "Forbidden"}}

	_, err := NewCachedAuthorizer(next, caching.NewNullCachingService(), "secret", time.Minute).Login(context.Background())

	assert.Equal(t, 403, apperror.Status(err))
}
