package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Transport logs every outgoing request with a generated request id. Query
// strings are never logged since presigned storage URLs carry signatures.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	logger := t.Logger
	if logger == nil {
		logger = FromContext(req.Context())
	}
	reqLogger := logger.With(
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
	)

	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		reqLogger.Error("http request failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}

	reqLogger.Log(
		req.Context(),
		level,
		"http request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}
