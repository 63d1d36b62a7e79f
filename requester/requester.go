package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/logging"
	"github.com/sony/gobreaker/v2"
)

const (
	HeaderAPIKey  = "x-api-key"
	jsonMediaType = "application/json"
)

// Requester issues authenticated JSON calls against one API base URL and raw
// PUTs against presigned storage URLs. It holds no mutable state and is safe
// for concurrent use when its http.Client is.
type Requester struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	baseURL string
	apiKey  string
	token   string
}

type Options struct {
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker[*http.Response]
}

func New(baseURL, apiKey, token string, opts Options) *Requester {
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(0, nil)
	}
	return &Requester{
		http:    client,
		breaker: opts.Breaker,
		baseURL: baseURL,
		apiKey:  apiKey,
		token:   token,
	}
}

// NewHTTPClient returns an http.Client whose transport logs every request.
func NewHTTPClient(timeout time.Duration, base http.RoundTripper) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: logging.NewTransport(base, nil),
	}
}

func (r *Requester) BaseURL() string {
	return r.baseURL
}

func (r *Requester) Get(ctx context.Context, path string, out any) error {
	return r.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (r *Requester) Post(ctx context.Context, path string, payload any, out any) error {
	return r.doJSON(ctx, http.MethodPost, path, payload, out)
}

func (r *Requester) Put(ctx context.Context, path string, payload any, out any) error {
	return r.doJSON(ctx, http.MethodPut, path, payload, out)
}

// UploadBytes PUTs data to a presigned URL. Only the raw body is sent and any
// non-2xx status is a StorageUploadError, whatever the body says.
func (r *Requester) UploadBytes(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return &apperror.TransportError{Message: err.Error(), Err: err}
	}
	req.ContentLength = int64(len(data))

	resp, err := r.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperror.StorageUploadError{Status: resp.StatusCode}
	}
	return nil
}

func (r *Requester) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &apperror.DecodeError{Message: "encode request: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return &apperror.TransportError{Message: err.Error(), Err: err}
	}
	r.setHeaders(req)

	resp, err := r.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return HandleResponse(resp, out)
}

func (r *Requester) setHeaders(req *http.Request) {
	req.Header.Set(HeaderAPIKey, r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", jsonMediaType)
	req.Header.Set("Accept", jsonMediaType)
}

func (r *Requester) send(req *http.Request) (*http.Response, error) {
	do := func() (*http.Response, error) {
		return r.http.Do(req)
	}

	var (
		resp *http.Response
		err  error
	)
	if r.breaker != nil {
		resp, err = r.breaker.Execute(do)
	} else {
		resp, err = do()
	}
	if err != nil {
		return nil, &apperror.TransportError{Message: err.Error(), Err: err}
	}
	return resp, nil
}

// HandleResponse decodes a 2xx body into out and anything else into an
// APIError carrying the response status.
func HandleResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apperror.APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return &apperror.APIError{Status: 0, Message: apperror.MalformedErrorBody}
		}
		apiErr.Status = resp.StatusCode
		return &apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &apperror.DecodeError{Message: "empty response body", Err: err}
		}
		return &apperror.DecodeError{Message: err.Error(), Err: err}
	}
	return nil
}
