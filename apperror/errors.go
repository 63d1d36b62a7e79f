package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey       = errors.New("api key is required")
	ErrAuthorizationFailed = errors.New("authorization failed")
	ErrEmptyPaths          = errors.New("at least one file path is required")
	ErrMissingMessage      = errors.New("transfer message is required")
	ErrFileCountMismatch   = errors.New("server returned a different number of files than requested")
	ErrInvalidMultipart    = errors.New("invalid multipart descriptor")
	ErrIsDirectory         = errors.New("path is a directory")
	ErrRecordNotFound      = errors.New("record not found")
)

const MalformedErrorBody = "malformed error body"

// APIError is the typed error body returned by the API. The server never
// sends the status in the body, it is stamped from the HTTP response.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TransportError is a connection level failure. It never carries a status.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StorageUploadError is returned when a presigned storage URL rejects a chunk.
type StorageUploadError struct {
	Status int
}

func (e *StorageUploadError) Error() string {
	return fmt.Sprintf("upload failed: storage responded with status %d", e.Status)
}

type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type InspectionError struct {
	Path string
	Err  error
}

func (e *InspectionError) Error() string {
	return fmt.Sprintf("inspect %s: %v", e.Path, e.Err)
}

func (e *InspectionError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status carried by err, or 0 when there is none.
func Status(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var storageErr *StorageUploadError
	if errors.As(err, &storageErr) {
		return storageErr.Status
	}
	return 0
}
