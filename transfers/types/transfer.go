package types

import (
	"time"

	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
)

type FileRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type CreateTransferRequest struct {
	Message string        `json:"message"`
	Files   []FileRequest `json:"files"`
}

type CompleteFileUploadRequest struct {
	PartNumbers int `json:"part_numbers"`
}

type File struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Type      string                `json:"type"`
	Size      int64                 `json:"size"`
	Multipart uploadtypes.Multipart `json:"multipart"`
}

// Transfer is a snapshot of a transfer. URL stays nil until it is finalized.
type Transfer struct {
	Success   bool       `json:"success"`
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	State     string     `json:"state"`
	URL       *string    `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Files     []File     `json:"files"`
}

type UploadURLResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// CompleteFileResponse covers both acknowledgment shapes the API answers with.
type CompleteFileResponse struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Size      int64  `json:"size,omitempty"`
	ChunkSize int64  `json:"chunk_size,omitempty"`
	Retries   int    `json:"retries,omitempty"`
	Success   bool   `json:"success,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (f File) Remote() uploadtypes.RemoteFile {
	return uploadtypes.RemoteFile{
		ID:        f.ID,
		Name:      f.Name,
		Size:      f.Size,
		Multipart: f.Multipart,
	}
}
