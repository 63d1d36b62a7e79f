package types

// UploadTarget is one local file to upload, captured when the request is built.
type UploadTarget struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"` // sniffed locally, never sent
}
