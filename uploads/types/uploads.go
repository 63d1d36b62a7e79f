package types

// Multipart is the server's instruction for splitting one file. ID is only
// set for board uploads.
type Multipart struct {
	ID          string `json:"id,omitempty"`
	PartNumbers int    `json:"part_numbers"`
	ChunkSize   int64  `json:"chunk_size"`
}

// RemoteFile is the server handle for an upload target, valid from resource
// creation until the file is acknowledged complete.
type RemoteFile struct {
	ID        string
	Name      string
	Size      int64
	Multipart Multipart
}

type ProgressEvent struct {
	ResourceID string
	FileID     string
	Name       string
	Part       int
	Parts      int
	BytesSent  int64
	BytesTotal int64
}

type ProgressFunc func(ProgressEvent)
