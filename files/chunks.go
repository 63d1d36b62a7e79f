package files

import (
	"fmt"
	"io"
	"os"
)

// ChunkReader hands out consecutive chunks of an open file.
type ChunkReader struct {
	file *os.File
	path string
	read int64
}

func OpenChunks(path string) (*ChunkReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &ChunkReader{file: file, path: path}, nil
}

// Next reads up to chunkSize bytes. A short chunk is returned as is at end of
// file and never padded; at end of file an empty chunk is returned.
func (c *ChunkReader) Next(chunkSize int64) ([]byte, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", chunkSize)
	}
	buf := make([]byte, chunkSize)
	n, err := io.ReadFull(c.file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read %s at offset %d: %w", c.path, c.read, err)
	}
	c.read += int64(n)
	return buf[:n], nil
}

func (c *ChunkReader) BytesRead() int64 {
	return c.read
}

func (c *ChunkReader) Close() error {
	return c.file.Close()
}
