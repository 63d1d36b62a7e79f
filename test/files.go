package test

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates name under t.TempDir() holding size bytes of a repeating
// pattern and returns its path.
func WriteFile(t *testing.T, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
