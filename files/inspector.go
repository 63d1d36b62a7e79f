package files

import (
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/files/types"
	"github.com/gabriel-vasile/mimetype"
)

const sniffLen = 512

type Inspector interface {
	Inspect(path string) (types.UploadTarget, error)
}

// FileInspector reads metadata from the local filesystem. It opens every file
// so that unreadable files fail here rather than mid upload.
type FileInspector struct{}

func NewFileInspector() *FileInspector {
	return &FileInspector{}
}

func (f *FileInspector) Inspect(path string) (types.UploadTarget, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return types.UploadTarget{}, &apperror.InspectionError{Path: path, Err: err}
	}
	if stat.IsDir() {
		return types.UploadTarget{}, &apperror.InspectionError{Path: path, Err: apperror.ErrIsDirectory}
	}

	file, err := os.Open(path)
	if err != nil {
		return types.UploadTarget{}, &apperror.InspectionError{Path: path, Err: err}
	}
	defer file.Close()

	contentType, err := detectContentType(file, path)
	if err != nil {
		return types.UploadTarget{}, &apperror.InspectionError{Path: path, Err: err}
	}

	return types.UploadTarget{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        stat.Size(),
		ContentType: contentType,
	}, nil
}

func detectContentType(r io.Reader, path string) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil && mt.String() != "application/octet-stream" {
			return mt.String(), nil
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt, nil
	}
	return "application/octet-stream", nil
}
