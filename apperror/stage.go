package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the step of an upload run that failed.
type Stage string

const (
	StageInspect   Stage = "inspect"
	StageRegister  Stage = "register"
	StageUploadURL Stage = "upload_url"
	StageUpload    Stage = "upload"
	StageComplete  Stage = "complete"
	StageFinalize  Stage = "finalize"
)

// StageError tags the first error of an upload run with the stage it happened
// in. FileID and Part are set only for per-file stages.
type StageError struct {
	Stage      Stage
	ResourceID string
	FileID     string
	Part       int
	Err        error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.ResourceID != "" {
		fmt.Fprintf(&b, " resource=%s", e.ResourceID)
	}
	if e.FileID != "" {
		fmt.Fprintf(&b, " file=%s", e.FileID)
	}
	if e.Part > 0 {
		fmt.Fprintf(&b, " part=%d", e.Part)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf reports the stage err was tagged with, if any.
func StageOf(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
