package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/files"
	filetypes "github.com/Yulian302/lfusys-wetransfer/files/types"
	"github.com/Yulian302/lfusys-wetransfer/uploads/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parent struct {
	ID    string
	State string
}

// fakeResource records every call in order. failAt keys look like
// "upload_url:f1:2" or "complete:f0".
type fakeResource struct {
	calls     []string
	chunkSize int64
	sizes     map[string]int64
	files     func(targets []filetypes.UploadTarget) []types.RemoteFile
	failAt    map[string]error
}

func (f *fakeResource) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failAt[call]
}

func (f *fakeResource) Register(ctx context.Context, targets []filetypes.UploadTarget) (parent, []types.RemoteFile, error) {
	if err := f.record("register"); err != nil {
		return parent{}, nil, err
	}
	if f.files != nil {
		return parent{ID: "t1", State: "uploading"}, f.files(targets), nil
	}
	remote := make([]types.RemoteFile, len(targets))
	for i, target := range targets {
		parts := int((target.Size + f.chunkSize - 1) / f.chunkSize)
		if parts == 0 {
			parts = 1
		}
		remote[i] = types.RemoteFile{
			ID:        fmt.Sprintf("f%d", i),
			Name:      target.Name,
			Size:      target.Size,
			Multipart: types.Multipart{PartNumbers: parts, ChunkSize: f.chunkSize},
		}
	}
	return parent{ID: "t1", State: "uploading"}, remote, nil
}

func (f *fakeResource) ID(p parent) string { return p.ID }

func (f *fakeResource) UploadURL(ctx context.Context, p parent, file types.RemoteFile, part int) (string, error) {
	call := fmt.Sprintf("upload_url:%s:%d", file.ID, part)
	if err := f.record(call); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage/%s/%d", file.ID, part), nil
}

func (f *fakeResource) Complete(ctx context.Context, p parent, file types.RemoteFile) error {
	return f.record("complete:" + file.ID)
}

func (f *fakeResource) Finalize(ctx context.Context, p parent) (parent, error) {
	if err := f.record("finalize"); err != nil {
		return parent{}, err
	}
	p.State = "processing"
	return p, nil
}

type fakeStorage struct {
	res    *fakeResource
	bodies map[string][]byte
	failAt map[string]error
}

func (s *fakeStorage) UploadBytes(ctx context.Context, url string, data []byte) error {
	call := "put:" + url
	s.res.calls = append(s.res.calls, call)
	if s.bodies == nil {
		s.bodies = map[string][]byte{}
	}
	s.bodies[url] = append([]byte(nil), data...)
	return s.failAt[url]
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o600))
	return path
}

func newFixture(chunkSize int64) (*fakeResource, *fakeStorage, *Orchestrator[parent]) {
	res := &fakeResource{chunkSize: chunkSize, failAt: map[string]error{}}
	storage := &fakeStorage{res: res, failAt: map[string]error{}}
	return res, storage, NewOrchestrator[parent](files.NewFileInspector(), storage)
}

func TestCreateAndUpload_CallOrder(t *testing.T) {
	res, storage, o := newFixture(10)
	a := writeFile(t, "a.bin", 25)
	b := writeFile(t, "b.bin", 10)

	got, err := o.CreateAndUpload(context.Background(), res, []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, parent{ID: "t1", State: "processing"}, got)

	assert.Equal(t, []string{
		"register",
		"upload_url:f0:1", "put:https://storage/f0/1",
		"upload_url:f0:2", "put:https://storage/f0/2",
		"upload_url:f0:3", "put:https://storage/f0/3",
		"complete:f0",
		"upload_url:f1:1", "put:https://storage/f1/1",
		"complete:f1",
		"finalize",
	}, res.calls)

	assert.Len(t, storage.bodies["https://storage/f0/1"], 10)
	assert.Len(t, storage.bodies["https://storage/f0/3"], 5)
	assert.Len(t, storage.bodies["https://storage/f1/1"], 10)
}

func TestCreateAndUpload_InspectionFailureMakesNoCalls(t *testing.T) {
	res, _, o := newFixture(10)
	a := writeFile(t, "a.bin", 5)
	missing := filepath.Join(t.TempDir(), "missing.bin")

	_, err := o.CreateAndUpload(context.Background(), res, []string{a, missing})

	var inspectErr *apperror.InspectionError
	require.True(t, errors.As(err, &inspectErr))
	assert.Equal(t, missing, inspectErr.Path)
	stage, _ := apperror.StageOf(err)
	assert.Equal(t, apperror.StageInspect, stage)
	assert.Empty(t, res.calls)
}

func TestCreateAndUpload_EmptyPaths(t *testing.T) {
	res, _, o := newFixture(10)

	_, err := o.CreateAndUpload(context.Background(), res, nil)
	assert.ErrorIs(t, err, apperror.ErrEmptyPaths)
	assert.Empty(t, res.calls)
}

func TestCreateAndUpload_ChunkFailureAborts(t *testing.T) {
	res, storage, o := newFixture(10)
	a := writeFile(t, "a.bin", 30)
	b := writeFile(t, "b.bin", 10)
	storage.failAt["https://storage/f0/2"] = &apperror.StorageUploadError{Status: 500}

	_, err := o.CreateAndUpload(context.Background(), res, []string{a, b})

	var stageErr *apperror.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, apperror.StageUpload, stageErr.Stage)
	assert.Equal(t, "f0", stageErr.FileID)
	assert.Equal(t, 2, stageErr.Part)
	assert.Equal(t, 500, apperror.Status(err))

	assert.Equal(t, []string{
		"register",
		"upload_url:f0:1", "put:https://storage/f0/1",
		"upload_url:f0:2", "put:https://storage/f0/2",
	}, res.calls)
}

func TestCreateAndUpload_UploadURLFailure(t *testing.T) {
	res, _, o := newFixture(10)
	a := writeFile(t, "a.bin", 10)
	res.failAt["upload_url:f0:1"] = &apperror.APIError{Status: 404, Message: "not found"}

	_, err := o.CreateAndUpload(context.Background(), res, []string{a})

	stage, _ := apperror.StageOf(err)
	assert.Equal(t, apperror.StageUploadURL, stage)
	assert.Equal(t, 404, apperror.Status(err))
	assert.NotContains(t, res.calls, "complete:f0")
}

func TestCreateAndUpload_CompletionFailureStopsRemainingFiles(t *testing.T) {
	res, _, o := newFixture(10)
	a := writeFile(t, "a.bin", 10)
	b := writeFile(t, "b.bin", 10)
	res.failAt["complete:f0"] = &apperror.APIError{Status: 409, Message: "conflict"}

	_, err := o.CreateAndUpload(context.Background(), res, []string{a, b})

	stage, _ := apperror.StageOf(err)
	assert.Equal(t, apperror.StageComplete, stage)
	assert.NotContains(t, res.calls, "upload_url:f1:1")
	assert.NotContains(t, res.calls, "finalize")
}

func TestCreateAndUpload_RegisterAndFinalizeFailures(t *testing.T) {
	res, _, o := newFixture(10)
	a := writeFile(t, "a.bin", 10)
	res.failAt["register"] = &apperror.APIError{Status: 400, Message: "bad"}

	_, err := o.CreateAndUpload(context.Background(), res, []string{a})
	stage, _ := apperror.StageOf(err)
	assert.Equal(t, apperror.StageRegister, stage)
	assert.Equal(t, []string{"register"}, res.calls)

	res, _, o = newFixture(10)
	res.failAt["finalize"] = &apperror.TransportError{Message: "reset"}

	_, err = o.CreateAndUpload(context.Background(), res, []string{a})
	stage, _ = apperror.StageOf(err)
	assert.Equal(t, apperror.StageFinalize, stage)
}

func TestCreateAndUpload_FileCountMismatch(t *testing.T) {
	res, _, o := newFixture(10)
	res.files = func(targets []filetypes.UploadTarget) []types.RemoteFile {
		return []types.RemoteFile{{ID: "f0", Multipart: types.Multipart{PartNumbers: 1, ChunkSize: 10}}}
	}
	a := writeFile(t, "a.bin", 10)
	b := writeFile(t, "b.bin", 10)

	_, err := o.CreateAndUpload(context.Background(), res, []string{a, b})
	assert.ErrorIs(t, err, apperror.ErrFileCountMismatch)
	assert.Equal(t, []string{"register"}, res.calls)
}

func TestCreateAndUpload_InvalidMultipart(t *testing.T) {
	res, _, o := newFixture(10)
	res.files = func(targets []filetypes.UploadTarget) []types.RemoteFile {
		return []types.RemoteFile{{ID: "f0", Multipart: types.Multipart{PartNumbers: 0, ChunkSize: 10}}}
	}
	a := writeFile(t, "a.bin", 10)

	_, err := o.CreateAndUpload(context.Background(), res, []string{a})
	assert.ErrorIs(t, err, apperror.ErrInvalidMultipart)
	assert.Equal(t, []string{"register"}, res.calls)
}

func TestCreateAndUpload_ServerChunkingIsAuthoritative(t *testing.T) {
	res, storage, o := newFixture(10)
	// the server asks for 4 byte chunks even though we would have used 10
	res.files = func(targets []filetypes.UploadTarget) []types.RemoteFile {
		return []types.RemoteFile{{ID: "f0", Name: targets[0].Name, Multipart: types.Multipart{PartNumbers: 3, ChunkSize: 4}}}
	}
	a := writeFile(t, "a.bin", 10)

	_, err := o.CreateAndUpload(context.Background(), res, []string{a})
	require.NoError(t, err)
	assert.Len(t, storage.bodies["https://storage/f0/1"], 4)
	assert.Len(t, storage.bodies["https://storage/f0/2"], 4)
	assert.Len(t, storage.bodies["https://storage/f0/3"], 2)
}

func TestCreateAndUpload_ReportsProgress(t *testing.T) {
	res, _, o := newFixture(10)
	a := writeFile(t, "a.bin", 15)

	var events []types.ProgressEvent
	o = o.WithProgress(func(e types.ProgressEvent) { events = append(events, e) })

	_, err := o.CreateAndUpload(context.Background(), res, []string{a})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(10), events[0].BytesSent)
	assert.Equal(t, int64(15), events[1].BytesSent)
	assert.Equal(t, 2, events[1].Parts)
	assert.Equal(t, "t1", events[1].ResourceID)
}
