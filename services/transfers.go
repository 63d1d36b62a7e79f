package services

import (
	"context"
	"fmt"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/files"
	filetypes "github.com/Yulian302/lfusys-wetransfer/files/types"
	"github.com/Yulian302/lfusys-wetransfer/store"
	"github.com/Yulian302/lfusys-wetransfer/transfers/types"
	"github.com/Yulian302/lfusys-wetransfer/uploads"
	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
)

type TransferService interface {
	CreateTransferRequest(ctx context.Context, message string, paths []string) (*types.Transfer, error)
	Create(ctx context.Context, message string, paths []string) (*types.Transfer, error)
	Find(ctx context.Context, transferID string) (*types.Transfer, error)
	UploadURLFor(ctx context.Context, transferID, fileID string, part int) (string, error)
	MarkAsComplete(ctx context.Context, transferID, fileID string, partNumbers int) (*types.CompleteFileResponse, error)
	Finalize(ctx context.Context, transferID string) (*types.Transfer, error)
}

type TransferServiceImpl struct {
	requester    Requester
	orchestrator *uploads.Orchestrator[*types.Transfer]
	resources    store.ResourceStore
}

func NewTransferService(r Requester, inspector files.Inspector, resources store.ResourceStore) *TransferServiceImpl {
	if resources == nil {
		resources = store.NewNullResourceStore()
	}
	return &TransferServiceImpl{
		requester:    r,
		orchestrator: uploads.NewOrchestrator[*types.Transfer](inspector, r),
		resources:    resources,
	}
}

// WithProgress returns a copy of the service reporting uploaded parts to fn.
func (s *TransferServiceImpl) WithProgress(fn uploadtypes.ProgressFunc) *TransferServiceImpl {
	cp := *s
	cp.orchestrator = s.orchestrator.WithProgress(fn)
	return &cp
}

// CreateTransferRequest registers a transfer for paths without uploading
// any content.
func (s *TransferServiceImpl) CreateTransferRequest(ctx context.Context, message string, paths []string) (*types.Transfer, error) {
	if message == "" {
		return nil, apperror.ErrMissingMessage
	}
	targets, err := s.orchestrator.Inspect(paths)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, message, targets)
}

// Create registers a transfer, uploads every file and finalizes it.
func (s *TransferServiceImpl) Create(ctx context.Context, message string, paths []string) (*types.Transfer, error) {
	if message == "" {
		return nil, apperror.ErrMissingMessage
	}
	transfer, err := s.orchestrator.CreateAndUpload(ctx, &transferResource{svc: s, message: message}, paths)
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *TransferServiceImpl) Find(ctx context.Context, transferID string) (*types.Transfer, error) {
	var transfer types.Transfer
	if err := s.requester.Get(ctx, "/"+transferID, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *TransferServiceImpl) UploadURLFor(ctx context.Context, transferID, fileID string, part int) (string, error) {
	var res types.UploadURLResponse
	path := fmt.Sprintf("/%s/files/%s/upload-url/%d", transferID, fileID, part)
	if err := s.requester.Get(ctx, path, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

// MarkAsComplete acknowledges that every part of a file was uploaded. It may
// be repeated with the same arguments.
func (s *TransferServiceImpl) MarkAsComplete(ctx context.Context, transferID, fileID string, partNumbers int) (*types.CompleteFileResponse, error) {
	var res types.CompleteFileResponse
	path := fmt.Sprintf("/%s/files/%s/upload-complete", transferID, fileID)
	req := types.CompleteFileUploadRequest{PartNumbers: partNumbers}
	if err := s.requester.Put(ctx, path, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *TransferServiceImpl) Finalize(ctx context.Context, transferID string) (*types.Transfer, error) {
	var transfer types.Transfer
	if err := s.requester.Put(ctx, "/"+transferID+"/finalize", nil, &transfer); err != nil {
		return nil, err
	}

	rec := store.ResourceRecord{
		ID:        transfer.ID,
		Kind:      store.KindTransfer,
		Name:      transfer.Message,
		State:     transfer.State,
		ExpiresAt: transfer.ExpiresAt,
		Files:     len(transfer.Files),
	}
	if transfer.URL != nil {
		rec.URL = *transfer.URL
	}
	record(ctx, s.resources, rec)

	return &transfer, nil
}

func (s *TransferServiceImpl) register(ctx context.Context, message string, targets []filetypes.UploadTarget) (*types.Transfer, error) {
	req := types.CreateTransferRequest{
		Message: message,
		Files:   make([]types.FileRequest, 0, len(targets)),
	}
	for _, t := range targets {
		req.Files = append(req.Files, types.FileRequest{Name: t.Name, Size: t.Size})
	}

	var transfer types.Transfer
	if err := s.requester.Post(ctx, "/", req, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// transferResource adapts the service to the upload orchestrator.
type transferResource struct {
	svc     *TransferServiceImpl
	message string
}

func (r *transferResource) Register(ctx context.Context, targets []filetypes.UploadTarget) (*types.Transfer, []uploadtypes.RemoteFile, error) {
	transfer, err := r.svc.register(ctx, r.message, targets)
	if err != nil {
		return nil, nil, err
	}
	remote := make([]uploadtypes.RemoteFile, 0, len(transfer.Files))
	for _, f := range transfer.Files {
		remote = append(remote, f.Remote())
	}
	return transfer, remote, nil
}

func (r *transferResource) ID(t *types.Transfer) string {
	return t.ID
}

func (r *transferResource) UploadURL(ctx context.Context, t *types.Transfer, file uploadtypes.RemoteFile, part int) (string, error) {
	return r.svc.UploadURLFor(ctx, t.ID, file.ID, part)
}

func (r *transferResource) Complete(ctx context.Context, t *types.Transfer, file uploadtypes.RemoteFile) error {
	_, err := r.svc.MarkAsComplete(ctx, t.ID, file.ID, file.Multipart.PartNumbers)
	return err
}

func (r *transferResource) Finalize(ctx context.Context, t *types.Transfer) (*types.Transfer, error) {
	return r.svc.Finalize(ctx, t.ID)
}
