package services

import (
	"context"
	"fmt"

	"github.com/Yulian302/lfusys-wetransfer/boards/types"
	"github.com/Yulian302/lfusys-wetransfer/files"
	filetypes "github.com/Yulian302/lfusys-wetransfer/files/types"
	"github.com/Yulian302/lfusys-wetransfer/store"
	"github.com/Yulian302/lfusys-wetransfer/uploads"
	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
)

type BoardService interface {
	Create(ctx context.Context, name string, description *string) (*types.Board, error)
	Find(ctx context.Context, boardID string) (*types.Board, error)
	AddLinks(ctx context.Context, boardID string, links []types.AddLink) ([]types.Link, error)
	AddFiles(ctx context.Context, boardID string, paths []string) (*types.BoardFiles, error)
	UploadURLFor(ctx context.Context, boardID, fileID string, part int, multipartID string) (string, error)
	MarkAsComplete(ctx context.Context, boardID, fileID string) (*types.CompleteFileResponse, error)
}

type BoardServiceImpl struct {
	requester    Requester
	orchestrator *uploads.Orchestrator[*types.BoardFiles]
	resources    store.ResourceStore
}

func NewBoardService(r Requester, inspector files.Inspector, resources store.ResourceStore) *BoardServiceImpl {
	if resources == nil {
		resources = store.NewNullResourceStore()
	}
	return &BoardServiceImpl{
		requester:    r,
		orchestrator: uploads.NewOrchestrator[*types.BoardFiles](inspector, r),
		resources:    resources,
	}
}

func (s *BoardServiceImpl) WithProgress(fn uploadtypes.ProgressFunc) *BoardServiceImpl {
	cp := *s
	cp.orchestrator = s.orchestrator.WithProgress(fn)
	return &cp
}

// Create makes an empty board. A nil description is left out of the request.
func (s *BoardServiceImpl) Create(ctx context.Context, name string, description *string) (*types.Board, error) {
	req := types.CreateBoardRequest{Name: name, Description: description}

	var board types.Board
	if err := s.requester.Post(ctx, "/", req, &board); err != nil {
		return nil, err
	}

	record(ctx, s.resources, store.ResourceRecord{
		ID:    board.ID,
		Kind:  store.KindBoard,
		Name:  board.Name,
		State: board.State,
		URL:   board.URL,
	})

	return &board, nil
}

func (s *BoardServiceImpl) Find(ctx context.Context, boardID string) (*types.Board, error) {
	var board types.Board
	if err := s.requester.Get(ctx, "/"+boardID, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardServiceImpl) AddLinks(ctx context.Context, boardID string, links []types.AddLink) ([]types.Link, error) {
	var added []types.Link
	if err := s.requester.Post(ctx, "/"+boardID+"/links", links, &added); err != nil {
		return nil, err
	}
	return added, nil
}

// AddFiles registers paths on an existing board and uploads them. Boards have
// no finalize step; the files are live once each is marked complete.
func (s *BoardServiceImpl) AddFiles(ctx context.Context, boardID string, paths []string) (*types.BoardFiles, error) {
	res, err := s.orchestrator.CreateAndUpload(ctx, &boardResource{svc: s, boardID: boardID}, paths)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *BoardServiceImpl) UploadURLFor(ctx context.Context, boardID, fileID string, part int, multipartID string) (string, error) {
	var res struct {
		URL string `json:"url"`
	}
	path := fmt.Sprintf("/%s/files/%s/upload-url/%d/%s", boardID, fileID, part, multipartID)
	if err := s.requester.Get(ctx, path, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (s *BoardServiceImpl) MarkAsComplete(ctx context.Context, boardID, fileID string) (*types.CompleteFileResponse, error) {
	var res types.CompleteFileResponse
	path := fmt.Sprintf("/%s/files/%s/upload-complete", boardID, fileID)
	if err := s.requester.Put(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type boardResource struct {
	svc     *BoardServiceImpl
	boardID string
}

func (r *boardResource) Register(ctx context.Context, targets []filetypes.UploadTarget) (*types.BoardFiles, []uploadtypes.RemoteFile, error) {
	req := make([]types.FileRequest, 0, len(targets))
	for _, t := range targets {
		req = append(req, types.FileRequest{Name: t.Name, Size: t.Size})
	}

	var created []types.File
	if err := r.svc.requester.Post(ctx, "/"+r.boardID+"/files", req, &created); err != nil {
		return nil, nil, err
	}

	remote := make([]uploadtypes.RemoteFile, 0, len(created))
	for _, f := range created {
		remote = append(remote, f.Remote())
	}
	return &types.BoardFiles{BoardID: r.boardID, Files: created}, remote, nil
}

func (r *boardResource) ID(b *types.BoardFiles) string {
	return b.BoardID
}

func (r *boardResource) UploadURL(ctx context.Context, b *types.BoardFiles, file uploadtypes.RemoteFile, part int) (string, error) {
	return r.svc.UploadURLFor(ctx, b.BoardID, file.ID, part, file.Multipart.ID)
}

func (r *boardResource) Complete(ctx context.Context, b *types.BoardFiles, file uploadtypes.RemoteFile) error {
	_, err := r.svc.MarkAsComplete(ctx, b.BoardID, file.ID)
	return err
}

func (r *boardResource) Finalize(ctx context.Context, b *types.BoardFiles) (*types.BoardFiles, error) {
	return b, nil
}
