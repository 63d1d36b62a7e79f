package uploads

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/Yulian302/lfusys-wetransfer/files"
	filetypes "github.com/Yulian302/lfusys-wetransfer/files/types"
	"github.com/Yulian302/lfusys-wetransfer/logging"
	"github.com/Yulian302/lfusys-wetransfer/uploads/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Yulian302/lfusys-wetransfer/uploads"

// Resource binds the orchestrator to one kind of parent resource.
type Resource[R any] interface {
	// Register creates the remote files for targets. The returned files must be
	// in the same order as targets.
	Register(ctx context.Context, targets []filetypes.UploadTarget) (R, []types.RemoteFile, error)
	ID(parent R) string
	UploadURL(ctx context.Context, parent R, file types.RemoteFile, part int) (string, error)
	Complete(ctx context.Context, parent R, file types.RemoteFile) error
	Finalize(ctx context.Context, parent R) (R, error)
}

type StorageUploader interface {
	UploadBytes(ctx context.Context, url string, data []byte) error
}

// Orchestrator runs the register, upload, complete, finalize sequence. Files
// and parts are strictly sequential; the first error stops the run and nothing
// already done on the server is rolled back.
type Orchestrator[R any] struct {
	inspector files.Inspector
	storage   StorageUploader
	progress  types.ProgressFunc
	tracer    trace.Tracer
}

func NewOrchestrator[R any](inspector files.Inspector, storage StorageUploader) *Orchestrator[R] {
	return &Orchestrator[R]{
		inspector: inspector,
		storage:   storage,
		tracer:    otel.Tracer(tracerName),
	}
}

// WithProgress returns a copy reporting every uploaded part to fn.
func (o *Orchestrator[R]) WithProgress(fn types.ProgressFunc) *Orchestrator[R] {
	cp := *o
	cp.progress = fn
	return &cp
}

// Inspect resolves every path before anything is sent to the server.
func (o *Orchestrator[R]) Inspect(paths []string) ([]filetypes.UploadTarget, error) {
	if len(paths) == 0 {
		return nil, &apperror.StageError{Stage: apperror.StageInspect, Err: apperror.ErrEmptyPaths}
	}

	targets := make([]filetypes.UploadTarget, 0, len(paths))
	for _, path := range paths {
		target, err := o.inspector.Inspect(path)
		if err != nil {
			return nil, &apperror.StageError{Stage: apperror.StageInspect, Err: err}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (o *Orchestrator[R]) CreateAndUpload(ctx context.Context, res Resource[R], paths []string) (R, error) {
	ctx, span := o.tracer.Start(ctx, "uploads.CreateAndUpload",
		trace.WithAttributes(attribute.Int("upload.files", len(paths))),
	)
	defer span.End()

	parent, err := o.createAndUpload(ctx, res, paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return parent, err
	}
	return parent, nil
}

func (o *Orchestrator[R]) createAndUpload(ctx context.Context, res Resource[R], paths []string) (R, error) {
	var zero R

	targets, err := o.Inspect(paths)
	if err != nil {
		return zero, err
	}

	parent, remote, err := res.Register(ctx, targets)
	if err != nil {
		return zero, &apperror.StageError{Stage: apperror.StageRegister, Err: err}
	}
	resourceID := res.ID(parent)

	if len(remote) != len(targets) {
		return zero, &apperror.StageError{
			Stage:      apperror.StageRegister,
			ResourceID: resourceID,
			Err:        fmt.Errorf("%w: sent %d, got %d", apperror.ErrFileCountMismatch, len(targets), len(remote)),
		}
	}

	logger := logging.FromContext(ctx).With(slog.String("resource_id", resourceID))
	logger.Info("resource registered", slog.Int("files", len(remote)))

	for i := range targets {
		if err := o.UploadFile(ctx, res, parent, targets[i], remote[i]); err != nil {
			return zero, err
		}
	}

	final, err := res.Finalize(ctx, parent)
	if err != nil {
		return zero, &apperror.StageError{Stage: apperror.StageFinalize, ResourceID: resourceID, Err: err}
	}
	logger.Info("upload finished")

	return final, nil
}

// UploadFile uploads every part of one registered file and acknowledges it.
func (o *Orchestrator[R]) UploadFile(ctx context.Context, res Resource[R], parent R, target filetypes.UploadTarget, file types.RemoteFile) error {
	resourceID := res.ID(parent)
	mp := file.Multipart

	ctx, span := o.tracer.Start(ctx, "uploads.UploadFile", trace.WithAttributes(
		attribute.String("upload.resource_id", resourceID),
		attribute.String("upload.file_id", file.ID),
		attribute.Int("upload.parts", mp.PartNumbers),
		attribute.Int64("upload.chunk_size", mp.ChunkSize),
	))
	defer span.End()

	err := o.uploadFile(ctx, res, parent, target, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (o *Orchestrator[R]) uploadFile(ctx context.Context, res Resource[R], parent R, target filetypes.UploadTarget, file types.RemoteFile) error {
	resourceID := res.ID(parent)
	mp := file.Multipart

	logger := logging.FromContext(ctx).With(
		slog.String("resource_id", resourceID),
		slog.String("file_id", file.ID),
		slog.String("name", target.Name),
	)

	stageErr := func(stage apperror.Stage, part int, err error) error {
		return &apperror.StageError{Stage: stage, ResourceID: resourceID, FileID: file.ID, Part: part, Err: err}
	}

	if file.Name != "" && file.Name != target.Name {
		logger.Warn("remote file name differs from local file", slog.String("remote_name", file.Name))
	}
	if mp.PartNumbers < 1 || mp.ChunkSize <= 0 {
		return stageErr(apperror.StageUpload, 0, fmt.Errorf("%w: part_numbers=%d chunk_size=%d",
			apperror.ErrInvalidMultipart, mp.PartNumbers, mp.ChunkSize))
	}

	reader, err := files.OpenChunks(target.Path)
	if err != nil {
		return stageErr(apperror.StageUpload, 0, &apperror.InspectionError{Path: target.Path, Err: err})
	}
	defer reader.Close()

	logger.Debug("uploading file",
		slog.Int64("size", target.Size),
		slog.String("content_type", target.ContentType),
		slog.Int("parts", mp.PartNumbers),
	)

	for part := 1; part <= mp.PartNumbers; part++ {
		chunk, err := reader.Next(mp.ChunkSize)
		if err != nil {
			return stageErr(apperror.StageUpload, part, &apperror.InspectionError{Path: target.Path, Err: err})
		}

		url, err := res.UploadURL(ctx, parent, file, part)
		if err != nil {
			return stageErr(apperror.StageUploadURL, part, err)
		}

		if err := o.storage.UploadBytes(ctx, url, chunk); err != nil {
			return stageErr(apperror.StageUpload, part, err)
		}

		if o.progress != nil {
			o.progress(types.ProgressEvent{
				ResourceID: resourceID,
				FileID:     file.ID,
				Name:       target.Name,
				Part:       part,
				Parts:      mp.PartNumbers,
				BytesSent:  reader.BytesRead(),
				BytesTotal: target.Size,
			})
		}
	}

	if err := res.Complete(ctx, parent, file); err != nil {
		return stageErr(apperror.StageComplete, 0, err)
	}

	logger.Info("file uploaded", slog.Int64("bytes", reader.BytesRead()), slog.Int("parts", mp.PartNumbers))
	return nil
}
