package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/logging"
	"github.com/Yulian302/lfusys-wetransfer/store"
)

// Requester is the HTTP surface the services need from requester.Requester.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, payload any, out any) error
	Put(ctx context.Context, path string, payload any, out any) error
	UploadBytes(ctx context.Context, url string, data []byte) error
}

func record(ctx context.Context, resources store.ResourceStore, rec store.ResourceRecord) {
	if resources == nil {
		return
	}
	rec.RecordedAt = time.Now().UTC()
	if err := resources.Save(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("could not record resource",
			slog.String("id", rec.ID),
			slog.String("kind", rec.Kind),
			slog.String("error", err.Error()),
		)
	}
}
