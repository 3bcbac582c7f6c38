package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
)

// ErrNotExist is returned by Get and Delete when the object is absent.
var ErrNotExist = errors.New("object does not exist")

// PutOptions describe an object being written. Size is -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
}

// Storage is the attachment backend.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Module provides the configured backend and the uploader built on it.
var Module = fx.Provide(NewStorage, NewUploader)

// NewStorage initialises the configured storage backend (local or minio).
func NewStorage(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Storage, error) {
	switch cfg.Storage.Driver {
	case "local":
		logger.Info("storing uploads on local disk", zap.String("dir", cfg.Storage.Dir))
		return NewLocal(cfg.Storage.Dir), nil
	case "minio":
		return newMinIO(lc, cfg.Storage.MinIO, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
