package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/entity"
)

// PublicPrefix is the URL and path segment under which uploads are exposed.
const PublicPrefix = "uploads"

const uploadConcurrency = 4

var (
	// ErrTooManyFiles is returned when a request carries more parts than allowed.
	ErrTooManyFiles = errors.New("too many files")
	// ErrFileTooLarge is returned when a part exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidName is returned for parts without a usable file name.
	ErrInvalidName = errors.New("invalid file name")
)

// Upload is one file part to be stored.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FromMultipart adapts parsed multipart headers.
func FromMultipart(files []*multipart.FileHeader) []Upload {
	out := make([]Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		out = append(out, Upload{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

// Uploader names, stores and removes attachments and builds their metadata.
type Uploader struct {
	store    Storage
	baseURL  string
	maxFiles int
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

// NewUploader wires an Uploader over the configured backend.
func NewUploader(store Storage, cfg config.Config, logger *zap.Logger) *Uploader {
	return &Uploader{
		store:    store,
		baseURL:  strings.TrimRight(cfg.App.BaseURL, "/"),
		maxFiles: cfg.Storage.MaxFiles,
		maxBytes: cfg.Storage.MaxBytes,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used for stored names.
func (u *Uploader) WithClock(now func() time.Time) *Uploader {
	u.now = now
	return u
}

// MaxFiles is the per-request part limit.
func (u *Uploader) MaxFiles() int { return u.maxFiles }

// Save stores every part and returns metadata in submission order. When any
// part fails, parts already stored are removed before returning.
func (u *Uploader) Save(ctx context.Context, uploads []Upload) ([]entity.Document, error) {
	if len(uploads) == 0 {
		return []entity.Document{}, nil
	}
	if u.maxFiles > 0 && len(uploads) > u.maxFiles {
		return nil, fmt.Errorf("%w: %d parts, limit %d", ErrTooManyFiles, len(uploads), u.maxFiles)
	}

	names, err := u.storedNames(uploads)
	if err != nil {
		return nil, err
	}

	stored := make([]bool, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i := range uploads {
		i := i
		g.Go(func() error {
			if err := u.put(gctx, names[i], uploads[i]); err != nil {
				return err
			}
			stored[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i, ok := range stored {
			if ok {
				u.discard(context.WithoutCancel(ctx), names[i])
			}
		}
		return nil, err
	}

	docs := make([]entity.Document, len(uploads))
	for i, name := range names {
		docs[i] = u.document(name)
	}
	return docs, nil
}

// Rollback removes stored files, used when the owning record write fails.
func (u *Uploader) Rollback(ctx context.Context, docs []entity.Document) {
	for _, doc := range docs {
		u.discard(ctx, path.Base(doc.Path))
	}
}

// Remove deletes the files behind docs. Files already gone are logged and
// skipped; any other failure stops and is returned.
func (u *Uploader) Remove(ctx context.Context, docs ...entity.Document) error {
	for _, doc := range docs {
		key := path.Base(doc.Path)
		err := u.store.Delete(ctx, key)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotExist):
			u.logger.Warn("attachment already missing", zap.String("path", doc.Path))
		default:
			return fmt.Errorf("remove %s: %w", doc.Path, err)
		}
	}
	return nil
}

// Open streams a stored upload by its stored name.
func (u *Uploader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name != path.Base(name) || name == "." || name == ".." {
		return nil, ErrInvalidName
	}
	return u.store.Get(ctx, name)
}

func (u *Uploader) put(ctx context.Context, name string, up Upload) error {
	if u.maxBytes > 0 && up.Size > u.maxBytes {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, up.Name)
	}
	r, err := up.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", up.Name, err)
	}
	defer r.Close()

	size := up.Size
	if size <= 0 {
		size = -1
	}
	return u.store.Put(ctx, name, r, PutOptions{Size: size, ContentType: up.ContentType})
}

func (u *Uploader) discard(ctx context.Context, name string) {
	if err := u.store.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotExist) {
		u.logger.Error("failed to discard upload", zap.String("name", name), zap.Error(err))
	}
}

// storedNames assigns "<epoch-millis>--<base name>" to each part. Parts that
// would collide within the batch take the next free millisecond.
func (u *Uploader) storedNames(uploads []Upload) ([]string, error) {
	used := make(map[string]struct{}, len(uploads))
	names := make([]string, len(uploads))
	for i, up := range uploads {
		base := CleanName(up.Name)
		if base == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, up.Name)
		}
		millis := u.now().UnixMilli()
		name := StoredName(millis, base)
		for {
			if _, taken := used[name]; !taken {
				break
			}
			millis++
			name = StoredName(millis, base)
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names, nil
}

func (u *Uploader) document(name string) entity.Document {
	return entity.Document{
		ID:       primitive.NewObjectID(),
		FileName: u.baseURL + "/" + PublicPrefix + "/" + name,
		Path:     PublicPrefix + "/" + name,
	}
}

// StoredName formats the on-storage name for a part.
func StoredName(millis int64, base string) string {
	return strconv.FormatInt(millis, 10) + "--" + base
}

// CleanName strips directories from a client supplied file name.
func CleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := path.Base(name)
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}
