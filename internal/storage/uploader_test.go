package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/internal/storage/mocks"
)

var fixedNow = time.UnixMilli(1700000000123)

func testConfig() config.Config {
	return config.Config{
		App:     config.App{BaseURL: "https://portal.example.com"},
		Storage: config.Storage{Driver: "local", MaxFiles: 10},
	}
}

func textUpload(name, body string) storage.Upload {
	return storage.Upload{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func newLocalUploader(t *testing.T) (*storage.Uploader, string) {
	t.Helper()
	dir := t.TempDir()
	u := storage.NewUploader(storage.NewLocal(dir), testConfig(), zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return u, dir
}

func TestSaveNamesAndStoresInOrder(t *testing.T) {
	u, dir := newLocalUploader(t)

	docs, err := u.Save(context.Background(), []storage.Upload{
		textUpload("spec.pdf", "pdf"),
		textUpload(`C:\Users\buyer\drawing.dwg`, "dwg"),
		textUpload("spec.pdf", "pdf-2"),
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "uploads/1700000000123--spec.pdf", docs[0].Path)
	assert.Equal(t, "https://portal.example.com/uploads/1700000000123--spec.pdf", docs[0].FileName)
	assert.Equal(t, "uploads/1700000000123--drawing.dwg", docs[1].Path)
	assert.Equal(t, "uploads/1700000000124--spec.pdf", docs[2].Path)
	for _, doc := range docs {
		assert.False(t, doc.ID.IsZero())
	}

	content, err := os.ReadFile(filepath.Join(dir, "1700000000124--spec.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-2", string(content))
}

func TestSaveRejectsTooManyFiles(t *testing.T) {
	u, dir := newLocalUploader(t)

	uploads := make([]storage.Upload, 11)
	for i := range uploads {
		uploads[i] = textUpload("f.txt", "x")
	}
	_, err := u.Save(context.Background(), uploads)
	assert.ErrorIs(t, err, storage.ErrTooManyFiles)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	u, _ := newLocalUploader(t)
	_, err := u.Save(context.Background(), []storage.Upload{textUpload("  ", "x")})
	assert.ErrorIs(t, err, storage.ErrInvalidName)
}

func TestSaveRemovesStoredPartsOnFailure(t *testing.T) {
	store := new(mocks.MockStorage)
	store.On("Put", mock.Anything, "1700000000123--a.txt", mock.Anything, mock.Anything).Return(nil)
	store.On("Put", mock.Anything, "1700000000123--b.txt", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	store.On("Delete", mock.Anything, "1700000000123--a.txt").Return(nil)

	u := storage.NewUploader(store, testConfig(), zap.NewNop()).WithClock(func() time.Time { return fixedNow })

	_, err := u.Save(context.Background(), []storage.Upload{textUpload("a.txt", "a"), textUpload("b.txt", "b")})
	require.Error(t, err)

	// a.txt may not have been written before b.txt failed; when it was, it is removed.
	for _, call := range store.Calls {
		if call.Method == "Delete" {
			assert.Equal(t, "1700000000123--a.txt", call.Arguments.String(1))
		}
	}
	store.AssertNotCalled(t, "Delete", mock.Anything, "1700000000123--b.txt")
}

func TestRemoveToleratesMissingFiles(t *testing.T) {
	u, dir := newLocalUploader(t)

	docs, err := u.Save(context.Background(), []storage.Upload{textUpload("keep.txt", "k")})
	require.NoError(t, err)

	missing := entity.Document{Path: "uploads/1--gone.txt"}
	require.NoError(t, u.Remove(context.Background(), missing, docs[0]))

	_, err = os.Stat(filepath.Join(dir, "1700000000123--keep.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveStopsOnStorageError(t *testing.T) {
	store := new(mocks.MockStorage)
	store.On("Delete", mock.Anything, "1--a.txt").Return(errors.New("permission denied"))

	u := storage.NewUploader(store, testConfig(), zap.NewNop())
	err := u.Remove(context.Background(),
		entity.Document{Path: "uploads/1--a.txt"},
		entity.Document{Path: "uploads/2--b.txt"},
	)
	assert.ErrorContains(t, err, "permission denied")
	store.AssertNotCalled(t, "Delete", mock.Anything, "2--b.txt")
}

func TestOpenRejectsTraversal(t *testing.T) {
	u, _ := newLocalUploader(t)
	_, err := u.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, storage.ErrInvalidName)

	_, err = u.Open(context.Background(), "1--missing.txt")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "report.pdf", storage.CleanName("../../report.pdf"))
	assert.Equal(t, "report.pdf", storage.CleanName(`dir\report.pdf`))
	assert.Equal(t, "", storage.CleanName(".."))
	assert.Equal(t, "1700000000000--a b.png", storage.StoredName(1700000000000, "a b.png"))
}
