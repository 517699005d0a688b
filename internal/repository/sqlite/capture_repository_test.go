package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon/internal/dto"
	"tryon/internal/model"
	"tryon/internal/repository"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newCapture(name string, productID int, ts time.Time) *model.Capture {
	return &model.Capture{
		Filename:    name,
		ProductID:   productID,
		SessionID:   "session-a",
		Timestamp:   ts,
		FilePath:    "/captures/" + name,
		FileSize:    2048,
		ContentType: "image/jpeg",
	}
}

func TestCaptureRepository_InsertAndGet(t *testing.T) {
	repo := NewCaptureRepository(setupTestDB(t))

	id, err := repo.Insert(newCapture("first.jpg", 1, time.Now()))
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.Equal(t, "first.jpg", got.Filename)
	require.Equal(t, 1, got.ProductID)
	require.Equal(t, "session-a", got.SessionID)
	require.Equal(t, int64(2048), got.FileSize)

	byName, err := repo.GetByFilename("first.jpg")
	require.NoError(t, err)
	require.Equal(t, id, byName.ID)
}

func TestCaptureRepository_DuplicateFilename(t *testing.T) {
	repo := NewCaptureRepository(setupTestDB(t))

	_, err := repo.Insert(newCapture("dup.jpg", 1, time.Now()))
	require.NoError(t, err)

	_, err = repo.Insert(newCapture("dup.jpg", 1, time.Now()))
	require.Error(t, err)
}

func TestCaptureRepository_NotFound(t *testing.T) {
	repo := NewCaptureRepository(setupTestDB(t))

	_, err := repo.GetByID(404)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByFilename("missing.jpg")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.Delete(404), repository.ErrNotFound)
}

func TestCaptureRepository_GetAllFilterAndPaging(t *testing.T) {
	repo := NewCaptureRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(newCapture(fmt.Sprintf("p1_%d.jpg", i), 1, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := repo.Insert(newCapture("p2.jpg", 2, base))
	require.NoError(t, err)

	all, err := repo.GetAll(&dto.CaptureFilters{})
	require.NoError(t, err)
	require.Len(t, all, 6)

	count, err := repo.GetTotalCount(&dto.CaptureFilters{ProductID: 1})
	require.NoError(t, err)
	require.Equal(t, 5, count)

	page, err := repo.GetAll(&dto.CaptureFilters{ProductID: 1, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// newest first
	require.Equal(t, "p1_2.jpg", page[0].Filename)
	require.Equal(t, "p1_1.jpg", page[1].Filename)
}

func TestCaptureRepository_DeleteAndDeleteAll(t *testing.T) {
	repo := NewCaptureRepository(setupTestDB(t))

	id, err := repo.Insert(newCapture("a.jpg", 1, time.Now()))
	require.NoError(t, err)
	_, err = repo.Insert(newCapture("b.jpg", 1, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(id))
	count, err := repo.GetTotalCount(nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, repo.DeleteAll())
	count, err = repo.GetTotalCount(nil)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path)
	require.NoError(t, err)
	version, err := db.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, len(migrations), version)

	repo := NewCaptureRepository(db)
	_, err = repo.Insert(newCapture("kept.jpg", 1, time.Now()))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	version, err = db.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, len(migrations), version)

	_, err = NewCaptureRepository(db).GetByFilename("kept.jpg")
	require.NoError(t, err)
}
