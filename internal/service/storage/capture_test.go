package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon/internal/config"
	"tryon/internal/dto"
	"tryon/internal/logger"
	"tryon/internal/repository"
	"tryon/internal/repository/sqlite"
	"tryon/internal/service/camera"
)

func setupCaptureService(t *testing.T) (*CaptureService, *sqlite.CaptureRepository) {
	t.Helper()

	cfg := &config.Config{
		CaptureDirectory: filepath.Join(t.TempDir(), "captures"),
		LogDirectory:     t.TempDir(),
	}

	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(log.Close)

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewCaptureRepository(db)
	return NewCaptureService(cfg, log, repo), repo
}

func jpegFrame() *camera.Frame {
	return &camera.Frame{Data: []byte{0xFF, 0xD8, 0x10, 0x20, 0xFF, 0xD9}, ContentType: "image/jpeg"}
}

func TestCaptureService_Save(t *testing.T) {
	svc, repo := setupCaptureService(t)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 14, 30, 5, 0, time.Local) }

	c, err := svc.Save(context.Background(), jpegFrame(), 1, "session-a")
	require.NoError(t, err)
	require.Positive(t, c.ID)
	require.Regexp(t, `^2026-10-19_14-30-05\.000_p1_[0-9a-f]{8}\.jpg$`, c.Filename)

	data, err := os.ReadFile(c.FilePath)
	require.NoError(t, err)
	require.Equal(t, jpegFrame().Data, data)

	stored, err := repo.GetByFilename(c.Filename)
	require.NoError(t, err)
	require.Equal(t, "session-a", stored.SessionID)
	require.Equal(t, int64(6), stored.FileSize)
}

func TestCaptureService_SaveRejectsEmptyFrame(t *testing.T) {
	svc, _ := setupCaptureService(t)

	_, err := svc.Save(context.Background(), &camera.Frame{ContentType: "image/jpeg"}, 1, "s")
	require.Error(t, err)

	_, err = svc.Save(context.Background(), nil, 1, "s")
	require.Error(t, err)
}

func TestCaptureService_ListAndDelete(t *testing.T) {
	svc, _ := setupCaptureService(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		c, err := svc.Save(context.Background(), jpegFrame(), 1+i%2, "s")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	data, err := svc.List(&dto.CaptureFilters{SessionID: "s"}, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 3, data.Length)
	require.Equal(t, 2, data.TotalPages)
	require.Len(t, data.Captures, 2)
	require.Contains(t, data.Captures[0].URL, "/api/captures/view?filename=")

	data, err = svc.List(&dto.CaptureFilters{ProductID: 2, SessionID: "s"}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, data.Length)

	path, err := svc.Path(data.Captures[0].Name, "s")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(data.Captures[0].ID, "s"))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.ErrorIs(t, svc.Delete(data.Captures[0].ID, "s"), repository.ErrNotFound)

	require.NoError(t, svc.Clear())
	data, err = svc.List(&dto.CaptureFilters{}, 1, 10)
	require.NoError(t, err)
	require.Zero(t, data.Length)
}

func TestCaptureService_Path(t *testing.T) {
	svc, _ := setupCaptureService(t)

	_, err := svc.Path("../../etc/passwd", "s")
	require.ErrorIs(t, err, ErrInvalidFilename)

	_, err = svc.Path("notes.txt", "s")
	require.ErrorIs(t, err, ErrInvalidFilename)

	_, err = svc.Path("2026-10-19_14-30-05.000_p1_abcdef01.jpg", "s")
	require.ErrorIs(t, err, repository.ErrNotFound)

	c, err := svc.Save(context.Background(), jpegFrame(), 1, "s")
	require.NoError(t, err)

	p, err := svc.Path(c.Filename, "s")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(svc.Dir(), c.Filename), p)
}

func TestCaptureService_ScopedToSession(t *testing.T) {
	svc, _ := setupCaptureService(t)

	mine, err := svc.Save(context.Background(), jpegFrame(), 2, "session-a")
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), jpegFrame(), 2, "session-b")
	require.NoError(t, err)

	data, err := svc.List(&dto.CaptureFilters{SessionID: "session-b"}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, data.Length)
	require.NotEqual(t, mine.Filename, data.Captures[0].Name)

	_, err = svc.Path(mine.Filename, "session-b")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Path(mine.Filename, "")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, svc.Delete(mine.ID, "session-b"), repository.ErrNotFound)
	_, err = os.Stat(mine.FilePath)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(mine.ID, "session-a"))
}

func TestCaptureService_Index(t *testing.T) {
	svc, repo := setupCaptureService(t)
	require.NoError(t, os.MkdirAll(svc.Dir(), 0755))

	existing, err := svc.Save(context.Background(), jpegFrame(), 1, "s")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(svc.Dir(), "2026-01-02_03-04-05.678_p3_0123abcd.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Dir(), "readme.txt"), []byte("x"), 0644))

	res, err := svc.Index()
	require.NoError(t, err)
	require.Equal(t, 1, res.Indexed)
	require.Equal(t, 1, res.Skipped)

	c, err := repo.GetByFilename("2026-01-02_03-04-05.678_p3_0123abcd.png")
	require.NoError(t, err)
	require.Equal(t, 3, c.ProductID)
	require.Equal(t, "image/png", c.ContentType)

	_, err = repo.GetByFilename(existing.Filename)
	require.NoError(t, err)
}

func TestParseFilename(t *testing.T) {
	ts, productID, err := ParseFilename("2026-10-19_14-30-05.250_p12_deadbeef.webp")
	require.NoError(t, err)
	require.Equal(t, 12, productID)
	require.Equal(t, 14, ts.Hour())
	require.Equal(t, 250*time.Millisecond, time.Duration(ts.Nanosecond()))

	_, _, err = ParseFilename("2026-10-19_cam1_person_.jpg")
	require.ErrorIs(t, err, ErrInvalidFilename)
}
