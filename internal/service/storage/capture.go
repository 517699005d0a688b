package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"tryon/internal/config"
	"tryon/internal/dto"
	"tryon/internal/logger"
	"tryon/internal/model"
	"tryon/internal/repository"
	"tryon/internal/service/camera"

	"github.com/google/uuid"
)

// TimestampLayout prefixes every capture filename.
const TimestampLayout = "2006-01-02_15-04-05.000"

var (
	// ErrInvalidFilename is returned for names that are not plain capture files.
	ErrInvalidFilename = errors.New("invalid capture filename")

	filenamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.\d{3})_p(\d+)_([0-9a-f]{8})\.(jpg|png|webp|gif|img)$`)
)

// CaptureService writes captured frames to disk and indexes them in the repository.
type CaptureService struct {
	capturesDir string
	repo        repository.CaptureRepository
	logger      *logger.Logger
	mu          sync.Mutex
	now         func() time.Time
}

// NewCaptureService creates a CaptureService writing into cfg.CaptureDirectory.
func NewCaptureService(cfg *config.Config, logger *logger.Logger, repo repository.CaptureRepository) *CaptureService {
	return &CaptureService{
		capturesDir: cfg.CaptureDirectory,
		repo:        repo,
		logger:      logger,
		now:         time.Now,
	}
}

// Dir returns the directory captures are stored in.
func (s *CaptureService) Dir() string {
	return s.capturesDir
}

// Save persists frame and returns the indexed record.
func (s *CaptureService) Save(ctx context.Context, frame *camera.Frame, productID int, sessionID string) (*model.Capture, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, errors.New("empty frame")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.capturesDir, 0755); err != nil {
		return nil, fmt.Errorf("create capture directory: %w", err)
	}

	ts := s.now()
	shortID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	filename := fmt.Sprintf("%s_p%d_%s%s", ts.Format(TimestampLayout), productID, shortID, extensionFor(frame.ContentType))
	fullpath := filepath.Join(s.capturesDir, filename)

	if err := writeFileAtomic(fullpath, frame.Data); err != nil {
		return nil, fmt.Errorf("write capture %s: %w", filename, err)
	}

	capture := &model.Capture{
		Filename:    filename,
		ProductID:   productID,
		SessionID:   sessionID,
		Timestamp:   ts,
		FilePath:    fullpath,
		FileSize:    int64(len(frame.Data)),
		ContentType: frame.ContentType,
	}

	id, err := s.repo.Insert(capture)
	if err != nil {
		if rmErr := os.Remove(fullpath); rmErr != nil {
			s.logger.Warning("Could not remove orphaned capture %s: %v", fullpath, rmErr)
		}
		return nil, fmt.Errorf("index capture %s: %w", filename, err)
	}
	capture.ID = id

	s.logger.Info("Saved capture %s for product %d", filename, productID)
	return capture, nil
}

// List returns one page of captures matching filter.
func (s *CaptureService) List(filter *dto.CaptureFilters, page, limit int) (*dto.CapturesData, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 24
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	captures, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.GetTotalCount(filter)
	if err != nil {
		s.logger.Error("Error counting captures: %v", err)
		total = len(captures)
	}

	data := &dto.CapturesData{
		Captures:    make([]dto.CaptureInfo, 0, len(captures)),
		Length:      total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Limit:       limit,
	}
	for _, c := range captures {
		data.Captures = append(data.Captures, dto.CaptureInfo{
			ID:        c.ID,
			Name:      c.Filename,
			Date:      c.Timestamp,
			TimeOfDay: c.Timestamp,
			ProductID: c.ProductID,
			Size:      c.FileSize,
			URL:       ViewURL(c.Filename),
		})
	}
	return data, nil
}

// Path resolves filename inside the capture directory for the session that
// took it. Captures of other sessions are reported as repository.ErrNotFound.
func (s *CaptureService) Path(filename, sessionID string) (string, error) {
	if filename != filepath.Base(filename) || !filenamePattern.MatchString(filename) {
		return "", ErrInvalidFilename
	}
	capture, err := s.repo.GetByFilename(filename)
	if err != nil {
		return "", err
	}
	if !ownedBy(capture, sessionID) {
		return "", repository.ErrNotFound
	}
	return filepath.Join(s.capturesDir, capture.Filename), nil
}

// Delete removes a capture of sessionID from disk and from the index.
func (s *CaptureService) Delete(id int64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	capture, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !ownedBy(capture, sessionID) {
		return repository.ErrNotFound
	}

	path := filepath.Join(s.capturesDir, capture.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete file %s: %v", path, err)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Deleted capture: %s", capture.Filename)
	return nil
}

// Clear deletes every capture file and empties the index.
func (s *CaptureService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.capturesDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read capture directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !filenamePattern.MatchString(file.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.capturesDir, file.Name())); err != nil {
			s.logger.Error("Error deleting file %s: %v", file.Name(), err)
		}
	}

	if err := s.repo.DeleteAll(); err != nil {
		return err
	}
	s.logger.Info("All captures cleared from directory: %s", s.capturesDir)
	return nil
}

// IndexResult summarizes an Index run.
type IndexResult struct {
	Indexed int
	Skipped int
}

// Index inserts capture files found on disk that are missing from the repository.
func (s *CaptureService) Index() (IndexResult, error) {
	var res IndexResult

	files, err := os.ReadDir(s.capturesDir)
	if err != nil {
		return res, fmt.Errorf("read capture directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ts, productID, err := ParseFilename(file.Name())
		if err != nil {
			res.Skipped++
			continue
		}
		if _, err := s.repo.GetByFilename(file.Name()); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}

		info, err := file.Info()
		if err != nil {
			s.logger.Warning("Failed to get info for %s: %v", file.Name(), err)
			res.Skipped++
			continue
		}

		_, err = s.repo.Insert(&model.Capture{
			Filename:    file.Name(),
			ProductID:   productID,
			Timestamp:   ts,
			FilePath:    filepath.Join(s.capturesDir, file.Name()),
			FileSize:    info.Size(),
			ContentType: contentTypeFor(filepath.Ext(file.Name())),
		})
		if err != nil {
			return res, err
		}
		res.Indexed++
	}
	return res, nil
}

func ownedBy(c *model.Capture, sessionID string) bool {
	return sessionID != "" && c.SessionID == sessionID
}

// ParseFilename extracts the timestamp and product id from a capture filename.
func ParseFilename(name string) (time.Time, int, error) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, ErrInvalidFilename
	}
	ts, err := time.ParseInLocation(TimestampLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", ErrInvalidFilename, err)
	}
	productID, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", ErrInvalidFilename, err)
	}
	return ts, productID, nil
}

// ViewURL is where the gallery serves a capture.
func ViewURL(filename string) string {
	return "/api/captures/view?filename=" + filename
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".img"
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".jpg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".capture-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
