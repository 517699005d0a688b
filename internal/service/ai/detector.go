//go:build gocv
// +build gocv

package ai

import (
	"fmt"
	"image"
	"os"
	"sync"
	"tryon/internal/config"
	"tryon/internal/logger"

	"gocv.io/x/gocv"
)

const (
	// MinFaceSide is the smallest face, in pixels, the cascade will report.
	MinFaceSide = 60
	// MinNeighbors trades recall for fewer false positives.
	MinNeighbors = 4
)

type DetectorService struct {
	classifier  gocv.CascadeClassifier
	loaded      bool
	cascadePath string
	mutex       sync.Mutex
	logger      *logger.Logger
}

// NewDetectorService loads the Haar cascade named by FACE_CASCADE_PATH.
// A missing or broken cascade leaves the detector unavailable, not the process.
func NewDetectorService(config *config.Config, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		cascadePath: config.FaceCascadePath,
		logger:      logger,
	}

	if err := service.initializeClassifier(); err != nil {
		service.logger.Warning("Could not initialize face detector: %v", err)
		return service
	}

	return service
}

func (s *DetectorService) initializeClassifier() error {
	if s.cascadePath == "" {
		return fmt.Errorf("FACE_CASCADE_PATH is not set")
	}
	if _, err := os.Stat(s.cascadePath); os.IsNotExist(err) {
		return fmt.Errorf("cascade file not found: %s", s.cascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(s.cascadePath) {
		classifier.Close()
		return fmt.Errorf("failed to load cascade: %s", s.cascadePath)
	}

	s.classifier = classifier
	s.loaded = true
	s.logger.Info("Face detector initialized from %s", s.cascadePath)
	return nil
}

// Available reports whether a cascade is loaded.
func (s *DetectorService) Available() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.loaded
}

// DetectFace decodes frame and runs the cascade on its grayscale version.
func (s *DetectorService) DetectFace(frame []byte) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.loaded {
		return false, ErrDetectorUnavailable
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return false, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return false, fmt.Errorf("decoded image is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray); err != nil {
		return false, fmt.Errorf("failed to convert image to grayscale: %v", err)
	}

	faces := s.classifier.DetectMultiScaleWithParams(gray, 1.1, MinNeighbors, 0, image.Pt(MinFaceSide, MinFaceSide), image.Point{})
	return len(faces) > 0, nil
}

// Close releases the cascade.
func (s *DetectorService) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.loaded {
		s.classifier.Close()
		s.loaded = false
	}
}
