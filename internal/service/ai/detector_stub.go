//go:build !gocv
// +build !gocv

package ai

import (
	"tryon/internal/config"
	"tryon/internal/logger"
)

// DetectorService is a stand-in used when the binary is built without OpenCV.
type DetectorService struct {
	logger *logger.Logger
}

// NewDetectorService returns a detector that is never available.
func NewDetectorService(config *config.Config, logger *logger.Logger) *DetectorService {
	if config.FaceCascadePath != "" {
		logger.Warning("FACE_CASCADE_PATH is set but the gocv build tag is not enabled")
	}
	return &DetectorService{logger: logger}
}

func (s *DetectorService) Available() bool {
	return false
}

// DetectFace always fails with ErrDetectorUnavailable.
func (s *DetectorService) DetectFace([]byte) (bool, error) {
	return false, ErrDetectorUnavailable
}

func (s *DetectorService) Close() {}
