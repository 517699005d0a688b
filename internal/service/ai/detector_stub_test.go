//go:build !gocv
// +build !gocv

package ai

import (
	"testing"
	"tryon/internal/config"
	"tryon/internal/logger"

	"github.com/stretchr/testify/require"
)

func TestDetectorStub_Unavailable(t *testing.T) {
	cfg := &config.Config{LogDirectory: t.TempDir(), FaceCascadePath: "/nonexistent/haarcascade.xml"}
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	defer log.Close()

	var d FaceDetector = NewDetectorService(cfg, log)
	defer d.Close()

	require.False(t, d.Available())
	_, err = d.DetectFace([]byte{0xFF, 0xD8})
	require.ErrorIs(t, err, ErrDetectorUnavailable)
}
