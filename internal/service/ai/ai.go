// Package ai detects whether a face is present in a stream frame so the
// try-on indicator can reflect a real signal instead of a placeholder.
//
// The OpenCV implementation is compiled only with the gocv build tag.
package ai

import "errors"

// ErrDetectorUnavailable is returned when no detection model is loaded.
var ErrDetectorUnavailable = errors.New("face detector unavailable")

// FaceDetector reports whether a frame contains at least one face.
type FaceDetector interface {
	Available() bool
	DetectFace(frame []byte) (bool, error)
	Close()
}
