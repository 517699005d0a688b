package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	StreamURL         string        // Continuous-stream media locator embedded in the page
	CameraSwitchURL   string        // Empty selects the placeholder camera controller
	FrameCaptureURL   string        // Empty selects the placeholder frame capturer
	RemoteTimeout     time.Duration // Timeout for camera switch / frame capture calls
	FallbackProductID int
	CheckoutURL       string // fmt template, %d is the product id
	CaptureDirectory  string
	DatabasePath      string
	LogDirectory      string
	SessionTTL        time.Duration
	StreamPoll        time.Duration // 0 disables the server-side stream observer
	StreamPollTimeout time.Duration
	FaceCascadePath   string // Only used by builds with the gocv tag
	AdminPassword     string // Empty locks the admin endpoints
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	// A missing .env file is fine
	_ = godotenv.Load()

	return &Config{
		Port:              getEnvAsInt("PORT", 8080),
		StreamURL:         getEnv("STREAM_URL", "http://localhost:5000/video_feed"),
		CameraSwitchURL:   getEnv("CAMERA_SWITCH_URL", ""),
		FrameCaptureURL:   getEnv("FRAME_CAPTURE_URL", ""),
		RemoteTimeout:     getEnvAsDuration("REMOTE_TIMEOUT", 5*time.Second),
		FallbackProductID: getEnvAsInt("FALLBACK_PRODUCT_ID", 1),
		CheckoutURL:       getEnv("CHECKOUT_URL_TEMPLATE", "/checkout/%d"),
		CaptureDirectory:  getEnv("CAPTURE_DIR", filepath.Join(".", "captures")),
		DatabasePath:      getEnv("DB_PATH", filepath.Join(".", "data", "captures.db")),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		StreamPoll:        getEnvAsDuration("STREAM_POLL_INTERVAL", 10*time.Second),
		StreamPollTimeout: getEnvAsDuration("STREAM_POLL_TIMEOUT", 5*time.Second),
		FaceCascadePath:   getEnv("FACE_CASCADE_PATH", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
