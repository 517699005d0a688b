package handler

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"
	"tryon/internal/dto"
	"tryon/internal/logger"
	"tryon/internal/middleware"
	"tryon/internal/repository"
	"tryon/internal/service/storage"

	"github.com/gorilla/mux"
)

const defaultPageSize = 24

// GetCapturesHandler returns a filtered, paginated list of the captures taken by the requesting session.
func GetCapturesHandler(captures *storage.CaptureService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), defaultPageSize)

		filter := &dto.CaptureFilters{
			ProductID:  atoiDefault(q.Get("productId"), 0),
			SessionID:  middleware.SessionID(r.Context()),
			DateAfter:  parseDate(q.Get("dateAfter")),
			DateBefore: parseDate(q.Get("dateBefore")),
		}

		data, err := captures.List(filter, page, limit)
		if err != nil {
			logger.Error("Error querying captures from database: %v", err)
			writeError(w, logger, http.StatusInternalServerError, "could not list captures")
			return
		}
		writeJSON(w, logger, http.StatusOK, data)
	}
}

// ViewCaptureHandler serves a single capture of the requesting session named by the "filename" query parameter.
// With download=1 the browser is told to save it.
func ViewCaptureHandler(captures *storage.CaptureService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.URL.Query().Get("filename")
		if filename == "" {
			writeError(w, logger, http.StatusBadRequest, "filename parameter is required")
			return
		}

		filePath, err := captures.Path(filename, middleware.SessionID(r.Context()))
		if errors.Is(err, storage.ErrInvalidFilename) {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, logger, http.StatusNotFound, "capture not found: "+filename)
			return
		}
		if err != nil {
			logger.Error("Failed to look up capture %s: %v", filename, err)
			writeError(w, logger, http.StatusInternalServerError, "could not load capture")
			return
		}
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			writeError(w, logger, http.StatusNotFound, "capture not found: "+filename)
			return
		}

		if r.URL.Query().Get("download") == "1" {
			w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		}
		http.ServeFile(w, r, filePath)
	}
}

// DeleteCaptureHandler removes one of the requesting session's captures from disk and database.
func DeleteCaptureHandler(captures *storage.CaptureService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			writeError(w, logger, http.StatusBadRequest, "invalid capture id")
			return
		}

		if err := captures.Delete(id, middleware.SessionID(r.Context())); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, logger, http.StatusNotFound, "capture not found")
				return
			}
			logger.Error("Failed to delete capture %d: %v", id, err)
			writeError(w, logger, http.StatusInternalServerError, "could not delete capture")
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]interface{}{"status": "deleted", "id": id})
	}
}

// ClearCapturesHandler deletes every stored capture. It is mounted behind the admin guard.
func ClearCapturesHandler(captures *storage.CaptureService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := captures.Clear(); err != nil {
			logger.Error("Error clearing captures: %v", err)
			writeError(w, logger, http.StatusInternalServerError, "could not clear captures")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// atoiDefault converts s to int or returns def when conversion fails or the value is <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a date in the HTML input format "2006-01-02".
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
