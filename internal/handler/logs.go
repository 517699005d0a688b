package handler

import (
	"net/http"
	"os"
	"tryon/internal/logger"

	"github.com/gorilla/mux"
)

// ShowLogsHandler serves the log file named by the {level} route variable as text/plain.
func ShowLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := loggerLevel(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		filePath := logger.Path(level)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + level.FileName()))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates the log file of the {level} route variable.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := loggerLevel(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := logger.CleanLogs(level); err != nil {
			logger.Error("Failed to clear logs: %v", err)
			writeError(w, logger, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loggerLevel(r *http.Request) (logger.Level, bool) {
	return logger.ParseLevel(mux.Vars(r)["level"])
}
