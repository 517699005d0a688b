package handler

import (
	"encoding/json"
	"net/http"
	"tryon/internal/dto"
	"tryon/internal/logger"
)

func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, logger *logger.Logger, status int, message string) {
	writeJSON(w, logger, status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
