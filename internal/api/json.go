package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/graphblog/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorBody(msg, kind string) errResponse {
	return errResponse{Error: msg, Kind: kind}
}

// errorStatus maps a pipeline error onto an HTTP status and a kind label.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrMetadata):
		return http.StatusUnprocessableEntity, string(apperr.KindMetadata)
	case errors.Is(err, apperr.ErrReference):
		return http.StatusUnprocessableEntity, string(apperr.KindReference)
	case errors.Is(err, apperr.ErrIO):
		return http.StatusInternalServerError, string(apperr.KindIO)
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", msg))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(msg, kind))
}
