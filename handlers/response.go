package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/apperrors"
)

// errorBody is the error envelope: detail is a message string, or the
// list of field errors for a validation failure.
type errorBody struct {
	Detail interface{} `json:"detail"`
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", zap.Error(err))
	}
}

// writeError translates the error taxonomy into a status code and body.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		storageErr    *apperrors.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Info("validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, log, http.StatusUnprocessableEntity, errorBody{Detail: validationErr.Fields})
	case errors.As(err, &notFoundErr):
		log.Info("student not found", zap.Int64("id", notFoundErr.ID))
		writeJSON(w, log, http.StatusNotFound, errorBody{Detail: "Student not found"})
	case errors.As(err, &storageErr):
		log.Error("storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		writeJSON(w, log, http.StatusInternalServerError, errorBody{Detail: storageErr.Error()})
	default:
		log.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, log, http.StatusInternalServerError, errorBody{Detail: err.Error()})
	}
}
