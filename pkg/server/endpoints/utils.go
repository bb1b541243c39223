package endpoints

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, authz.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound), errors.Is(err, identity.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey),
		errors.Is(err, connector.ErrInvalidTransition),
		errors.Is(err, connector.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, store.ErrImmutableField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrLegalHoldBlock):
		return http.StatusLocked
	case errors.Is(err, store.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, store.ErrResetNotConfirmed),
		errors.Is(err, governance.ErrNoSchedule),
		errors.Is(err, governance.ErrSelfDelete):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondWithServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		respondWithError(w, code, "internal error")
		return
	}
	respondWithError(w, code, err.Error())
}

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 64 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeJSONLimit(w, r, v, maxBodyBytes)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// caller returns the identity set by the session middleware.
func caller(r *http.Request) *identity.Identity {
	id, _ := identity.Get(r.Context())
	return id
}
