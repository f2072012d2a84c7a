package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"s3drive/internal/auth"
	"s3drive/internal/domain"
)

// Виды ошибок, которые видит клиент
const (
	KindFileTooLarge   = "file_too_large"
	KindQuotaExceeded  = "quota_exceeded"
	KindStorageError   = "storage_error"
	KindNotFound       = "not_found"
	KindForbidden      = "forbidden"
	KindUnauthorized   = "unauthorized"
	KindInvalidRequest = "invalid_request"
	KindConflict       = "conflict"
	KindInternal       = "internal_error"
)

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// StorageStatus - код ответа хранилища на presigned PUT
	StorageStatus int `json:"storage_status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, body ErrorBody) {
	writeJSON(w, status, Envelope{Success: false, Error: &body})
}

func badRequest(w http.ResponseWriter, message string) {
	fail(w, http.StatusBadRequest, ErrorBody{Kind: KindInvalidRequest, Message: message})
}

// classify сопоставляет ошибку сервисного слоя с HTTP-статусом и видом ошибки
func classify(err error) (int, ErrorBody) {
	var uploadErr *domain.UploadError
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorBody{Kind: KindFileTooLarge, Message: err.Error()}
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusInsufficientStorage, ErrorBody{Kind: KindQuotaExceeded, Message: err.Error()}
	case errors.As(err, &uploadErr):
		body := ErrorBody{Kind: KindStorageError, Message: "failed to upload file to storage", StorageStatus: uploadErr.StatusCode}
		if uploadErr.StatusCode == 0 && errors.Is(err, domain.ErrStorageUnavailable) {
			return http.StatusServiceUnavailable, body
		}
		return http.StatusBadGateway, body
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Kind: KindStorageError, Message: "storage is unavailable"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Kind: KindNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, ErrorBody{Kind: KindForbidden, Message: "access denied"}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrorBody{Kind: KindInvalidRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrorBody{Kind: KindConflict, Message: err.Error()}
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorBody{Kind: KindUnauthorized, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Kind: KindInternal, Message: "internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	fail(w, status, body)
}
