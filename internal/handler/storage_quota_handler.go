package handler

import (
	"context"
	"fmt"
	"net/http"
	"s3drive/internal/auth"
	"s3drive/internal/domain"
	"strings"
)

type QuotaService interface {
	GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error)
	UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error
}

type StorageQuotaHandler struct {
	quota QuotaService
}

func NewStorageQuotaHandler(quota QuotaService) *StorageQuotaHandler {
	return &StorageQuotaHandler{quota: quota}
}

func (h *StorageQuotaHandler) GetQuotaInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.quota.GetQuotaInfo(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, info)
}

// UpdateQuotaLimit - эндпоинт администратора, маршрут закрыт RequireAdmin
func (h *StorageQuotaHandler) UpdateQuotaLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		NewLimit int64  `json:"new_limit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, r, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput))
		return
	}

	if err := h.quota.UpdateQuotaLimit(r.Context(), req.UserID, req.NewLimit); err != nil {
		writeError(w, r, err)
		return
	}

	info, err := h.quota.GetQuotaInfo(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, info)
}
