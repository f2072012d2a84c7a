package handler

import (
	"context"
	"fmt"
	"net/http"
	"s3drive/internal/auth"
	"s3drive/internal/domain"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type FolderService interface {
	CreateFolder(ctx context.Context, name string, parentID *int64, userID string) (*domain.Folder, error)
	GetFolderContent(ctx context.Context, folderID *int64, userID string) (*domain.FolderContent, error)
	RenameFolder(ctx context.Context, folderID int64, newName string, userID string) error
	MoveFolder(ctx context.Context, folderID int64, newParentID *int64, userID string) error
	DeleteFolder(ctx context.Context, folderID int64, userID string) error
}

type FolderHandler struct {
	folders FolderService
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

type moveFolderRequest struct {
	ParentID *int64 `json:"parent_id"`
}

func NewFolderHandler(folders FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

func folderIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid folder ID", domain.ErrInvalidInput)
	}
	return id, nil
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	folder, err := h.folders.CreateFolder(r.Context(), req.Name, req.ParentID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondCreated(w, folder)
}

// GetFolderContent без {id} отдает корень пользователя
func (h *FolderHandler) GetFolderContent(w http.ResponseWriter, r *http.Request) {
	var folderID *int64
	if chi.URLParam(r, "id") != "" {
		id, err := folderIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		folderID = &id
	}

	content, err := h.folders.GetFolderContent(r.Context(), folderID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, content)
}

func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := folderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.folders.RenameFolder(r.Context(), folderID, req.Name, auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, map[string]interface{}{"id": folderID, "name": req.Name})
}

func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := folderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.folders.MoveFolder(r.Context(), folderID, req.ParentID, auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, map[string]interface{}{"id": folderID, "parent_id": req.ParentID})
}

func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := folderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.folders.DeleteFolder(r.Context(), folderID, auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, map[string]int64{"deleted": folderID})
}
