package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"s3drive/internal/auth"
	"s3drive/internal/domain"
	"s3drive/internal/service"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// multipartMemory - часть формы, которая держится в памяти; остальное уходит во временные файлы
	multipartMemory = 32 << 20
	// multipartOverhead - запас на заголовки и остальные поля формы
	multipartOverhead = 1 << 20
)

type FileService interface {
	UploadFile(ctx context.Context, in service.UploadInput) (*domain.FileUploadResponse, error)
	GetFileInfo(ctx context.Context, fileID uuid.UUID, userID string) (*domain.StoredFile, error)
	ListFiles(ctx context.Context, folderID *int64, userID string) ([]domain.StoredFile, error)
	DownloadURL(ctx context.Context, fileID uuid.UUID, userID string) (string, error)
	DeleteFile(ctx context.Context, fileID uuid.UUID, userID string) error
	RenameFile(ctx context.Context, fileID uuid.UUID, newName string, userID string) (*domain.StoredFile, error)
	MoveFile(ctx context.Context, fileID uuid.UUID, newFolderID *int64, userID string) (*domain.StoredFile, error)
}

type PermissionService interface {
	GetPermission(ctx context.Context, fileID uuid.UUID, userID string) (*domain.FilePermission, error)
	SetPermission(ctx context.Context, fileID uuid.UUID, permType domain.PermissionType, sharedWith []string, userID string) (*domain.FilePermission, error)
	ListSharedWithMe(ctx context.Context, userID string) ([]domain.FileWithPermission, error)
}

type FileHandler struct {
	files         FileService
	permissions   PermissionService
	maxUploadSize int64
}

type renameRequest struct {
	Name string `json:"name"`
}

type moveFileRequest struct {
	FolderID *int64 `json:"folder_id"`
}

type permissionRequest struct {
	PermissionType domain.PermissionType `json:"permission_type"`
	SharedWith     []string              `json:"shared_with"`
}

func NewFileHandler(files FileService, permissions PermissionService, maxUploadSize int64) *FileHandler {
	return &FileHandler{
		files:         files,
		permissions:   permissions,
		maxUploadSize: maxUploadSize,
	}
}

// parseOptionalID разбирает необязательный числовой ID; пустая строка - nil
func parseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid folder ID %q", domain.ErrInvalidInput, s)
	}
	return &id, nil
}

func fileIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid file ID", domain.ErrInvalidInput)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	return nil
}

// UploadFile принимает multipart-форму: file, необязательные folder_id, name и redirect_to.
// С redirect_to ответ - 303: при успехе на redirect_to?file=<id>, при ошибке туда же с flash-сообщением.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	rawRedirect := r.URL.Query().Get("redirect_to")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = fmt.Errorf("%w: request body exceeds limit of %d bytes", domain.ErrFileTooLarge, h.maxUploadSize)
		} else {
			err = fmt.Errorf("%w: failed to parse form: %v", domain.ErrInvalidInput, err)
		}
		h.uploadFailed(w, r, rawRedirect, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	if rawRedirect == "" {
		rawRedirect = r.FormValue("redirect_to")
	}
	redirectTo, redirect := safeRedirect(rawRedirect)
	if rawRedirect != "" && !redirect {
		badRequest(w, "redirect_to must be a relative path")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.uploadFailed(w, r, rawRedirect, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	folderID, err := parseOptionalID(r.FormValue("folder_id"))
	if err != nil {
		h.uploadFailed(w, r, rawRedirect, err)
		return
	}

	res, err := h.files.UploadFile(r.Context(), service.UploadInput{
		Body:        file,
		Size:        header.Size,
		Filename:    header.Filename,
		DisplayName: r.FormValue("name"),
		FolderID:    folderID,
		OwnerID:     userID,
	})
	if err != nil {
		log.Printf("[FileHandler] Upload of %q by %s failed: %v", header.Filename, userID, err)
		h.uploadFailed(w, r, rawRedirect, err)
		return
	}

	if redirect {
		http.Redirect(w, r, withQuery(redirectTo, "file", res.File.ID.String()), http.StatusSeeOther)
		return
	}
	respondCreated(w, res)
}

// uploadFailed отвечает JSON-ошибкой либо редиректом с flash-сообщением
func (h *FileHandler) uploadFailed(w http.ResponseWriter, r *http.Request, rawRedirect string, err error) {
	target, redirect := safeRedirect(rawRedirect)
	if !redirect {
		writeError(w, r, err)
		return
	}
	_, body := classify(err)
	setFlash(w, Flash{Kind: body.Kind, Message: body.Message})
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, err := parseOptionalID(r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	files, err := h.files.ListFiles(r.Context(), folderID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, files)
}

func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	file, err := h.files.GetFileInfo(r.Context(), fileID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, file)
}

// DownloadFile перенаправляет на подписанную ссылку хранилища
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	url, err := h.files.DownloadURL(r.Context(), fileID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.files.DeleteFile(r.Context(), fileID, auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"deleted": fileID.String()})
}

func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	file, err := h.files.RenameFile(r.Context(), fileID, req.Name, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, file)
}

func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	file, err := h.files.MoveFile(r.Context(), fileID, req.FolderID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, file)
}

func (h *FileHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := h.permissions.GetPermission(r.Context(), fileID, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, perm)
}

func (h *FileHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req permissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := h.permissions.SetPermission(r.Context(), fileID, req.PermissionType, req.SharedWith, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondOK(w, perm)
}

func (h *FileHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	files, err := h.permissions.ListSharedWithMe(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if files == nil {
		files = []domain.FileWithPermission{}
	}
	respondOK(w, files)
}
