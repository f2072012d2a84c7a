package handler

import (
	"context"
	"net/http"
	"s3drive/internal/objectstore"
)

type OrphanFinder interface {
	FindOrphans(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error)
}

type AdminHandler struct {
	orphans       OrphanFinder
	defaultPrefix string
}

func NewAdminHandler(orphans OrphanFinder, defaultPrefix string) *AdminHandler {
	return &AdminHandler{orphans: orphans, defaultPrefix: defaultPrefix}
}

// ListOrphans - объекты в хранилище без записи о файле. Только отчет, ничего не удаляет.
func (h *AdminHandler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = h.defaultPrefix
	}

	objects, err := h.orphans.FindOrphans(r.Context(), prefix)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var total int64
	for _, obj := range objects {
		total += obj.Size
	}
	respondOK(w, map[string]interface{}{
		"prefix":      prefix,
		"count":       len(objects),
		"total_bytes": total,
		"objects":     objects,
	})
}
