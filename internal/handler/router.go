package handler

import (
	"github.com/go-chi/chi/v5"
)

// Routes описывает все маршруты API
type Routes struct {
	Files      *FileHandler
	Folders    *FolderHandler
	Quota      *StorageQuotaHandler
	Admin      *AdminHandler
	Verifier   TokenVerifier
	AdminUsers []string
}

// Mount регистрирует маршруты /v1 на роутере
func (rt Routes) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/flash", GetFlash)

		// публичные файлы скачиваются без токена
		r.With(OptionalAuth(rt.Verifier)).Get("/files/{id}/download", rt.Files.DownloadFile)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(rt.Verifier))

			r.Post("/files", rt.Files.UploadFile)
			r.Get("/files", rt.Files.ListFiles)
			r.Get("/files/shared-with-me", rt.Files.SharedWithMe)
			r.Get("/files/{id}", rt.Files.GetFile)
			r.Delete("/files/{id}", rt.Files.DeleteFile)
			r.Put("/files/{id}/rename", rt.Files.RenameFile)
			r.Put("/files/{id}/move", rt.Files.MoveFile)
			r.Get("/files/{id}/permission", rt.Files.GetPermission)
			r.Put("/files/{id}/permission", rt.Files.SetPermission)

			r.Get("/folders", rt.Folders.GetFolderContent)
			r.Post("/folders", rt.Folders.CreateFolder)
			r.Get("/folders/{id}", rt.Folders.GetFolderContent)
			r.Delete("/folders/{id}", rt.Folders.DeleteFolder)
			r.Put("/folders/{id}/rename", rt.Folders.RenameFolder)
			r.Put("/folders/{id}/move", rt.Folders.MoveFolder)

			r.Get("/quota", rt.Quota.GetQuotaInfo)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(rt.AdminUsers))
				r.Put("/quota/limit", rt.Quota.UpdateQuotaLimit)
				r.Get("/admin/orphans", rt.Admin.ListOrphans)
			})
		})
	})
}
