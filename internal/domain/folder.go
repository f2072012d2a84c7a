package domain

import (
	"time"
)

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type FolderContent struct {
	Folder  *Folder      `json:"folder,omitempty"`
	Path    string       `json:"path"`
	Files   []StoredFile `json:"files"`
	Folders []Folder     `json:"subfolders"`
}

// FolderPath собирает путь папки из цепочки предков (от корня к папке)
func FolderPath(chain []Folder) string {
	path := ""
	for i, f := range chain {
		if i > 0 {
			path += "/"
		}
		path += f.Name
	}
	return path
}
