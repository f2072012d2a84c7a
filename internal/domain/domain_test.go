package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        Category
	}{
		{"image/png", CategoryImage},
		{"IMAGE/JPEG", CategoryImage},
		{"video/mp4", CategoryVideo},
		{"audio/mpeg", CategoryAudio},
		{"text/plain", CategoryDocument},
		{"text/html; charset=utf-8", CategoryDocument},
		{"application/pdf", CategoryDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", CategoryDocument},
		{"application/vnd.ms-excel", CategoryDocument},
		{"application/json", CategoryDocument},
		{"application/zip", CategoryOther},
		{"application/octet-stream", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		if got := CategoryFor(tt.contentType); got != tt.want {
			t.Errorf("CategoryFor(%q) = %s, want %s", tt.contentType, got, tt.want)
		}
	}
}

func TestNewQuotaInfo(t *testing.T) {
	info := NewQuotaInfo(1000, 250)
	if info.AvailableSpace != 750 || info.UsagePercent != 25 {
		t.Errorf("info = %+v", info)
	}

	// параллельные загрузки могут превысить лимит
	over := NewQuotaInfo(1000, 1200)
	if over.AvailableSpace != -200 {
		t.Errorf("AvailableSpace = %d, want -200", over.AvailableSpace)
	}

	if zero := NewQuotaInfo(0, 0); zero.UsagePercent != 0 {
		t.Errorf("UsagePercent for zero limit = %v", zero.UsagePercent)
	}
}

func TestFolderPath(t *testing.T) {
	chain := []Folder{{Name: "docs"}, {Name: "work"}, {Name: "2024"}}
	if got := FolderPath(chain); got != "docs/work/2024" {
		t.Errorf("FolderPath = %q", got)
	}
	if got := FolderPath(nil); got != "" {
		t.Errorf("FolderPath(nil) = %q", got)
	}
}

func TestPermission(t *testing.T) {
	p := &FilePermission{PermissionType: PermissionShared, SharedWith: []string{"bob", "carol"}}
	if !p.IsSharedWith("carol") || p.IsSharedWith("dave") {
		t.Error("IsSharedWith mismatch")
	}
	if !PermissionPublic.Valid() || PermissionType("everyone").Valid() {
		t.Error("Valid mismatch")
	}
}

func TestUploadError(t *testing.T) {
	rejected := &UploadError{StatusCode: 500, Body: "InternalError"}
	if !errors.Is(rejected, ErrUploadFailed) {
		t.Error("rejected upload is not ErrUploadFailed")
	}
	if rejected.Error() != "upload failed: status 500: InternalError" {
		t.Errorf("Error() = %q", rejected.Error())
	}

	cause := fmt.Errorf("%w: connection refused", ErrStorageUnavailable)
	wrapped := fmt.Errorf("put: %w", &UploadError{Err: cause})
	if !errors.Is(wrapped, ErrUploadFailed) || !errors.Is(wrapped, ErrStorageUnavailable) {
		t.Error("wrapped upload error lost its causes")
	}
	var ue *UploadError
	if !errors.As(wrapped, &ue) || ue.StatusCode != 0 {
		t.Errorf("errors.As = %+v", ue)
	}
}
