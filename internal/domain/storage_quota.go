package domain

import "time"

// DefaultQuotaBytes - лимит по умолчанию (1GB)
const DefaultQuotaBytes int64 = 1073741824

type StorageQuota struct {
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	TotalBytesLimit int64     `json:"total_bytes_limit" db:"total_bytes_limit"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type QuotaInfo struct {
	TotalSpace     int64   `json:"total_space"`
	UsedSpace      int64   `json:"used_space"`
	AvailableSpace int64   `json:"available_space"`
	UsagePercent   float64 `json:"usage_percent"`
}

// NewQuotaInfo считает свободное место. Available может быть отрицательным,
// если параллельные загрузки проскочили проверку квоты.
func NewQuotaInfo(limit, used int64) *QuotaInfo {
	info := &QuotaInfo{
		TotalSpace:     limit,
		UsedSpace:      used,
		AvailableSpace: limit - used,
	}
	if limit > 0 {
		info.UsagePercent = float64(used) / float64(limit) * 100
	}
	return info
}
