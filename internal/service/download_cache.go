package service

import (
	"s3drive/internal/metrics"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DownloadURLCache хранит выданные подписанные ссылки по ключу объекта.
// TTL должен быть меньше срока действия ссылки, иначе клиент получит протухшую.
type DownloadURLCache struct {
	cache *expirable.LRU[string, string]
}

func NewDownloadURLCache(maxSize int, ttl time.Duration) *DownloadURLCache {
	return &DownloadURLCache{cache: expirable.NewLRU[string, string](maxSize, nil, ttl)}
}

func (c *DownloadURLCache) Get(storageKey string) (string, bool) {
	if c == nil {
		return "", false
	}
	url, ok := c.cache.Get(storageKey)
	if ok {
		metrics.DownloadURLCacheHits.Inc()
		return url, true
	}
	metrics.DownloadURLCacheMisses.Inc()
	return "", false
}

func (c *DownloadURLCache) Set(storageKey, url string) {
	if c == nil {
		return
	}
	c.cache.Add(storageKey, url)
}

// Invalidate вызывается при удалении объекта
func (c *DownloadURLCache) Invalidate(storageKey string) {
	if c == nil {
		return
	}
	c.cache.Remove(storageKey)
}
