package objectstore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"s3drive/internal/domain"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modifiedAt  time.Time
}

type presignToken struct {
	method    string
	key       string
	expiresAt time.Time
}

// MemoryStore - хранилище в памяти для локальной разработки и тестов.
// Подписанные URL обслуживает сам через ServeHTTP.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	tokens  map[string]presignToken
	baseURL string
}

// NewMemoryStore создает хранилище. baseURL - адрес, по которому смонтирован ServeHTTP.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memObject),
		tokens:  make(map[string]presignToken),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetBaseURL нужен, когда адрес известен только после старта сервера (httptest)
func (m *MemoryStore) SetBaseURL(baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = strings.TrimRight(baseURL, "/")
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStore) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" || body == nil {
		return fmt.Errorf("%w: key and body are required", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrStorageUnavailable, err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("%w: size mismatch: declared %d, got %d", domain.ErrStorageUnavailable, size, len(data))
	}
	m.put(key, data, contentType)
	return nil
}

func (m *MemoryStore) put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: data, contentType: contentType, modifiedAt: time.Now()}
}

func (m *MemoryStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return m.presign(http.MethodPut, key, ttl)
}

func (m *MemoryStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return m.presign(http.MethodGet, key, ttl)
}

func (m *MemoryStore) presign(method, key string, ttl time.Duration) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: generate token: %v", domain.ErrStorageUnavailable, err)
	}
	token := hex.EncodeToString(buf)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.baseURL == "" {
		return "", fmt.Errorf("%w: memory store has no public base URL", domain.ErrStorageUnavailable)
	}
	now := time.Now()
	m.sweepTokens(now)
	m.tokens[token] = presignToken{method: method, key: key, expiresAt: now.Add(ttl)}
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, token, int64(ttl.Seconds())), nil
}

// sweepTokens удаляет просроченные токены. Вызывается под m.mu.
func (m *MemoryStore) sweepTokens(now time.Time) {
	for token, t := range m.tokens {
		if now.After(t.expiresAt) {
			delete(m.tokens, token)
		}
	}
}

func (m *MemoryStore) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, key)
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: int64(len(obj.data)), ModifiedAt: obj.modifiedAt})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *MemoryStore) lookupToken(token, method string) (presignToken, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[token]
	if !ok || t.method != method || time.Now().After(t.expiresAt) {
		return presignToken{}, false
	}
	return t, true
}

// ServeHTTP обслуживает подписанные URL: PUT записывает объект, GET отдает его
func (m *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/")
	t, ok := m.lookupToken(token, r.Method)
	if !ok {
		http.Error(w, "AccessDenied: invalid or expired signature", http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if r.ContentLength >= 0 && int64(len(data)) != r.ContentLength {
			http.Error(w, "IncompleteBody", http.StatusBadRequest)
			return
		}
		m.put(t.key, data, r.Header.Get("Content-Type"))
		log.Printf("[Memory] Stored %s via presigned PUT (%d bytes)", t.key, len(data))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		m.mu.RLock()
		obj, exists := m.objects[t.key]
		m.mu.RUnlock()
		if !exists {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		if obj.contentType != "" {
			w.Header().Set("Content-Type", obj.contentType)
		}
		http.ServeContent(w, r, "", obj.modifiedAt, bytes.NewReader(obj.data))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
