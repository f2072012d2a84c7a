package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"s3drive/internal/domain"
	"strings"
	"testing"
	"time"
)

func newMemoryServer(t *testing.T) (*MemoryStore, *httptest.Server) {
	t.Helper()
	store := NewMemoryStore("")
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	store.SetBaseURL(srv.URL)
	return store, srv
}

func TestMemoryStorePresignedRoundTrip(t *testing.T) {
	store, srv := newMemoryServer(t)
	ctx := context.Background()
	payload := []byte("hello presigned world")

	putURL, err := store.PresignPut(ctx, "uploads/a.txt", "text/plain", time.Hour)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPut, putURL, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}

	getURL, err := store.PresignGet(ctx, "uploads/a.txt", time.Hour)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	resp, err = srv.Client().Get(getURL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	got, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded %q, want %q", got, payload)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestMemoryStoreRejectsWrongMethodAndUnknownToken(t *testing.T) {
	store, srv := newMemoryServer(t)
	ctx := context.Background()

	putURL, err := store.PresignPut(ctx, "k", "text/plain", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	// PUT-токен не дает права на чтение
	resp, err := srv.Client().Get(putURL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET with put token: status = %d, want 403", resp.StatusCode)
	}

	resp, err = srv.Client().Get(srv.URL + "/deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unknown token: status = %d, want 403", resp.StatusCode)
	}
}

func TestMemoryStoreExpiredToken(t *testing.T) {
	store, srv := newMemoryServer(t)
	getURL, err := store.PresignGet(context.Background(), "k", -time.Second)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Get(getURL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestMemoryStoreDeleteTwice(t *testing.T) {
	store := NewMemoryStore("http://localhost")
	ctx := context.Background()

	if err := store.PutObject(ctx, "a", strings.NewReader("x"), 1, "text/plain"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteObject(ctx, "a"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err := store.DeleteObject(ctx, "a")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
	if ok, _ := store.Exists(ctx, "a"); ok {
		t.Error("object still exists after delete")
	}
}

func TestMemoryStoreListObjects(t *testing.T) {
	store := NewMemoryStore("http://localhost")
	ctx := context.Background()
	for _, key := range []string{"uploads/u1/b", "uploads/u1/a", "uploads/u2/c"} {
		if err := store.PutObject(ctx, key, strings.NewReader("12"), 2, ""); err != nil {
			t.Fatal(err)
		}
	}

	objects, err := store.ListObjects(ctx, "uploads/u1/")
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 2 || objects[0].Key != "uploads/u1/a" || objects[1].Key != "uploads/u1/b" {
		t.Fatalf("ListObjects = %+v", objects)
	}
	if objects[0].Size != 2 {
		t.Errorf("size = %d, want 2", objects[0].Size)
	}
}

func TestMemoryStorePutSizeMismatch(t *testing.T) {
	store := NewMemoryStore("http://localhost")
	err := store.PutObject(context.Background(), "a", strings.NewReader("abc"), 10, "")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

func testS3Config(endpoint string) *Config {
	return &Config{
		Driver:          DriverS3,
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
		Bucket:          "drive",
		UsePathStyle:    true,
		MaxAttempts:     1,
	}
}

func TestS3StorePresignExpiry(t *testing.T) {
	store, err := NewS3Store(testS3Config("http://localhost:9000"))
	if err != nil {
		t.Fatal(err)
	}

	u, err := store.PresignPut(context.Background(), "uploads/big.bin", "application/octet-stream", time.Hour)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Errorf("presigned put URL %q lacks 1h expiry", u)
	}
	if !strings.HasPrefix(u, "http://localhost:9000/drive/uploads/big.bin") {
		t.Errorf("presigned put URL %q has unexpected path", u)
	}

	u, err = store.PresignGet(context.Background(), "uploads/big.bin", time.Hour)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Errorf("presigned get URL %q lacks 1h expiry", u)
	}
}

func TestS3StoreExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr error
	}{
		{name: "present", status: http.StatusOK, want: true},
		{name: "absent", status: http.StatusNotFound, want: false},
		{name: "forbidden is not absence", status: http.StatusForbidden, wantErr: domain.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead || r.URL.Path != "/drive/uploads/a.txt" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			store, err := NewS3Store(testS3Config(srv.URL))
			if err != nil {
				t.Fatal(err)
			}
			got, err := store.Exists(context.Background(), "uploads/a.txt")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr bool
	}{
		{name: "memory needs nothing", conf: Config{Driver: DriverMemory}},
		{name: "s3 complete", conf: *testS3Config("http://localhost:9000")},
		{name: "s3 without bucket", conf: Config{Driver: DriverS3, Endpoint: "x", AccessKeyID: "a", SecretAccessKey: "b"}, wantErr: true},
		{name: "unknown driver", conf: Config{Driver: "ftp"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func testMinioStore(t *testing.T, handler http.HandlerFunc) *MinioStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := testS3Config(srv.URL)
	conf.Driver = DriverMinio
	store, err := NewMinioStore(conf)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestMinioStoreExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr error
	}{
		{name: "present", status: http.StatusOK, want: true},
		{name: "absent", status: http.StatusNotFound, want: false},
		{name: "server error is not absence", status: http.StatusInternalServerError, wantErr: domain.ErrStorageUnavailable},
		{name: "forbidden is not absence", status: http.StatusForbidden, wantErr: domain.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testMinioStore(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead || r.URL.Path != "/drive/uploads/a.txt" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if tt.status == http.StatusOK {
					w.Header().Set("Content-Length", "0")
					w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
					w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
				}
				w.WriteHeader(tt.status)
			})

			got, err := store.Exists(context.Background(), "uploads/a.txt")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinioStoreDeleteMissingObject(t *testing.T) {
	store := testMinioStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			t.Errorf("DELETE sent for a missing object")
		}
		w.WriteHeader(http.StatusNotFound)
	})

	err := store.DeleteObject(context.Background(), "uploads/gone.txt")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMinioStoreListObjectsError(t *testing.T) {
	store := testMinioStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := store.ListObjects(context.Background(), "uploads/")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestMinioStorePresignGet(t *testing.T) {
	store := testMinioStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("presign must not call the server: %s %s", r.Method, r.URL.Path)
	})

	u, err := store.PresignGet(context.Background(), "uploads/a.txt", time.Hour)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.Contains(u, "/drive/uploads/a.txt") {
		t.Errorf("presigned URL %q has unexpected path", u)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Errorf("presigned URL %q lacks 1h expiry", u)
	}
}

func TestMemoryStoreSweepsExpiredTokens(t *testing.T) {
	store := NewMemoryStore("http://localhost")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.PresignGet(ctx, "k", -time.Second); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.PresignPut(ctx, "k", "text/plain", time.Hour); err != nil {
		t.Fatal(err)
	}

	store.mu.RLock()
	n := len(store.tokens)
	store.mu.RUnlock()
	// просроченные токены удалены, живой остался
	if n != 1 {
		t.Errorf("tokens = %d, want 1", n)
	}
}
