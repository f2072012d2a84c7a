// Package upload принимает файл, выбирает ключ в хранилище и способ загрузки.
//
// Маленькие файлы (до LargeFileThreshold включительно) идут одним PutObject,
// большие - HTTP PUT по подписанной ссылке. Брокер ничего не пишет в базу:
// Result передается дальше в сервис метаданных.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"s3drive/internal/domain"
	"s3drive/internal/metrics"
	"s3drive/internal/objectstore"
	"strings"
	"time"
)

const (
	// PresignTTL - срок действия ссылки на загрузку большого файла
	PresignTTL = time.Hour

	// maxErrorBody - сколько байт ответа хранилища сохраняем в UploadError
	maxErrorBody = 4096

	// MaxStorageKeyBytes - предел длины ключа в метаданных (VARCHAR(1024))
	MaxStorageKeyBytes = 1024
	// keySuffixReserve - место под суффикс "_<unix>_<n>"
	keySuffixReserve = 32
)

type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyPresigned Strategy = "presigned"
)

// Policy задает ограничения на размер файла
type Policy struct {
	MaxSize            int64
	LargeFileThreshold int64
}

func (p Policy) Validate() error {
	if p.MaxSize <= 0 || p.LargeFileThreshold <= 0 {
		return fmt.Errorf("%w: max size and large file threshold must be positive", domain.ErrInvalidInput)
	}
	if p.LargeFileThreshold > p.MaxSize {
		return fmt.Errorf("%w: large file threshold %d exceeds max size %d", domain.ErrInvalidInput, p.LargeFileThreshold, p.MaxSize)
	}
	return nil
}

// Strategy выбирает способ загрузки по размеру
func (p Policy) Strategy(size int64) Strategy {
	if size <= p.LargeFileThreshold {
		return StrategyDirect
	}
	return StrategyPresigned
}

// Request - входные данные загрузки. Body должен позволять перемотку:
// для подписанной загрузки поток читается с начала.
type Request struct {
	Body     io.ReadSeeker
	Size     int64
	Filename string
	Folder   string
}

// Result - описание успешно загруженного объекта
type Result struct {
	StorageKey  string
	ContentType string
	SizeBytes   int64
	Strategy    Strategy
}

type Broker struct {
	store  objectstore.Store
	policy Policy
	client *http.Client
	now    func() time.Time
	locks  *keyLocker
}

type Option func(*Broker)

// WithHTTPClient задает клиента для PUT по подписанной ссылке
func WithHTTPClient(c *http.Client) Option {
	return func(b *Broker) { b.client = c }
}

// WithClock подменяет часы, от которых берется метка времени в ключе
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

func NewBroker(store objectstore.Store, policy Policy, opts ...Option) (*Broker, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: object store is required", domain.ErrInvalidInput)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	b := &Broker{
		store:  store,
		policy: policy,
		client: &http.Client{Timeout: 30 * time.Minute},
		now:    time.Now,
		locks:  newKeyLocker(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Broker) Policy() Policy {
	return b.policy
}

// Upload проверяет размер, подбирает свободный ключ и загружает файл.
// Запись выполняется под блокировкой выбранного ключа, поэтому параллельные
// загрузки в этом процессе не перезаписывают друг друга, даже если имя одной
// совпадает с переименованным ключом другой.
func (b *Broker) Upload(ctx context.Context, req Request) (*Result, error) {
	if req.Size > b.policy.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", domain.ErrFileTooLarge, req.Size, b.policy.MaxSize)
	}
	if req.Body == nil || req.Size < 0 {
		return nil, fmt.Errorf("%w: stream with known length is required", domain.ErrInvalidInput)
	}
	filename := CleanFilename(req.Filename)
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	contentType := ContentTypeFor(filename)
	naive := joinKey(req.Folder, filename)
	if len(naive)+keySuffixReserve > MaxStorageKeyBytes {
		return nil, fmt.Errorf("%w: storage key %d bytes exceeds limit of %d bytes", domain.ErrInvalidInput, len(naive), MaxStorageKeyBytes-keySuffixReserve)
	}
	strategy := b.policy.Strategy(req.Size)

	key, unlock, err := b.claimKey(ctx, naive)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if key != naive {
		log.Printf("[Upload] Key %s is taken, using %s", naive, key)
	}

	switch strategy {
	case StrategyDirect:
		err = b.putDirect(ctx, key, req, contentType)
	default:
		err = b.putPresigned(ctx, key, req, contentType)
	}
	metrics.ObserveUpload(string(strategy), err, req.Size)
	if err != nil {
		log.Printf("[Upload] %s upload of %s failed: %v", strategy, key, err)
		return nil, err
	}

	log.Printf("[Upload] Stored %s (%d bytes, %s, %s)", key, req.Size, contentType, strategy)
	return &Result{
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   req.Size,
		Strategy:    strategy,
	}, nil
}

func (b *Broker) putDirect(ctx context.Context, key string, req Request, contentType string) error {
	if err := b.store.PutObject(ctx, key, req.Body, req.Size, contentType); err != nil {
		return &domain.UploadError{Err: err}
	}
	return nil
}

func (b *Broker) putPresigned(ctx context.Context, key string, req Request, contentType string) error {
	url, err := b.store.PresignPut(ctx, key, contentType, PresignTTL)
	if err != nil {
		return &domain.UploadError{Err: err}
	}

	if _, err := req.Body.Seek(0, io.SeekStart); err != nil {
		return &domain.UploadError{Err: fmt.Errorf("rewind upload stream: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, io.NopCloser(req.Body))
	if err != nil {
		return &domain.UploadError{Err: err}
	}
	httpReq.ContentLength = req.Size
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return &domain.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.UploadError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return nil
}
