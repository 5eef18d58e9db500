package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/metrics"
	"github.com/campusprint/printhub/pkg/storage"
	"github.com/google/uuid"
)

const (
	// MaxUploadBytes is the largest accepted document.
	MaxUploadBytes = 50 << 20

	// PDFContentType is the only accepted upload type.
	PDFContentType = "application/pdf"

	bytesPerPageEstimate = 50000
)

// UploadPrefix is the key namespace owned by identityID.
func UploadPrefix(identityID string) string {
	return "uploads/" + identityID + "/"
}

// EstimatePages guesses a page count from the file size. It is only a
// default the student may correct before ordering.
func EstimatePages(size int64) int {
	pages := (size + bytesPerPageEstimate - 1) / bytesPerPageEstimate
	if pages < 1 {
		return 1
	}
	return int(pages)
}

// Upload is the result of a stored document.
type Upload struct {
	FileKey          string `json:"fileKey"`
	OriginalFilename string `json:"originalFilename"`
	Size             int64  `json:"size"`
	EstimatedPages   int    `json:"estimatedPages"`
}

// FileService stores uploaded documents and guards who may read them back.
type FileService struct {
	disk   storage.Disk
	orders *repositories.OrderRepository
	now    func() time.Time
}

func NewFileService(disk storage.Disk, orders *repositories.OrderRepository) *FileService {
	return &FileService{disk: disk, orders: orders, now: time.Now}
}

// Upload stores r under a fresh key in identityID's namespace. The type and
// size are checked before anything is written.
func (s *FileService) Upload(ctx context.Context, identityID, filename, contentType string, size int64, r io.Reader) (*Upload, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	if contentType != PDFContentType {
		metrics.Uploads.WithLabelValues("unsupported_type").Inc()
		return nil, ErrUnsupportedType
	}
	if size > MaxUploadBytes {
		metrics.Uploads.WithLabelValues("too_large").Inc()
		return nil, ErrFileTooLarge
	}

	name := baseName(filename)
	key := fmt.Sprintf("%s%d-%s-%s", UploadPrefix(identityID), s.now().UnixMilli(), uuid.NewString()[:8], name)
	if !storage.ValidKey(key) {
		return nil, ErrFileForbidden
	}

	// the declared size is trusted for the check above; cap the copy too
	body := io.LimitReader(r, MaxUploadBytes+1)
	if err := s.disk.Put(ctx, key, body, storage.Meta{ContentType: contentType, Size: size}); err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store upload: %w", err)
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	logger.WithCtx(ctx).Info("file uploaded", "key", key, "size", size)
	return &Upload{
		FileKey:          key,
		OriginalFilename: name,
		Size:             size,
		EstimatedPages:   EstimatePages(size),
	}, nil
}

// OpenForUser returns a document from identityID's own namespace.
func (s *FileService) OpenForUser(ctx context.Context, identityID, key string) (*storage.Object, error) {
	if !OwnsKey(identityID, key) {
		return nil, ErrFileForbidden
	}
	return s.open(ctx, key)
}

// OpenForVendor returns a document attached to an order the vendor may see.
func (s *FileService) OpenForVendor(ctx context.Context, vendorID uint, key string) (*storage.Object, error) {
	if strings.Contains(key, "..") {
		return nil, ErrFileForbidden
	}
	ok, err := s.orders.VendorCanAccessFile(ctx, vendorID, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFileForbidden
	}
	return s.open(ctx, key)
}

func (s *FileService) open(ctx context.Context, key string) (*storage.Object, error) {
	obj, err := s.disk.Open(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.WithCtx(ctx).Warn("file missing from storage", "key", key)
		return nil, ErrFileNotFound
	case errors.Is(err, storage.ErrInvalidKey):
		return nil, ErrFileForbidden
	case err != nil:
		return nil, err
	}
	return obj, nil
}

// OwnsKey reports whether key sits inside identityID's upload namespace.
func OwnsKey(identityID, key string) bool {
	if identityID == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, UploadPrefix(identityID))
}

// baseName strips any client-side directory from a browser-supplied name.
func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	// keys containing ".." are refused on read
	name = strings.ReplaceAll(name, "..", "_")
	switch name {
	case "", ".", "_", "/":
		return "document.pdf"
	}
	return name
}
