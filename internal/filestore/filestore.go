package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"garment-erp/internal/config"
)

var (
	ErrDisabled         = errors.New("image storage is not configured")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type putter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store keeps production and lot photos in an S3 compatible bucket and hands
// back their public URLs.
type Store struct {
	client    putter
	bucket    string
	publicURL string
	now       func() time.Time
}

// New connects to MinIO. An empty endpoint yields a Store whose uploads fail
// with ErrDisabled.
func New(cfg config.MinIO) (*Store, error) {
	const op = "filestore.New"

	s := &Store{bucket: cfg.Bucket, publicURL: publicURL(cfg), now: time.Now}
	if cfg.Endpoint == "" {
		return s, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.client = client

	return s, nil
}

func publicURL(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}

// UploadImage stores one image under images/yyyy/mm/dd/<uuid><ext> and
// returns its URL.
func (s *Store) UploadImage(ctx context.Context, fileName string, r io.Reader, size int64) (string, error) {
	const op = "filestore.UploadImage"

	if s.client == nil {
		return "", ErrDisabled
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := imageExts[ext]
	if !ok {
		return "", fmt.Errorf("%s: %q: %w", op, ext, ErrUnsupportedImage)
	}

	objectName := fmt.Sprintf("images/%s/%s%s", s.now().Format("2006/01/02"), uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: put %s: %w", op, objectName, err)
	}

	return s.publicURL + "/" + s.bucket + "/" + objectName, nil
}
