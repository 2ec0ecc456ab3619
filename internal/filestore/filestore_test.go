package filestore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garment-erp/internal/config"
)

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
	opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func newTestStore(p putter) *Store {
	return &Store{
		client:    p,
		bucket:    "garment-images",
		publicURL: "http://cdn.local",
		now:       func() time.Time { return time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC) },
	}
}

func TestUploadImage(t *testing.T) {
	p := new(mockPutter)
	p.On("PutObject", mock.Anything, "garment-images",
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "images/2024/07/09/") && strings.HasSuffix(name, ".png")
		}),
		mock.Anything, int64(4),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "image/png" }),
	).Return(minio.UploadInfo{}, nil)

	url, err := newTestStore(p).UploadImage(context.Background(), "Photo.PNG", strings.NewReader("data"), 4)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://cdn.local/garment-images/images/2024/07/09/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	p.AssertExpectations(t)
}

func TestUploadImage_Rejects(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := newTestStore(new(mockPutter)).UploadImage(context.Background(), "doc.pdf", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("disabled", func(t *testing.T) {
		s, err := New(config.MinIO{Bucket: "b"})
		require.NoError(t, err)

		_, err = s.UploadImage(context.Background(), "a.jpg", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrDisabled)
	})

	t.Run("put failure", func(t *testing.T) {
		p := new(mockPutter)
		p.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("bucket gone"))

		_, err := newTestStore(p).UploadImage(context.Background(), "a.jpg", strings.NewReader("x"), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket gone")
	})
}
