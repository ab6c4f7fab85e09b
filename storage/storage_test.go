package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomairey/real-estate-listings-app/config"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		ext  string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "jpg"},
		{"png", pngBytes, "png"},
		{"gif", []byte("GIF89a...."), "gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := DetectImage(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, kind.Ext)
		})
	}

	_, err := DetectImage([]byte("%PDF-1.7"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Save(ctx, pngBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/properties/property-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	path := filepath.Join(dir, "properties", filepath.Base(url))
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, url))
	assert.NoError(t, store.Delete(ctx, "https://cdn.example.com/x.jpg"))
	assert.NoError(t, store.Delete(ctx, "/uploads/properties/../secret"))
}

func TestLocalStore_RejectsNonImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), []byte("hello world"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestNewS3Store_PublicURL(t *testing.T) {
	store, err := NewS3Store(config.StorageConfig{
		Endpoint: "https://minio.local:9000",
		Bucket:   "images",
		Region:   "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://minio.local:9000/images", store.publicURL)

	// urls outside the bucket are left alone without a network call
	assert.NoError(t, store.Delete(context.Background(), "/uploads/properties/a.jpg"))
}
