// Package storage keeps uploaded listing images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"
)

const propertiesFolder = "properties"

var ErrInvalidImage = errors.New("unsupported image type")

// ImageStore persists image bytes and hands back the URL stored on the listing.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	// Delete removes an image previously returned by Save. URLs the store
	// does not own, and files already gone, are ignored.
	Delete(ctx context.Context, url string) error
}

type ImageType struct {
	Ext  string
	MIME string
}

var (
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
)

// DetectImage sniffs the leading bytes of an upload.
func DetectImage(head []byte) (ImageType, error) {
	switch {
	case bytes.HasPrefix(head, jpegMagic):
		return ImageType{Ext: "jpg", MIME: "image/jpeg"}, nil
	case bytes.HasPrefix(head, pngMagic):
		return ImageType{Ext: "png", MIME: "image/png"}, nil
	case bytes.HasPrefix(head, []byte("GIF87a")), bytes.HasPrefix(head, []byte("GIF89a")):
		return ImageType{Ext: "gif", MIME: "image/gif"}, nil
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return ImageType{Ext: "webp", MIME: "image/webp"}, nil
	}
	return ImageType{}, ErrInvalidImage
}

func objectName(ext string) string {
	return fmt.Sprintf("property-%s.%s", ksuid.New().String(), ext)
}
