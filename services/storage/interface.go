package storage

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService hosts generated media.
type StorageService interface {
	StoreImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// StorageServiceImpl implements StorageService on Cloudinary.
type StorageServiceImpl struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ StorageService = (*StorageServiceImpl)(nil)
