package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// NewStorageService creates a new StorageServiceImpl uploading into folder.
func NewStorageService(cld *cloudinary.Cloudinary, folder string) *StorageServiceImpl {
	return &StorageServiceImpl{cld: cld, folder: folder}
}

// StoreImage uploads raw image bytes and returns their HTTPS delivery URL.
func (s *StorageServiceImpl) StoreImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("StorageServiceImpl: empty image")
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("StorageServiceImpl: failed to upload %s image: %w", mimeType, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("StorageServiceImpl: upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", errors.New("StorageServiceImpl: no URL returned")
	}
	return result.SecureURL, nil
}
