package utils

import (
	"fmt"

	"glowapp/config"
	"glowapp/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Cloudinary returns the image storage service, or nil when no Cloudinary
// credentials are configured.
func Cloudinary() (*storage.StorageServiceImpl, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return storage.NewStorageService(cld, cfg.CloudinaryFolder), nil
}
