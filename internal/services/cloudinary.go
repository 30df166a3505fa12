package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"Bazaarly/internal/config"
)

// ErrImageStoreDisabled is returned when images are submitted but no store
// credentials are configured.
var ErrImageStoreDisabled = errors.New("image uploads are not configured")

// StoredImage is the handle an ImageStore returns for an uploaded file.
type StoredImage struct {
	URL      string
	PublicID string
}

// ImageStore persists validated listing images.
type ImageStore interface {
	Upload(ctx context.Context, file ImageFile, folder string) (StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("Cloudinary credentials not set in environment variables")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores one image under folder with a timestamped public id.
func (s *CloudinaryStore) Upload(ctx context.Context, file ImageFile, folder string) (StoredImage, error) {
	src, err := file.Open()
	if err != nil {
		return StoredImage{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Name)
	publicID := fmt.Sprintf("%d_%s", time.Now().UnixNano(), strings.TrimSuffix(file.Name, ext))

	result, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		ResourceType:   "image",
		AllowedFormats: []string{"jpg", "jpeg", "png"},
	})
	if err != nil {
		return StoredImage{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return StoredImage{}, fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	return StoredImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from Cloudinary: %w", err)
	}
	return nil
}

// disabledStore rejects uploads. Used when Cloudinary is not configured so
// listings without images still work.
type disabledStore struct{}

// NewDisabledImageStore returns a store that refuses every upload.
func NewDisabledImageStore() ImageStore { return disabledStore{} }

func (disabledStore) Upload(context.Context, ImageFile, string) (StoredImage, error) {
	return StoredImage{}, ErrImageStoreDisabled
}

func (disabledStore) Delete(context.Context, string) error { return nil }
