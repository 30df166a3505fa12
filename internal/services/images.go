package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxImageSize          = 5 * 1024 * 1024
	MaxImagesPerListing   = 5
	allowedImageTypesText = "JPEG, PNG, JPG"
)

var allowedImageExtensions = map[string]bool{
	"JPEG": true,
	"JPG":  true,
	"PNG":  true,
}

var allowedImageMIMEs = []string{"image/jpeg", "image/png"}

// ImageFile is an uploaded image awaiting validation and storage.
type ImageFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

func ImageFromFileHeader(fh *multipart.FileHeader) ImageFile {
	return ImageFile{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func ImageFromBytes(name string, data []byte) ImageFile {
	return ImageFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ValidateImages checks the whole batch and rejects it on the first failing
// file. An empty batch is valid.
func ValidateImages(files []ImageFile, maxCount int) ([]ImageFile, error) {
	if len(files) == 0 {
		return []ImageFile{}, nil
	}

	if len(files) > maxCount {
		return nil, newValidationError("images", "Maximum %d images allowed per listing", maxCount)
	}

	for idx, file := range files {
		if msg := validateImageFile(file); msg != "" {
			return nil, newValidationError("images", "Image %d: %s", idx+1, msg)
		}
	}

	accepted := make([]ImageFile, len(files))
	copy(accepted, files)
	return accepted, nil
}

func validateImageFile(file ImageFile) string {
	if file.Size > MaxImageSize {
		return fmt.Sprintf("Image size exceeds %.1fMB limit", float64(MaxImageSize)/(1024*1024))
	}

	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(file.Name), "."))
	if !allowedImageExtensions[ext] {
		return "Invalid file type. Allowed types: " + allowedImageTypesText
	}

	if file.Open == nil {
		return ""
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Sprintf("Invalid image file: %v", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return fmt.Sprintf("Invalid image file: %v", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageMIMEs...) {
		return "Invalid image format. Only JPEG and PNG are allowed"
	}

	return ""
}
