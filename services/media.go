package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaService stores property, resource and menu imagery on Cloudinary.
type MediaService struct {
	cld *cloudinary.Cloudinary
}

func NewMediaService(cloudinaryURL string) (*MediaService, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &MediaService{cld: cld}, nil
}

// UploadImageFromBytes stores an image under the given folder and returns
// its HTTPS delivery URL.
func (m *MediaService) UploadImageFromBytes(data []byte, folder, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	useFilename := true
	uniqueFilename := true
	overwrite := false
	publicID := fmt.Sprintf("%s_%d", strings.TrimSuffix(filename, filepath.Ext(filename)), time.Now().UnixNano())

	result, err := m.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UseFilename:    &useFilename,
		UniqueFilename: &uniqueFilename,
		Overwrite:      &overwrite,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", fmt.Errorf("upload returned no delivery URL")
	}
	return forceHTTPS(url), nil
}

// DeleteImage removes a previously uploaded image by its public ID.
func (m *MediaService) DeleteImage(publicID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := m.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// forceHTTPS normalizes Cloudinary delivery URLs to the https scheme.
func forceHTTPS(in string) string {
	if in == "" {
		return in
	}
	out := strings.TrimSpace(in)
	return strings.Replace(out, "http://", "https://", 1)
}
