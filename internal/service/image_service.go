package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fitformula/fitformula-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85

	// ImageURLExpiry bounds how long a presigned workout image URL stays valid
	ImageURLExpiry = time.Hour
)

var (
	ErrImageTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat             = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData          = errors.New("invalid image data")
	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var imageVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0},
}

// ImageMetadata holds the object keys of an uploaded workout image
type ImageMetadata struct {
	ID            string `json:"id"`
	ThumbnailPath string `json:"thumbnailPath"`
	DisplayPath   string `json:"displayPath"`
	OriginalPath  string `json:"originalPath"`
}

// ImageService resizes workout images and stores every variant
type ImageService struct {
	storage storage.ImageRepository
}

// NewImageService creates a new ImageService. A nil repository disables uploads.
func NewImageService(storage storage.ImageRepository) *ImageService {
	return &ImageService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ImageService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateImage validates image format and size
func (s *ImageService) ValidateImage(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}
	return img, nil
}

// ProcessAndUpload re-encodes a workout image as JPEG in three widths and
// uploads them under the trainer's prefix
func (s *ImageService) ProcessAndUpload(ctx context.Context, trainerID int32, data []byte, filename string) (*ImageMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrImageStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	paths := make(map[string]string, len(imageVariants))

	for _, variant := range imageVariants {
		processed := img
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := workoutImagePath(trainerID, imageID, variant.name)
		key, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanup(ctx, paths)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		paths[variant.name] = key
	}

	return &ImageMetadata{
		ID:            imageID,
		ThumbnailPath: paths["thumb"],
		DisplayPath:   paths["display"],
		OriginalPath:  paths["original"],
	}, nil
}

func (s *ImageService) cleanup(ctx context.Context, paths map[string]string) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, p)
	}
	if err := s.storage.DeleteMany(ctx, keys); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Failed to clean up partial image upload")
	}
}

// URL presigns a stored object key. Empty keys and disabled storage yield "".
func (s *ImageService) URL(ctx context.Context, objectPath string) string {
	if objectPath == "" || !s.IsEnabled() {
		return ""
	}
	url, err := s.storage.GeneratePresignedURL(ctx, objectPath, ImageURLExpiry)
	if err != nil {
		log.Warn().Err(err).Str("key", objectPath).Msg("Failed to presign image URL")
		return ""
	}
	return url
}

// DeleteAllVariants removes every size of the image that objectPath belongs to
func (s *ImageService) DeleteAllVariants(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}

	base := extractBasePath(objectPath)
	if base == "" {
		return s.storage.Delete(ctx, objectPath)
	}
	keys := make([]string, 0, len(imageVariants))
	for _, v := range imageVariants {
		keys = append(keys, base+"_"+v.name+".jpg")
	}
	return s.storage.DeleteMany(ctx, keys)
}

func workoutImagePath(trainerID int32, imageID, variant string) string {
	return fmt.Sprintf("workouts/%d/%s_%s.jpg", trainerID, imageID, variant)
}

// extractBasePath strips the variant suffix from an object key
func extractBasePath(objectPath string) string {
	for _, v := range imageVariants {
		suffix := "_" + v.name + ".jpg"
		if strings.HasSuffix(objectPath, suffix) {
			return strings.TrimSuffix(objectPath, suffix)
		}
	}
	return ""
}

// GetContentType returns the content type for a file extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
