package domain

import (
	"errors"
	"io"
	"path"
	"strings"
)

// MaxImageSize caps an uploaded image at 2 MiB.
const MaxImageSize int64 = 2 << 20

// Image owner kinds, used as the key prefix in storage.
const (
	ImageOwnerRestaurants = "restaurants"
	ImageOwnerDishes      = "dishes"
)

var (
	ErrImageTooLarge     = errors.New("image exceeds the 2 MiB limit")
	ErrImageContentType  = errors.New("only image uploads are accepted")
	ErrInvalidImageOwner = errors.New("unknown image owner")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/avif": "avif",
}

// ImageUpload is an image received from a client, not yet stored.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Validate checks the content type and size.
func (u *ImageUpload) Validate() error {
	if !IsImageContentType(u.ContentType) {
		return ErrImageContentType
	}
	if u.Size <= 0 || u.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// Extension picks a file extension, preferring the one implied by the
// content type.
func (u *ImageUpload) Extension() string {
	if ext, ok := imageExtensions[baseContentType(u.ContentType)]; ok {
		return ext
	}
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Filename)), "."); ext != "" {
		return ext
	}
	return "img"
}

// IsImageContentType accepts any image/* media type.
func IsImageContentType(ct string) bool {
	return strings.HasPrefix(baseContentType(ct), "image/")
}

// IsValidImageOwner reports whether owner is a known key prefix.
func IsValidImageOwner(owner string) bool {
	return owner == ImageOwnerRestaurants || owner == ImageOwnerDishes
}

// StoredImage identifies an image in storage.
type StoredImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func baseContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
