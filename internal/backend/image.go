package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned for selections that are not PNG or JPEG.
var ErrUnsupportedImage = errors.New("unsupported image type")

// AllowedExtensions is the file filter offered to the user when picking a graph.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg"}

var allowedMIMETypes = []string{"image/png", "image/jpeg"}

// Image is a graph image selected for upload.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewImage validates data by content sniffing and wraps it for upload.
func NewImage(name string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnsupportedImage, name)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedMIMETypes...) {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, name, mt.String())
	}

	return &Image{
		Name:     name,
		MIMEType: mt.String(),
		Data:     data,
	}, nil
}

// LoadImage reads and validates an image from disk.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	return NewImage(filepath.Base(path), data)
}

// HasAllowedExtension reports whether name looks like a PNG or JPEG file.
func HasAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}
