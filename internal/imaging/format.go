// Package imaging turns page surfaces into encoded image files.
package imaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"

	DefaultPrefix = "page"
	DefaultFormat = "jpg"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidQuality    = errors.New("quality must be between 0 and 1")
)

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unknown image format %q (use jpg, jpeg or png)", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// Format describes how a page is encoded. Quality is only meaningful when
// Lossy is set.
type Format struct {
	MIMEType  string
	Extension string
	Quality   float64
	Lossy     bool
}

// ResolveFormat maps a format name to its encoding. An empty name is
// DefaultFormat.
func ResolveFormat(name string, quality float64) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jpg", "jpeg":
		if quality < 0 || quality > 1 {
			return Format{}, fmt.Errorf("%w: %v", ErrInvalidQuality, quality)
		}
		return Format{
			MIMEType:  MIMEJPEG,
			Extension: ".jpg",
			Quality:   quality,
			Lossy:     true,
		}, nil
	case "png":
		return Format{
			MIMEType:  MIMEPNG,
			Extension: ".png",
		}, nil
	default:
		return Format{}, &UnsupportedFormatError{Format: name}
	}
}

// FilenameFor names a page image without its extension: the prefix
// followed by the page number padded to three digits.
func FilenameFor(pageNo int, prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return fmt.Sprintf("%s%03d", prefix, pageNo)
}
