package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Surface is anything that can render itself into encoded image bytes.
type Surface interface {
	Capture(ctx context.Context, mimeType string, quality float64) ([]byte, error)
}

type Encoder struct {
	// MaxWidth downscales wider pages when positive.
	MaxWidth int
}

func (e *Encoder) Encode(ctx context.Context, s Surface, f Format) ([]byte, error) {
	quality := f.Quality
	if !f.Lossy {
		quality = 0
	}

	data, err := s.Capture(ctx, f.MIMEType, quality)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	if e.MaxWidth <= 0 {
		return data, nil
	}

	return Transcode(data, f.MIMEType, quality, e.MaxWidth)
}

// Transcode decodes JPEG, PNG, GIF or WebP data and re-encodes it as
// mimeType, scaling it down to maxWidth when positive.
func Transcode(data []byte, mimeType string, quality float64, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = scaleToWidth(img, maxWidth)
	}

	var buf bytes.Buffer
	switch mimeType {
	case MIMEJPEG:
		q := int(quality*100 + 0.5)
		if q < 1 {
			q = 1
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case MIMEPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, &UnsupportedFormatError{Format: mimeType}
	}

	return buf.Bytes(), nil
}

func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	return dst
}
