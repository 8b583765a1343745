package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestFilenameFor(t *testing.T) {
	if got := FilenameFor(7, ""); got != "page007" {
		t.Errorf("FilenameFor(7) = %q, want page007", got)
	}
	if got := FilenameFor(42, "img"); got != "img042" {
		t.Errorf("FilenameFor(42, img) = %q, want img042", got)
	}
	if got := FilenameFor(1234, "p"); got != "p1234" {
		t.Errorf("FilenameFor(1234, p) = %q, want p1234", got)
	}
}

func TestResolveFormat(t *testing.T) {
	f, err := ResolveFormat("PNG", 0.5)
	if err != nil {
		t.Fatalf("ResolveFormat(PNG) failed: %v", err)
	}
	if f.MIMEType != "image/png" || f.Extension != ".png" || f.Lossy {
		t.Errorf("unexpected PNG format: %+v", f)
	}

	for _, name := range []string{"jpg", "JPEG", " jpeg ", "", "  "} {
		f, err := ResolveFormat(name, 0.9)
		if err != nil {
			t.Fatalf("ResolveFormat(%q) failed: %v", name, err)
		}
		if f.MIMEType != "image/jpeg" || f.Extension != ".jpg" || f.Quality != 0.9 || !f.Lossy {
			t.Errorf("unexpected JPEG format for %q: %+v", name, f)
		}
	}
}

func TestResolveFormat_Errors(t *testing.T) {
	_, err := ResolveFormat("bmp", 0.9)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for bmp, got %v", err)
	}

	var ue *UnsupportedFormatError
	if !errors.As(err, &ue) || ue.Format != "bmp" {
		t.Errorf("expected UnsupportedFormatError naming bmp, got %#v", err)
	}

	if _, err := ResolveFormat("", 1.5); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("expected ErrInvalidQuality for the default format, got %v", err)
	}

	if _, err := ResolveFormat("jpg", 1.5); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("expected ErrInvalidQuality, got %v", err)
	}
}

type stubSurface struct {
	data    []byte
	mime    string
	quality float64
}

func (s *stubSurface) Capture(_ context.Context, mimeType string, quality float64) ([]byte, error) {
	s.mime = mimeType
	s.quality = quality
	return s.data, nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestEncode_PassesFormatToSurface(t *testing.T) {
	s := &stubSurface{data: []byte("raw")}
	enc := &Encoder{}

	pngFormat, _ := ResolveFormat("png", 0.7)
	out, err := enc.Encode(context.Background(), s, pngFormat)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(out) != "raw" {
		t.Errorf("expected captured bytes unchanged, got %q", out)
	}
	if s.mime != "image/png" || s.quality != 0 {
		t.Errorf("expected png capture without quality, got %s %v", s.mime, s.quality)
	}

	jpgFormat, _ := ResolveFormat("jpg", 0.8)
	if _, err := enc.Encode(context.Background(), s, jpgFormat); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if s.mime != "image/jpeg" || s.quality != 0.8 {
		t.Errorf("expected jpeg capture at 0.8, got %s %v", s.mime, s.quality)
	}
}

func TestEncode_MaxWidth(t *testing.T) {
	s := &stubSurface{data: testPNG(t, 200, 100)}
	enc := &Encoder{MaxWidth: 50}

	f, _ := ResolveFormat("jpg", 0.9)
	out, err := enc.Encode(context.Background(), s, f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Errorf("expected 50x25, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestTranscode_KeepsNarrowImages(t *testing.T) {
	out, err := Transcode(testPNG(t, 40, 30), MIMEPNG, 0, 100)
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("expected 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestTranscode_Garbage(t *testing.T) {
	if _, err := Transcode([]byte("not an image"), MIMEPNG, 0, 0); err == nil {
		t.Error("expected decode error")
	}
}
