package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"testing"
)

func TestZip_StoresEntries(t *testing.T) {
	z := NewZip(".zip", false)

	entries := map[string]string{
		"page001.png": "first",
		"page002.png": "second",
		"page003.png": "third",
	}
	for _, name := range []string{"page001.png", "page002.png", "page003.png"} {
		if err := z.Add(name, []byte(entries[name])); err != nil {
			t.Fatalf("Add(%s) failed: %v", name, err)
		}
	}

	if z.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", z.Len())
	}

	data, err := z.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("result is not a zip: %v", err)
	}
	if len(r.File) != 3 {
		t.Fatalf("expected 3 files in zip, got %d", len(r.File))
	}

	for i, f := range r.File {
		if f.Method != zip.Store {
			t.Errorf("entry %s: expected stored entry, got method %d", f.Name, f.Method)
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		_ = rc.Close()

		if string(b) != entries[f.Name] {
			t.Errorf("entry %d (%s): got %q", i, f.Name, b)
		}
	}
}

func TestZip_Deflate(t *testing.T) {
	z := NewZip(".cbz", true)
	if err := z.Add("page001.jpg", bytes.Repeat([]byte("a"), 1024)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	data, err := z.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("result is not a zip: %v", err)
	}
	if r.File[0].Method != zip.Deflate {
		t.Errorf("expected deflated entry, got method %d", r.File[0].Method)
	}
	if z.Extension() != ".cbz" {
		t.Errorf("expected .cbz extension, got %s", z.Extension())
	}
}

func TestZip_FinalizeOnce(t *testing.T) {
	z := NewZip(".zip", false)
	if _, err := z.Finalize(); err != nil {
		t.Fatalf("Finalize of empty archive failed: %v", err)
	}

	if _, err := z.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized on second Finalize, got %v", err)
	}
	if err := z.Add("late.png", nil); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized on Add after Finalize, got %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		ext  string
	}{
		{"", ".zip"},
		{"zip", ".zip"},
		{"CBZ", ".cbz"},
	}

	for _, tt := range tests {
		a, err := New(Options{Kind: tt.kind})
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.kind, err)
		}
		if a.Extension() != tt.ext {
			t.Errorf("New(%q): expected %s, got %s", tt.kind, tt.ext, a.Extension())
		}
	}

	if _, err := New(Options{Kind: "rar"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func pngPage(t *testing.T, shade uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 20, 30))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	img.Set(0, 0, color.Gray{Y: 255 - shade})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestPDF(t *testing.T) {
	parent := t.TempDir()

	a, err := New(Options{Kind: KindPDF, WorkDir: parent})
	if err != nil {
		t.Fatalf("New(pdf) failed: %v", err)
	}
	p := a.(*PDF)

	for i, name := range []string{"page001.png", "page002.png"} {
		if err := p.Add(name, pngPage(t, uint8(40*i))); err != nil {
			t.Fatalf("Add(%s) failed: %v", name, err)
		}
	}

	data, err := p.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", data[:8])
	}

	if _, err := os.Stat(p.Dir()); !os.IsNotExist(err) {
		t.Errorf("expected work folder removed, stat err=%v", err)
	}
}

func TestPDF_Empty(t *testing.T) {
	p, err := NewPDF(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewPDF failed: %v", err)
	}

	if _, err := p.Finalize(); err == nil {
		t.Error("expected error for PDF without pages")
	}
}
