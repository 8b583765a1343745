package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF stages every page as a file in a work folder and imports them as
// one PDF page each when finalized.
type PDF struct {
	dir       string
	keep      bool
	files     []string
	finalized bool
}

// NewPDF creates a "_tmp" work folder inside parent so interrupted runs
// can be cleaned up.
func NewPDF(parent string, keep bool) (*PDF, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder: %w", err)
	}

	dir, err := os.MkdirTemp(parent, "pagegrab-*_tmp")
	if err != nil {
		return nil, fmt.Errorf("cannot create work folder: %w", err)
	}

	return &PDF{dir: dir, keep: keep}, nil
}

func (p *PDF) Dir() string { return p.dir }

func (p *PDF) Add(name string, data []byte) error {
	if p.finalized {
		return ErrFinalized
	}

	path := filepath.Join(p.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	p.files = append(p.files, path)
	return nil
}

func (p *PDF) Finalize() ([]byte, error) {
	if p.finalized {
		return nil, ErrFinalized
	}
	p.finalized = true

	if !p.keep {
		defer func() {
			_ = os.RemoveAll(p.dir)
		}()
	}

	if len(p.files) == 0 {
		return nil, fmt.Errorf("pdf: no pages to import")
	}

	files := append([]string(nil), p.files...)
	sort.Strings(files)

	out := filepath.Join(p.dir, "pages.pdf")
	conf := model.NewDefaultConfiguration()

	if err := api.ImportImagesFile(files, out, nil, conf); err != nil {
		return nil, fmt.Errorf("pdf: import images: %w", err)
	}

	count, err := api.PageCountFile(out)
	if err != nil {
		return nil, fmt.Errorf("pdf: count pages: %w", err)
	}
	if count != len(files) {
		return nil, fmt.Errorf("pdf: expected %d pages, got %d", len(files), count)
	}

	return os.ReadFile(out)
}

func (p *PDF) Extension() string { return ".pdf" }

func (p *PDF) Len() int { return len(p.files) }
