// Package archive bundles page images into a single downloadable file.
package archive

import (
	"errors"
	"fmt"
	"strings"
)

var ErrFinalized = errors.New("archive already finalized")

// Archive collects named entries and produces the final file once. Add
// returns only after the entry is fully stored.
type Archive interface {
	Add(name string, data []byte) error
	Finalize() ([]byte, error)
	Extension() string
	Len() int
}

const (
	KindZip = "zip"
	KindCBZ = "cbz"
	KindPDF = "pdf"
)

type Options struct {
	Kind string

	// Deflate compresses zip/cbz entries instead of storing them.
	Deflate bool

	// WorkDir is where the PDF builder stages page files.
	WorkDir     string
	KeepFolders bool
}

func New(opts Options) (Archive, error) {
	switch strings.ToLower(opts.Kind) {
	case "", KindZip:
		return NewZip(".zip", opts.Deflate), nil
	case KindCBZ:
		return NewZip(".cbz", opts.Deflate), nil
	case KindPDF:
		return NewPDF(opts.WorkDir, opts.KeepFolders)
	default:
		return nil, fmt.Errorf("unknown archive kind %q (use zip, cbz or pdf)", opts.Kind)
	}
}
