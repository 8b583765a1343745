package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type Zip struct {
	buf       bytes.Buffer
	w         *zip.Writer
	method    uint16
	ext       string
	entries   int
	finalized bool
}

func NewZip(ext string, deflate bool) *Zip {
	z := &Zip{ext: ext, method: zip.Store}
	if deflate {
		z.method = zip.Deflate
	}
	z.w = zip.NewWriter(&z.buf)

	return z
}

func (z *Zip) Add(name string, data []byte) error {
	if z.finalized {
		return ErrFinalized
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   z.method,
		Modified: time.Now(),
	}

	w, err := z.w.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}

	z.entries++
	return nil
}

func (z *Zip) Finalize() ([]byte, error) {
	if z.finalized {
		return nil, ErrFinalized
	}
	z.finalized = true

	if err := z.w.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	return z.buf.Bytes(), nil
}

func (z *Zip) Extension() string { return z.ext }

func (z *Zip) Len() int { return z.entries }
