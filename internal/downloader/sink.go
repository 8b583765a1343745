package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives finished files, one call per download action.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// DirSink saves files into a folder. Each file is written to a temporary
// sibling first and renamed into place, so a partial file never carries
// the final name.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder: %w", err)
	}

	return &DirSink{Dir: dir}, nil
}

func (s *DirSink) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

func (s *DirSink) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	final := s.Path(name)

	tmp, err := os.CreateTemp(s.Dir, "."+filepath.Base(name)+".part-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	return nil
}
