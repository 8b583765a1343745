package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brogergvhs/pagegrab/internal/archive"
	"github.com/brogergvhs/pagegrab/internal/host/fakehost"
	"github.com/brogergvhs/pagegrab/internal/imaging"
	"github.com/brogergvhs/pagegrab/internal/pages"
	"github.com/brogergvhs/pagegrab/internal/ui"
)

type saved struct {
	name string
	data []byte
}

type memSink struct {
	mu    sync.Mutex
	saves []saved
}

func (s *memSink) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, saved{name: name, data: append([]byte(nil), data...)})
	return nil
}

func (s *memSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.saves))
	for i, sv := range s.saves {
		out[i] = sv.name
	}
	return out
}

type countingProgress struct {
	total, done int
	marked      bool
}

func (p *countingProgress) SetTotal(total int) {
	p.total = total
}

func (p *countingProgress) Update(done, total int, _ int64) {
	p.done = done
}

func (p *countingProgress) MarkDone() {
	p.marked = true
}

// viewer builds a host with the given number of advertised pages and
// surfaces; surfaces may be fewer to simulate a short document.
func viewer(advertised, surfaces int) *fakehost.Host {
	h := fakehost.New()
	layout := pages.DefaultLayout()

	container := h.Add("container").WithText(fmt.Sprintf("/ %d", advertised))
	h.Add(layout.PageCountID).WithParent(container)
	h.AddPages(layout.SurfacePrefix, surfaces, layout.ReadyAttr, layout.ReadyValue)

	return h
}

func newDownloader(h *fakehost.Host, sink Sink, p Progress) *Downloader {
	cfg := Config{
		Layout:       pages.DefaultLayout(),
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	}
	return New(h, sink, cfg, ui.Discard(), p)
}

func TestDownloadPages_FullRange(t *testing.T) {
	h := viewer(4, 4)
	sink := &memSink{}
	p := &countingProgress{}

	res, err := newDownloader(h, sink, p).DownloadPages(context.Background(), SingleImageDefaults())
	if err != nil {
		t.Fatalf("DownloadPages failed: %v", err)
	}

	want := []string{"page001.jpg", "page002.jpg", "page003.jpg", "page004.jpg"}
	got := sink.names()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected saves %v, got %v", want, got)
	}
	if len(res.Pages) != 4 || res.Bytes == 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if string(sink.saves[2].data) != "page-3" {
		t.Errorf("page 3 saved with wrong content %q", sink.saves[2].data)
	}
	if p.total != 4 || p.done != 4 || !p.marked {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestDownloadPages_ZeroOptionsUseDefaults(t *testing.T) {
	h := viewer(2, 2)
	sink := &memSink{}

	if _, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), Options{}); err != nil {
		t.Fatalf("DownloadPages failed: %v", err)
	}

	want := []string{"page001.jpg", "page002.jpg"}
	if fmt.Sprint(sink.names()) != fmt.Sprint(want) {
		t.Errorf("expected saves %v, got %v", want, sink.names())
	}

	wantFormats := []string{"image/jpeg@0.90", "image/jpeg@0.90"}
	if fmt.Sprint(h.CaptureFormats()) != fmt.Sprint(wantFormats) {
		t.Errorf("expected formats %v, got %v", wantFormats, h.CaptureFormats())
	}
}

func TestDownloadPagesArchive_ZeroOptionsUseDefaults(t *testing.T) {
	h := viewer(2, 2)
	a := archive.NewZip(".zip", false)

	if _, err := newDownloader(h, &memSink{}, nil).DownloadPagesArchive(context.Background(), Options{}, a, "book"); err != nil {
		t.Fatalf("DownloadPagesArchive failed: %v", err)
	}

	wantFormats := []string{"image/png@0.00", "image/png@0.00"}
	if fmt.Sprint(h.CaptureFormats()) != fmt.Sprint(wantFormats) {
		t.Errorf("expected formats %v, got %v", wantFormats, h.CaptureFormats())
	}
}

func TestOptions_WithFormat(t *testing.T) {
	opts := ArchiveDefaults().WithFormat("jpg")

	if opts.Format != "jpg" || opts.Quality != DefaultQuality {
		t.Errorf("expected jpg at %v, got %s at %v", DefaultQuality, opts.Format, opts.Quality)
	}
	if opts.ImageNamePrefix != imaging.DefaultPrefix {
		t.Errorf("prefix should be kept, got %q", opts.ImageNamePrefix)
	}
}

func TestDownloadPages_SubRangeInOrder(t *testing.T) {
	h := viewer(10, 10)
	sink := &memSink{}

	opts := SingleImageDefaults()
	opts.FromPage = 3
	opts.ToPage = 6
	opts.ImageNamePrefix = "img"

	if _, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), opts); err != nil {
		t.Fatalf("DownloadPages failed: %v", err)
	}

	want := []string{"img003.jpg", "img004.jpg", "img005.jpg", "img006.jpg"}
	if fmt.Sprint(sink.names()) != fmt.Sprint(want) {
		t.Errorf("expected saves %v, got %v", want, sink.names())
	}

	wantCaptures := []string{"page_3", "page_4", "page_5", "page_6"}
	if fmt.Sprint(h.Captures()) != fmt.Sprint(wantCaptures) {
		t.Errorf("expected captures %v, got %v", wantCaptures, h.Captures())
	}
}

func TestDownloadPages_StopsAtLastSurface(t *testing.T) {
	h := viewer(3, 3)
	sink := &memSink{}

	opts := SingleImageDefaults()
	opts.ToPage = 8

	res, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), opts)
	if err != nil {
		t.Fatalf("expected early stop without error, got %v", err)
	}
	if len(sink.saves) != 3 || len(res.Pages) != 3 {
		t.Errorf("expected 3 pages, got %d saves and %v", len(sink.saves), res.Pages)
	}
}

func TestDownloadPages_LogsLastSavedPage(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Layout:       pages.DefaultLayout(),
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	}
	d := New(viewer(3, 3), &memSink{}, cfg, &ui.Logger{Out: &buf}, nil)

	opts := SingleImageDefaults()
	opts.ToPage = 8

	if _, err := d.DownloadPages(context.Background(), opts); err != nil {
		t.Fatalf("DownloadPages failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Finished pages 1-3") {
		t.Errorf("expected the last saved page in the log, got %q", buf.String())
	}
}

func TestDownloadPages_UnsupportedFormatBeforeAnyWork(t *testing.T) {
	h := viewer(2, 2)
	btn := h.Add("continueButton")
	sink := &memSink{}

	opts := SingleImageDefaults()
	opts.Format = "bmp"

	_, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), opts)
	if !errors.Is(err, imaging.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if btn.Clicks != 0 || len(sink.saves) != 0 || len(h.Captures()) != 0 {
		t.Errorf("expected no host interaction, got clicks=%d saves=%d captures=%d",
			btn.Clicks, len(sink.saves), len(h.Captures()))
	}
}

func TestDownloadPages_MissingSurfaceAfterReveal(t *testing.T) {
	h := viewer(5, 4)
	sink := &memSink{}

	_, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), SingleImageDefaults())

	var me *pages.MissingPageSurfaceError
	if !errors.As(err, &me) || me.Page != 5 {
		t.Fatalf("expected MissingPageSurfaceError for page 5, got %v", err)
	}
	if len(sink.saves) != 0 {
		t.Errorf("expected no saves, got %d", len(sink.saves))
	}
}

func TestDownloadPages_InvalidRange(t *testing.T) {
	opts := SingleImageDefaults()
	opts.FromPage = 5
	opts.ToPage = 2

	_, err := newDownloader(viewer(6, 6), &memSink{}, nil).DownloadPages(context.Background(), opts)
	if !errors.Is(err, pages.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDownloadPages_WaitsForSlowPages(t *testing.T) {
	h := viewer(2, 0)
	layout := pages.DefaultLayout()
	for i := 1; i <= 2; i++ {
		h.Add(layout.SurfaceID(i)).
			WithData([]byte(fmt.Sprintf("slow-%d", i))).
			ReadyAfter(layout.ReadyAttr, layout.ReadyValue, 4)
	}

	sink := &memSink{}
	if _, err := newDownloader(h, sink, nil).DownloadPages(context.Background(), SingleImageDefaults()); err != nil {
		t.Fatalf("DownloadPages failed: %v", err)
	}
	if len(sink.saves) != 2 {
		t.Errorf("expected 2 saves, got %d", len(sink.saves))
	}
}

func TestDownloadPages_PageTimeout(t *testing.T) {
	h := viewer(1, 0)
	layout := pages.DefaultLayout()
	h.Add(layout.SurfaceID(1)).
		WithData([]byte("never")).
		ReadyAfter(layout.ReadyAttr, layout.ReadyValue, 1<<30)

	d := New(h, &memSink{}, Config{
		Layout:       layout,
		PollInterval: time.Millisecond,
		PollTimeout:  3 * time.Millisecond,
	}, ui.Discard(), nil)

	_, err := d.DownloadPages(context.Background(), SingleImageDefaults())
	if !errors.Is(err, pages.ErrPageLoadTimeout) {
		t.Fatalf("expected ErrPageLoadTimeout, got %v", err)
	}
}

func TestDownloadPagesArchive(t *testing.T) {
	h := viewer(5, 5)
	h.AddSelector("h1").WithAttr("title", "Field Guide: Birds")
	sink := &memSink{}

	opts := ArchiveDefaults()
	opts.FromPage = 2
	opts.ToPage = 4

	res, err := newDownloader(h, sink, nil).DownloadPagesArchive(context.Background(), opts, archive.NewZip(".zip", false), "")
	if err != nil {
		t.Fatalf("DownloadPagesArchive failed: %v", err)
	}

	if len(sink.saves) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(sink.saves))
	}
	if sink.saves[0].name != "Field Guide Birds.zip" {
		t.Errorf("unexpected archive name %q", sink.saves[0].name)
	}
	if len(res.Pages) != 3 {
		t.Errorf("expected 3 pages, got %v", res.Pages)
	}

	data := sink.saves[0].data
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("saved archive is not a zip: %v", err)
	}

	want := []string{"page002.png", "page003.png", "page004.png"}
	if len(r.File) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(r.File))
	}
	for i, f := range r.File {
		if f.Name != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], f.Name)
		}

		rc, _ := f.Open()
		b, _ := io.ReadAll(rc)
		_ = rc.Close()
		if string(b) != fmt.Sprintf("page-%d", i+2) {
			t.Errorf("entry %s has content %q", f.Name, b)
		}
	}
}

func TestDownloadPagesArchive_FallbackName(t *testing.T) {
	sink := &memSink{}

	_, err := newDownloader(viewer(1, 1), sink, nil).
		DownloadPagesArchive(context.Background(), ArchiveDefaults(), archive.NewZip(".cbz", false), "")
	if err != nil {
		t.Fatalf("DownloadPagesArchive failed: %v", err)
	}
	if sink.saves[0].name != "pages.cbz" {
		t.Errorf("expected pages.cbz, got %q", sink.saves[0].name)
	}
}

func TestDownloadPagesArchive_NoSaveOnFailure(t *testing.T) {
	h := viewer(3, 3)
	h.Add("page_2").ReadyAfter("lz", "1", 0) // no content to capture
	sink := &memSink{}

	_, err := newDownloader(h, sink, nil).
		DownloadPagesArchive(context.Background(), ArchiveDefaults(), archive.NewZip(".zip", false), "out")
	if err == nil {
		t.Fatal("expected capture failure")
	}
	if len(sink.saves) != 0 {
		t.Errorf("expected no archive saved, got %v", sink.names())
	}
}

func TestPreloadAll(t *testing.T) {
	h := viewer(3, 3)
	p := &countingProgress{}

	if err := newDownloader(h, &memSink{}, p).PreloadAll(context.Background()); err != nil {
		t.Fatalf("PreloadAll failed: %v", err)
	}
	if len(h.Captures()) != 0 {
		t.Errorf("expected no captures while preloading, got %v", h.Captures())
	}
	if p.done != 3 || !p.marked {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName("", "Report/2024", ".zip"); got != "Report2024.zip" {
		t.Errorf("unexpected name %q", got)
	}
	if got := ArchiveName("custom", "ignored", ".pdf"); got != "custom.pdf" {
		t.Errorf("unexpected name %q", got)
	}
	if got := ArchiveName("", "", ".zip"); got != "pages.zip" {
		t.Errorf("unexpected name %q", got)
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}

	if err := sink.Save(context.Background(), "page001.jpg", []byte("jpeg")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "page001.jpg"))
	if err != nil || string(b) != "jpeg" {
		t.Errorf("expected saved file, got %q err=%v", b, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}
}
