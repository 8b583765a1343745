package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/pagegrab/internal/archive"
	"github.com/brogergvhs/pagegrab/internal/host"
	"github.com/brogergvhs/pagegrab/internal/imaging"
	"github.com/brogergvhs/pagegrab/internal/pages"
	"github.com/brogergvhs/pagegrab/internal/util"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// Progress is satisfied by ui.ProgressHandle.
type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

// Options selects what to download. Zero page bounds mean the first and
// last page of the document.
type Options struct {
	Format          string
	Quality         float64
	FromPage        int
	ToPage          int
	ImageNamePrefix string
}

// DefaultQuality applies to lossy formats chosen without a quality.
const DefaultQuality = 0.9

// SingleImageDefaults are the defaults of DownloadPages.
func SingleImageDefaults() Options {
	return Options{Format: imaging.DefaultFormat, Quality: DefaultQuality, ImageNamePrefix: imaging.DefaultPrefix}
}

// ArchiveDefaults are the defaults of DownloadPagesArchive.
func ArchiveDefaults() Options {
	return Options{Format: "png", Quality: 1.0, ImageNamePrefix: imaging.DefaultPrefix}
}

// WithFormat switches to another format. The quality of the previous
// format does not carry over.
func (o Options) WithFormat(name string) Options {
	o.Format = name
	o.Quality = DefaultQuality
	return o
}

// orDefaults fills an unset format (and its quality) and prefix from def.
func (o Options) orDefaults(def Options) Options {
	if o.Format == "" {
		o.Format = def.Format
		if o.Quality == 0 {
			o.Quality = def.Quality
		}
	}
	if o.ImageNamePrefix == "" {
		o.ImageNamePrefix = def.ImageNamePrefix
	}
	return o
}

type Config struct {
	Layout            pages.Layout
	PollInterval      time.Duration
	PollTimeout       time.Duration
	MaxContinueClicks int
	MaxWidth          int
}

type Result struct {
	Pages []int
	Files []string
	Bytes int64
}

type Downloader struct {
	loc      *pages.Locator
	revealer *pages.Revealer
	loader   *pages.Loader
	encoder  *imaging.Encoder
	sink     Sink
	log      Logger
	progress Progress
}

func New(h host.Host, sink Sink, cfg Config, log Logger, progress Progress) *Downloader {
	loc := pages.NewLocator(h, cfg.Layout)

	return &Downloader{
		loc:      loc,
		revealer: pages.NewRevealer(loc, cfg.MaxContinueClicks, log),
		loader:   pages.NewLoader(loc.Layout(), cfg.PollInterval, cfg.PollTimeout, log),
		encoder:  &imaging.Encoder{MaxWidth: cfg.MaxWidth},
		sink:     sink,
		log:      log,
		progress: progress,
	}
}

func (d *Downloader) Locator() *pages.Locator {
	return d.loc
}

// DownloadPages saves every page of the range as its own image file, one
// page at a time. An empty format means jpg at DefaultQuality.
func (d *Downloader) DownloadPages(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	opts = opts.orDefaults(SingleImageDefaults())

	err := d.eachPage(ctx, opts, func(pageNo int, name string, data []byte) error {
		if err := d.sink.Save(ctx, name, data); err != nil {
			return err
		}

		res.Files = append(res.Files, name)
		d.log.Debugf("Downloaded page #%d as %s\n", pageNo, name)
		return nil
	}, res)

	return res, err
}

// DownloadPagesArchive adds every page of the range to a, then saves the
// finalized archive once as name (the document title when empty). An
// empty format means png.
func (d *Downloader) DownloadPagesArchive(ctx context.Context, opts Options, a archive.Archive, name string) (*Result, error) {
	res := &Result{}
	opts = opts.orDefaults(ArchiveDefaults())

	err := d.eachPage(ctx, opts, func(pageNo int, entry string, data []byte) error {
		if err := a.Add(entry, data); err != nil {
			return err
		}

		d.log.Debugf("Added page #%d to archive\n", pageNo)
		return nil
	}, res)
	if err != nil {
		return res, err
	}

	data, err := a.Finalize()
	if err != nil {
		return res, fmt.Errorf("finalize archive: %w", err)
	}

	out := ArchiveName(name, d.loc.Title(ctx), a.Extension())
	if err := d.sink.Save(ctx, out, data); err != nil {
		return res, err
	}

	res.Files = append(res.Files, out)
	d.log.Infof("Saved %s (%d pages, %s)\n", out, a.Len(), util.Human(int64(len(data))))

	return res, nil
}

// ArchiveName picks the archive file name from an explicit name or the
// document title.
func ArchiveName(explicit, title, ext string) string {
	base := explicit
	if base == "" {
		base = title
	}

	return util.SanitizeFilename(base, pages.DefaultTitle) + ext
}

// PreloadAll reveals every placeholder and waits until each page has
// rendered, without saving anything.
func (d *Downloader) PreloadAll(ctx context.Context) error {
	if err := d.revealer.RevealAllPlaceholders(ctx); err != nil {
		return err
	}

	count, err := d.loc.TotalPageCount(ctx)
	if err != nil {
		return err
	}

	if d.progress != nil {
		d.progress.SetTotal(count)
		defer d.progress.MarkDone()
	}

	for pageNo := 1; pageNo <= count; pageNo++ {
		surface, ok, err := d.loc.PageSurface(ctx, pageNo)
		if err != nil {
			return err
		}
		if !ok {
			return &pages.MissingPageSurfaceError{Page: pageNo}
		}

		if err := d.loader.AwaitPageReady(ctx, pageNo, surface); err != nil {
			return err
		}

		if d.progress != nil {
			d.progress.Update(pageNo, count, 0)
		}
	}

	d.log.Infof("Finished preloading %d pages\n", count)
	return nil
}

type pageFunc func(pageNo int, name string, data []byte) error

func (d *Downloader) eachPage(ctx context.Context, opts Options, fn pageFunc, res *Result) error {
	format, err := imaging.ResolveFormat(opts.Format, opts.Quality)
	if err != nil {
		return err
	}

	rng := pages.Range{From: opts.FromPage, To: opts.ToPage}
	if err := rng.Validate(); err != nil {
		return err
	}

	if err := d.revealer.RevealAllPlaceholders(ctx); err != nil {
		return err
	}

	from := rng.From
	if from == 0 {
		from = 1
	}

	to := rng.To
	if to == 0 {
		if to, err = d.loc.TotalPageCount(ctx); err != nil {
			return err
		}
	}

	total := to - from + 1
	if total < 0 {
		total = 0
	}

	if d.progress != nil {
		d.progress.SetTotal(total)
		defer d.progress.MarkDone()
	}

	for pageNo := from; pageNo <= to; pageNo++ {
		surface, ok, err := d.loc.PageSurface(ctx, pageNo)
		if err != nil {
			return err
		}
		if !ok {
			d.log.Infof("Page #%d does not exist, stopping after page #%d\n", pageNo, pageNo-1)
			break
		}

		if err := d.loader.AwaitPageReady(ctx, pageNo, surface); err != nil {
			return err
		}

		data, err := d.encoder.Encode(ctx, surface, format)
		if err != nil {
			return fmt.Errorf("encode page #%d: %w", pageNo, err)
		}

		name := imaging.FilenameFor(pageNo, opts.ImageNamePrefix) + format.Extension
		if err := fn(pageNo, name, data); err != nil {
			return fmt.Errorf("page #%d: %w", pageNo, err)
		}

		res.Pages = append(res.Pages, pageNo)
		res.Bytes += int64(len(data))

		if d.progress != nil {
			d.progress.Update(len(res.Pages), total, res.Bytes)
		}
	}

	if len(res.Pages) == 0 {
		d.log.Infof("No pages processed from page #%d\n", from)
		return nil
	}

	d.log.Infof("Finished pages %d-%d\n", from, res.Pages[len(res.Pages)-1])
	return nil
}
