package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/pagegrab/internal/config"
	"github.com/brogergvhs/pagegrab/internal/downloader"
	"github.com/brogergvhs/pagegrab/internal/host"
	"github.com/brogergvhs/pagegrab/internal/host/browser"
	"github.com/brogergvhs/pagegrab/internal/host/static"
	"github.com/brogergvhs/pagegrab/internal/pages"
	"github.com/brogergvhs/pagegrab/internal/ui"
	"github.com/brogergvhs/pagegrab/internal/util"

	"github.com/spf13/cobra"
)

// sourceFlags are shared by every command that opens a document.
type sourceFlags struct {
	// selection
	url    string
	engine string

	// output
	output      string
	format      string
	quality     float64
	prefix      string
	rangeSpec   string
	maxWidth    int
	keepFolders bool

	// headers/auth
	cookie     string
	cookieFile string
	userAgent  string

	// browser
	showBrowser bool
	browserBin  string
	controlURL  string
	noSandbox   bool
	pollTimeout time.Duration
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()

	fl.StringVar(&f.url, "url", "", "document viewer URL")
	fl.StringVar(&f.engine, "engine", "", "page host: browser (Chrome via DevTools) or static (HTML snapshot)")

	fl.StringVar(&f.output, "output", "", "output folder")
	fl.StringVar(&f.format, "format", "", "image format: jpg or png")
	fl.Float64Var(&f.quality, "quality", 0, "JPEG quality between 0 and 1")
	fl.StringVar(&f.prefix, "prefix", "", "image file name prefix")
	fl.StringVar(&f.rangeSpec, "range", "", "page range (e.g. 5-12, 5-, -12 or 7)")
	fl.IntVar(&f.maxWidth, "max-width", 0, "downscale pages wider than this many pixels")
	fl.BoolVar(&f.keepFolders, "keep-folders", false, "keep temporary work folders")

	fl.StringVar(&f.cookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	fl.StringVar(&f.cookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	fl.StringVar(&f.userAgent, "user-agent", "", "override User-Agent")

	fl.BoolVar(&f.showBrowser, "show-browser", false, "run Chrome with a visible window")
	fl.StringVar(&f.browserBin, "browser-bin", "", "path to the Chrome/Chromium binary")
	fl.StringVar(&f.controlURL, "control-url", "", "attach to a running Chrome (DevTools websocket URL)")
	fl.BoolVar(&f.noSandbox, "no-sandbox", false, "launch Chrome without its sandbox")
	fl.DurationVar(&f.pollTimeout, "poll-timeout", 0, "give up on a page that has not rendered after this long")
}

func (f *sourceFlags) options(cmd *cobra.Command) config.Options {
	opts := config.Options{
		IgnoreConfig:    flagIgnoreConfig,
		Debug:           flagDebug,
		Output:          f.output,
		Engine:          f.engine,
		URL:             f.url,
		Format:          f.format,
		ImageNamePrefix: f.prefix,
		Range:           f.rangeSpec,
		MaxWidth:        f.maxWidth,
		KeepFolders:     f.keepFolders,
		Cookie:          f.cookie,
		CookieFile:      f.cookieFile,
		UserAgent:       f.userAgent,
		ShowBrowser:     f.showBrowser,
		BrowserBin:      f.browserBin,
		ControlURL:      f.controlURL,
		NoSandbox:       f.noSandbox,
		PollTimeout:     f.pollTimeout,
	}

	if cmd.Flags().Changed("quality") {
		q := f.quality
		opts.Quality = &q
	}

	return opts
}

type session struct {
	cfg   *config.Config
	log   *ui.Logger
	host  host.Host
	sink  *downloader.DirSink
	pm    *ui.MPBProgressManager
	bar   *ui.ProgressHandle
	stats *ui.Stats
	start time.Time

	closeHost func()
}

// openSession loads the merged config and opens the document with the
// configured engine.
func openSession(ctx context.Context, cfgOpts config.Options) (*session, error) {
	cfg, usedPath, err := config.LoadMerged(cfgOpts)
	if err != nil {
		return nil, err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("missing --url and no url in config")
	}

	sink, err := downloader.NewDirSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	s := &session{
		cfg:       cfg,
		log:       logSvc,
		sink:      sink,
		stats:     &ui.Stats{},
		start:     time.Now(),
		closeHost: func() {},
	}

	switch cfg.Engine {
	case config.EngineStatic:
		err = s.openStatic(ctx)
	default:
		err = s.openBrowser(ctx)
	}
	if err != nil {
		return nil, err
	}

	util.SetupInterruptHandler(cfg.Output, s.closeHost)
	return s, nil
}

func (s *session) openStatic(ctx context.Context) error {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          30 * time.Second,
		UserAgent:        util.PickUserAgent(s.cfg.UserAgent),
		Cookie:           s.cfg.Cookie,
		CookieFile:       s.cfg.CookieFile,
		DebugLogger:      s.log,
		CloudflareBypass: true,
	})
	if err != nil {
		return err
	}

	s.log.Debugf("Fetching %s\n", s.cfg.URL)

	h, err := static.Load(ctx, client, s.cfg.URL, static.Options{
		ReadyAttr:  s.cfg.Layout.ReadyAttr,
		ReadyValue: s.cfg.Layout.ReadyValue,
	})
	if err != nil {
		return err
	}

	s.host = h
	return nil
}

func (s *session) openBrowser(ctx context.Context) error {
	if s.cfg.ControlURL != "" {
		s.log.Infof("Attaching to Chrome at %s\n", s.cfg.ControlURL)
	} else {
		s.log.Debugf("Launching Chrome (headless=%t)\n", !s.cfg.ShowBrowser)
	}

	// An attached browser keeps its own identity.
	ua := s.cfg.UserAgent
	if s.cfg.ControlURL == "" {
		ua = util.PickUserAgent(ua)
	}

	h, err := browser.Open(ctx, browser.Options{
		URL:         s.cfg.URL,
		ControlURL:  s.cfg.ControlURL,
		ShowBrowser: s.cfg.ShowBrowser,
		BrowserBin:  s.cfg.BrowserBin,
		NoSandbox:   s.cfg.NoSandbox,
		UserAgent:   ua,
		Cookie:      util.JoinCookies(s.cfg.Cookie, s.cfg.CookieFile),
		LoadTimeout: time.Minute,
	})
	if err != nil {
		return err
	}

	s.host = h
	s.closeHost = h.Close
	return nil
}

// downloader builds a page downloader reporting to a fresh progress bar.
func (s *session) downloader(label string) *downloader.Downloader {
	s.pm = ui.NewProgressManager(nil)
	s.bar = s.pm.Register(label)

	return downloader.New(s.host, s.sink, downloader.Config{
		Layout:            s.cfg.Layout,
		PollInterval:      s.cfg.PollInterval,
		PollTimeout:       s.cfg.PollTimeout,
		MaxContinueClicks: s.cfg.MaxContinueClicks,
		MaxWidth:          s.cfg.MaxWidth,
	}, s.log, s.bar)
}

// pageOptions applies the configured format, quality, prefix and range on
// top of a command's defaults.
func (s *session) pageOptions(def downloader.Options) (downloader.Options, error) {
	opts := def

	// A chosen format starts from DefaultQuality, not the quality of the
	// command's own default format.
	if s.cfg.Format != "" {
		opts = opts.WithFormat(s.cfg.Format)
	}
	if s.cfg.Quality != nil {
		opts.Quality = *s.cfg.Quality
	}
	if s.cfg.ImageNamePrefix != "" {
		opts.ImageNamePrefix = s.cfg.ImageNamePrefix
	}

	if s.cfg.Range != "" {
		rng, err := pages.ParseRange(s.cfg.Range)
		if err != nil {
			return opts, err
		}
		opts.FromPage, opts.ToPage = rng.From, rng.To
	}

	return opts, nil
}

func (s *session) record(res *downloader.Result) {
	if res == nil {
		return
	}

	s.stats.TotalPages.Add(int64(len(res.Pages)))
	s.stats.TotalFiles.Add(int64(len(res.Files)))
	s.stats.TotalBytes.Add(res.Bytes)
}

// closeProgress completes the bar and waits for its last render. A run
// that failed before its first page never completed the bar.
func (s *session) closeProgress() {
	if s.pm == nil {
		return
	}

	s.bar.MarkDone()
	s.pm.Close()
	s.pm, s.bar = nil, nil
}

func (s *session) close() {
	s.closeProgress()
	s.closeHost()
}

func (s *session) printSummary() {
	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Pages:  %d\n", s.stats.TotalPages.Load())
	fmt.Printf("Files:  %d\n", s.stats.TotalFiles.Load())
	fmt.Printf("Data:   %s\n", util.Human(s.stats.TotalBytes.Load()))
	if n := s.stats.TotalPages.Load(); n > 0 {
		fmt.Printf("Page:   %s on average\n", util.Human(s.stats.TotalBytes.Load()/n))
	}
	fmt.Printf("Time:   %s\n", time.Since(s.start).Round(time.Second))
	fmt.Println("\nAll done.")
}
