package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/pagegrab/internal/archive"
	"github.com/brogergvhs/pagegrab/internal/pages"
)

const (
	EngineBrowser = "browser"
	EngineStatic  = "static"
)

type Config struct {
	Output string `yaml:"output"`
	Engine string `yaml:"engine"`
	URL    string `yaml:"url"`

	// Format and Quality are left empty to use the per-command defaults
	// (jpg/0.9 for images, png/1.0 for archives).
	Format          string   `yaml:"format,omitempty"`
	Quality         *float64 `yaml:"quality,omitempty"`
	ImageNamePrefix string   `yaml:"image_name_prefix"`
	Range           string   `yaml:"range,omitempty"`
	MaxWidth        int      `yaml:"max_width,omitempty"`

	ArchiveKind string `yaml:"archive_kind"`
	Deflate     bool   `yaml:"deflate"`
	KeepFolders bool   `yaml:"keep_folders"`
	Debug       bool   `yaml:"debug"`

	Cookie     string `yaml:"cookie,omitempty"`
	CookieFile string `yaml:"cookie_file,omitempty"`
	UserAgent  string `yaml:"user_agent,omitempty"`

	ShowBrowser bool   `yaml:"show_browser"`
	BrowserBin  string `yaml:"browser_bin,omitempty"`
	ControlURL  string `yaml:"control_url,omitempty"`
	NoSandbox   bool   `yaml:"no_sandbox"`

	PollInterval      time.Duration `yaml:"poll_interval"`
	PollTimeout       time.Duration `yaml:"poll_timeout"`
	MaxContinueClicks int           `yaml:"max_continue_clicks"`

	Layout pages.Layout `yaml:"layout"`
}

// Options carries command-line overrides. Zero values leave the loaded
// config untouched.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	Output          string
	Engine          string
	URL             string
	Format          string
	Quality         *float64
	ImageNamePrefix string
	Range           string
	MaxWidth        int
	ArchiveKind     string
	Deflate         bool
	KeepFolders     bool

	Cookie     string
	CookieFile string
	UserAgent  string

	ShowBrowser bool
	BrowserBin  string
	ControlURL  string
	NoSandbox   bool

	PollTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Output:            ".",
		Engine:            EngineBrowser,
		ImageNamePrefix:   "page",
		ArchiveKind:       archive.KindZip,
		PollInterval:      pages.DefaultPollInterval,
		PollTimeout:       pages.DefaultPollTimeout,
		MaxContinueClicks: pages.DefaultMaxContinueClicks,
		Layout:            pages.DefaultLayout(),
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadFile reads one config file the way LoadMerged would use it.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadYAML(path)
	if err != nil {
		return nil, err
	}

	normalizeDefaults(cfg)
	return cfg, cfg.Validate()
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", cfg.Validate()
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `pagegrab config init` to create an actual config\n", cfg.Validate()
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, cfg.Validate()
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Engine != "" {
		c.Engine = o.Engine
	}
	if o.URL != "" {
		c.URL = o.URL
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Quality != nil {
		q := *o.Quality
		c.Quality = &q
	}
	if o.ImageNamePrefix != "" {
		c.ImageNamePrefix = o.ImageNamePrefix
	}
	if o.Range != "" {
		c.Range = o.Range
	}
	if o.MaxWidth != 0 {
		c.MaxWidth = o.MaxWidth
	}
	if o.ArchiveKind != "" {
		c.ArchiveKind = o.ArchiveKind
	}
	if o.Deflate {
		c.Deflate = true
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.ShowBrowser {
		c.ShowBrowser = true
	}
	if o.BrowserBin != "" {
		c.BrowserBin = o.BrowserBin
	}
	if o.ControlURL != "" {
		c.ControlURL = o.ControlURL
	}
	if o.NoSandbox {
		c.NoSandbox = true
	}
	if o.PollTimeout != 0 {
		c.PollTimeout = o.PollTimeout
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.Engine == "" {
		c.Engine = EngineBrowser
	}
	if c.ImageNamePrefix == "" {
		c.ImageNamePrefix = "page"
	}
	c.ArchiveKind = strings.ToLower(strings.TrimSpace(c.ArchiveKind))
	if c.ArchiveKind == "" {
		c.ArchiveKind = archive.KindZip
	}
	if c.PollInterval <= 0 {
		c.PollInterval = pages.DefaultPollInterval
	}
	if c.MaxContinueClicks <= 0 {
		c.MaxContinueClicks = pages.DefaultMaxContinueClicks
	}
	c.Layout = c.Layout.WithDefaults()
}

// Validate rejects values that would only fail later, mid-download.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineBrowser, EngineStatic:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineBrowser, EngineStatic)
	}

	switch c.ArchiveKind {
	case archive.KindZip, archive.KindCBZ, archive.KindPDF:
	default:
		return fmt.Errorf("unknown archive_kind %q", c.ArchiveKind)
	}

	if c.Range != "" {
		if _, err := pages.ParseRange(c.Range); err != nil {
			return err
		}
	}

	if c.Quality != nil && (*c.Quality < 0 || *c.Quality > 1) {
		return fmt.Errorf("quality %v out of range [0,1]", *c.Quality)
	}

	if c.PollTimeout < 0 {
		return fmt.Errorf("poll_timeout cannot be negative")
	}

	return nil
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -engine: %s\n", c.Engine)
	if c.URL != "" {
		fmt.Printf(" -url: %s\n", c.URL)
	}
	if c.Format != "" {
		fmt.Printf(" -format: %s\n", c.Format)
	}
	if c.Quality != nil {
		fmt.Printf(" -quality: %.2f\n", *c.Quality)
	}
	fmt.Printf(" -image_name_prefix: %s\n", c.ImageNamePrefix)
	if c.Range != "" {
		fmt.Printf(" -range: %s\n", c.Range)
	}
	if c.MaxWidth > 0 {
		fmt.Printf(" -max_width: %d\n", c.MaxWidth)
	}
	fmt.Printf(" -archive_kind: %s\n", c.ArchiveKind)
	if c.Deflate {
		fmt.Printf(" -deflate: %t\n", c.Deflate)
	}
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.Engine == EngineBrowser {
		if c.ControlURL != "" {
			fmt.Printf(" -control_url: %s\n", c.ControlURL)
		}
		if c.BrowserBin != "" {
			fmt.Printf(" -browser_bin: %s\n", c.BrowserBin)
		}
		if c.ShowBrowser {
			fmt.Printf(" -show_browser: %t\n", c.ShowBrowser)
		}
	}
	fmt.Printf(" -poll_interval: %s\n", c.PollInterval)
	fmt.Printf(" -poll_timeout: %s\n", c.PollTimeout)
	fmt.Printf(" -max_continue_clicks: %d\n", c.MaxContinueClicks)
}
