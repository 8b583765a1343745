package cmd

import (
	"testing"

	"github.com/brogergvhs/pagegrab/internal/config"
	"github.com/brogergvhs/pagegrab/internal/downloader"
)

func TestPageOptions(t *testing.T) {
	half := 0.5

	tests := []struct {
		name        string
		cfg         config.Config
		def         downloader.Options
		wantFormat  string
		wantQuality float64
		wantFrom    int
		wantTo      int
	}{
		{
			name:        "archive defaults",
			def:         downloader.ArchiveDefaults(),
			wantFormat:  "png",
			wantQuality: 1.0,
		},
		{
			name:        "archive as jpg falls back to default quality",
			cfg:         config.Config{Format: "jpg"},
			def:         downloader.ArchiveDefaults(),
			wantFormat:  "jpg",
			wantQuality: downloader.DefaultQuality,
		},
		{
			name:        "explicit quality wins",
			cfg:         config.Config{Format: "jpg", Quality: &half, Range: "3-7"},
			def:         downloader.ArchiveDefaults(),
			wantFormat:  "jpg",
			wantQuality: 0.5,
			wantFrom:    3,
			wantTo:      7,
		},
		{
			name:        "single images keep quality without a format",
			cfg:         config.Config{Range: "4-"},
			def:         downloader.SingleImageDefaults(),
			wantFormat:  "jpg",
			wantQuality: 0.9,
			wantFrom:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session{cfg: &tt.cfg}

			opts, err := s.pageOptions(tt.def)
			if err != nil {
				t.Fatalf("pageOptions failed: %v", err)
			}
			if opts.Format != tt.wantFormat || opts.Quality != tt.wantQuality {
				t.Errorf("expected %s at %v, got %s at %v", tt.wantFormat, tt.wantQuality, opts.Format, opts.Quality)
			}
			if opts.FromPage != tt.wantFrom || opts.ToPage != tt.wantTo {
				t.Errorf("expected range %d-%d, got %d-%d", tt.wantFrom, tt.wantTo, opts.FromPage, opts.ToPage)
			}
		})
	}
}

func TestSessionCloseProgressTwice(t *testing.T) {
	s := &session{cfg: config.DefaultConfig(), closeHost: func() {}}

	s.downloader("pages")
	s.closeProgress()
	if s.pm != nil {
		t.Fatal("progress manager should be released after closing")
	}

	s.close()
}

func TestPageOptions_InvalidRange(t *testing.T) {
	s := &session{cfg: &config.Config{Range: "9-2"}}

	if _, err := s.pageOptions(downloader.SingleImageDefaults()); err == nil {
		t.Error("expected reversed range to be rejected")
	}
}
