package cmd

import (
	"context"

	"github.com/brogergvhs/pagegrab/internal/downloader"

	"github.com/spf13/cobra"
)

var downloadFlags sourceFlags

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Save every page as its own image file. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	downloadFlags.register(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	s, err := openSession(ctx, downloadFlags.options(cmd))
	if err != nil {
		return err
	}
	defer s.close()

	opts, err := s.pageOptions(downloader.SingleImageDefaults())
	if err != nil {
		return err
	}

	res, err := s.downloader("pages").DownloadPages(ctx, opts)
	s.record(res)
	if err != nil {
		return err
	}

	s.closeProgress()
	s.printSummary()
	return nil
}
