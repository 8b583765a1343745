package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/brogergvhs/pagegrab/internal/archive"
	"github.com/brogergvhs/pagegrab/internal/downloader"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	archiveFlags sourceFlags

	flagArchiveKind string
	flagArchiveName string
	flagDeflate     bool
	flagForce       bool
)

func init() {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Bundle every page into one ZIP, CBZ or PDF file",
		Long: `Bundle every page into one ZIP, CBZ or PDF file.

Pages are stored as PNG by default. Choosing another --format without
--quality encodes at quality 0.9.`,
		RunE:  runArchive,
	}

	archiveFlags.register(archiveCmd)
	archiveCmd.Flags().StringVar(&flagArchiveKind, "kind", "", "archive kind: zip, cbz or pdf")
	archiveCmd.Flags().StringVar(&flagArchiveName, "name", "", "archive file name without extension (defaults to the document title)")
	archiveCmd.Flags().BoolVar(&flagDeflate, "deflate", false, "compress zip/cbz entries instead of storing them")
	archiveCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing archive without asking")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfgOpts := archiveFlags.options(cmd)
	cfgOpts.ArchiveKind = flagArchiveKind
	cfgOpts.Deflate = flagDeflate

	s, err := openSession(ctx, cfgOpts)
	if err != nil {
		return err
	}
	defer s.close()

	opts, err := s.pageOptions(downloader.ArchiveDefaults())
	if err != nil {
		return err
	}

	a, err := archive.New(archive.Options{
		Kind:        s.cfg.ArchiveKind,
		Deflate:     s.cfg.Deflate,
		WorkDir:     s.cfg.Output,
		KeepFolders: s.cfg.KeepFolders,
	})
	if err != nil {
		return err
	}

	discard := func() {
		if pdf, ok := a.(*archive.PDF); ok && !s.cfg.KeepFolders {
			_ = os.RemoveAll(pdf.Dir())
		}
	}

	d := s.downloader(s.cfg.ArchiveKind)

	// The title is known before any page work, so an existing file can be
	// confirmed up front instead of after a long download.
	name := downloader.ArchiveName(flagArchiveName, d.Locator().Title(ctx), a.Extension())
	if ok, err := confirmOverwrite(s.sink.Path(name)); err != nil || !ok {
		discard()
		return err
	}

	res, err := d.DownloadPagesArchive(ctx, opts, a, flagArchiveName)
	s.record(res)
	if err != nil {
		discard()
		return err
	}

	s.closeProgress()
	s.printSummary()
	return nil
}

func confirmOverwrite(path string) (bool, error) {
	if flagForce {
		return true, nil
	}
	if _, err := os.Stat(path); err != nil {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s already exists. Overwrite", path),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			fmt.Println("Aborted.")
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled")
	}

	return true, nil
}
