package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var preloadFlags sourceFlags

func init() {
	preloadCmd := &cobra.Command{
		Use:   "preload",
		Short: "Reveal and render every page without saving anything (useful with --show-browser)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			s, err := openSession(ctx, preloadFlags.options(cmd))
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.downloader("preload").PreloadAll(ctx); err != nil {
				return err
			}

			s.closeProgress()
			fmt.Println("\nAll pages rendered.")
			return nil
		},
	}

	preloadFlags.register(preloadCmd)
	rootCmd.AddCommand(preloadCmd)
}
