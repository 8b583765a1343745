package cmd

import (
	"context"
	"fmt"

	"github.com/brogergvhs/pagegrab/internal/pages"

	"github.com/spf13/cobra"
)

var infoFlags sourceFlags

func init() {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the title and page count of a document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			s, err := openSession(ctx, infoFlags.options(cmd))
			if err != nil {
				return err
			}
			defer s.close()

			loc := pages.NewLocator(s.host, s.cfg.Layout)

			count, err := loc.TotalPageCount(ctx)
			if err != nil {
				return err
			}

			rendered := 0
			for n := 1; n <= count; n++ {
				if _, ok, err := loc.PageSurface(ctx, n); err != nil {
					return err
				} else if ok {
					rendered++
				}
			}

			fmt.Printf("Title:       %s\n", loc.Title(ctx))
			fmt.Printf("Pages:       %d\n", count)
			fmt.Printf("Placeholders revealed: %d/%d\n", rendered, count)
			return nil
		},
	}

	infoFlags.register(infoCmd)
	rootCmd.AddCommand(infoCmd)
}
