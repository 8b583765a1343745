package cmd

import (
	"fmt"

	"github.com/brogergvhs/pagegrab/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings, or manage labelled profiles (engine, format, browser, page layout)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		if label, err := config.CurrentLabel(); err == nil && !flagIgnoreConfig {
			fmt.Printf("Active profile: %s\n", label)
		}
		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()

		l := cfg.Layout
		fmt.Println("\nViewer layout:")
		fmt.Printf(" -page count: #%s (parent text)\n", l.PageCountID)
		fmt.Printf(" -continue control: #%s\n", l.ContinueID)
		fmt.Printf(" -page surfaces: #%sN, ready when %s=%q\n", l.SurfacePrefix, l.ReadyAttr, l.ReadyValue)
		fmt.Printf(" -title: %s[%s]\n", l.TitleSelector, l.TitleAttr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
