package cmd

import (
	"fmt"

	"github.com/brogergvhs/pagegrab/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a profile; the active pointer follows it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldLabel, newLabel := args[0], args[1]

		if oldLabel == config.DefaultLabel {
			return fmt.Errorf("cannot rename the %s config; copy it with `pagegrab config add --from`", config.DefaultLabel)
		}

		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return err
		}
		fmt.Printf("Renamed config %q to %q\n", oldLabel, newLabel)

		if active, _ := config.CurrentLabel(); active == newLabel {
			fmt.Println("It is still the active profile.")
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
