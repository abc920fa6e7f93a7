package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangafetch/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a config profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldLabel, newLabel := args[0], args[1]
		if oldLabel == config.DefaultLabel {
			return fmt.Errorf("the %s config cannot be renamed", config.DefaultLabel)
		}

		active, _ := config.CurrentLabel()
		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return err
		}

		fmt.Printf("Renamed config %q to %q\n", oldLabel, newLabel)
		if active == oldLabel {
			fmt.Println("It stays active under the new label.")
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
