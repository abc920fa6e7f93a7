package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangafetch/internal/config"

	"github.com/spf13/cobra"
)

var flagResetForce bool

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActiveConfigPath()
		if err != nil {
			return fmt.Errorf("%w, run `mangafetch config init`", err)
		}

		if !flagResetForce && !confirm("Overwrite "+activePath+" with defaults") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := config.SaveYAML(config.DefaultConfig(), activePath); err != nil {
			return err
		}

		fmt.Printf("Reset active config: %s\n", activePath)
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVarP(&flagResetForce, "force", "f", false, "reset without asking")
	configCmd.AddCommand(configResetCmd)
}
