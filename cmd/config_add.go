package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangafetch/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagAddFrom string

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config profile, from defaults or from an existing YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Label for new config"}
			v, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("cancelled")
			}
			label = v
		}

		var (
			path string
			err  error
		)
		if flagAddFrom != "" {
			path, err = config.AddConfig(label, flagAddFrom)
		} else {
			path, err = config.CreateEmptyConfig(label)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		fmt.Printf("Activate it with `mangafetch config switch %s`.\n", label)
		return nil
	},
}

func init() {
	configAddCmd.Flags().StringVar(&flagAddFrom, "from", "", "copy an existing YAML file instead of the defaults")
	configCmd.AddCommand(configAddCmd)
}
