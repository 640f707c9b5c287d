package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/mangacap/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the current config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		activePath, err := store.ActiveConfigPath()
		if errors.Is(err, config.ErrNoConfig) {
			path, err := store.InitDefaultConfig(true)
			if err != nil {
				return err
			}
			fmt.Printf("No active config, created Default: %s\n", path)
			return nil
		}
		if err != nil {
			return err
		}

		if err := config.SaveYAML(config.DefaultConfig(), activePath); err != nil {
			return err
		}

		fmt.Printf("Reset active config: %s\n", activePath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
