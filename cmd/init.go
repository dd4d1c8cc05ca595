package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize netviz configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the training server, the starting categories and the dashboard port, then writes .netviz.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
