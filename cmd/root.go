package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "netviz",
	Short: "Label images, train a classifier and watch the network light up",
	Long: `netviz talks to an image classification training server. It uploads
labelled sample images, starts training runs and draws the network diagram
for the current categories, lighting up the output nodes with the latest
prediction. Run "netviz serve" for the browser dashboard.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
