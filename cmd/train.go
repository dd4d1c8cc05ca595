package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/inference"
	"github.com/ziadkadry99/netviz/internal/ui"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Start a training run on the uploaded images",
	Long: `Asks the training server to fit its classification head on every image
uploaded so far. Learning rate and epochs default to the config file.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().Float64("learning-rate", 0, "learning rate (overrides config)")
	trainCmd.Flags().Int("epochs", 0, "number of epochs (overrides config)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	req := inference.TrainRequest{
		LearningRate: cfg.Training.LearningRate,
		Epochs:       cfg.Training.Epochs,
	}
	if lr, _ := cmd.Flags().GetFloat64("learning-rate"); lr > 0 {
		req.LearningRate = lr
	}
	if epochs, _ := cmd.Flags().GetInt("epochs"); epochs > 0 {
		req.Epochs = epochs
	}
	req = req.WithDefaults()

	hist, closeDB, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	fmt.Fprintf(os.Stderr, "Training on %s (learning rate %g, %d epochs)...\n", cfg.ServerURL, req.LearningRate, req.Epochs)
	start := time.Now()

	ctx := cmd.Context()
	result, err := newClient(cfg, logger, nil).Train(ctx, req)
	entry := history.Entry{
		Action:  history.ActionTrain,
		Summary: fmt.Sprintf("learning rate %g, %d epochs", req.LearningRate, req.Epochs),
	}
	if err == nil {
		entry.Detail = strings.Join(result.Classes, ", ")
	}
	recordHistory(ctx, hist, logger, entry, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s Training finished in %s\n", ui.StatusIcon(true), time.Since(start).Round(time.Millisecond))
	if len(result.Classes) > 0 {
		fmt.Printf("Classes: %s\n", strings.Join(result.Classes, ", "))
	}
	return nil
}
