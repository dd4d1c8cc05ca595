package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/diagrams"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/ui"
)

var predictCmd = &cobra.Command{
	Use:   "predict <image>",
	Short: "Classify an image and show how the network lights up",
	Long: `Sends an image to the training server's /predict endpoint and lays the
returned probabilities over the current categories. Categories the server
does not know about show 0%.`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	addCategoryFlag(predictCmd)
	predictCmd.Flags().String("svg", "", "also write the lit-up network as SVG to this file")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := newCategoryStore(cmd, cfg)
	if err != nil {
		return err
	}
	session := newSession(cfg, store, logger, nil)
	defer session.Close()

	hist, closeDB, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	image, f, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	pred, err := newClient(cfg, logger, nil).Predict(ctx, image)
	entry := history.Entry{Action: history.ActionPredict}
	if err == nil {
		entry.Label = pred.PredictedLabel
		entry.Summary = "predicted " + pred.PredictedLabel
		entry.Detail = history.FormatProbabilities(pred.Probabilities)
	}
	recordHistory(ctx, hist, logger, entry, err)
	if err != nil {
		return err
	}

	frame := session.ApplyPrediction(pred.Probabilities)

	fmt.Printf("Prediction for %s: ", image.Name)
	ui.Brand.Println(pred.PredictedLabel)
	fmt.Println()
	ui.Probabilities(os.Stdout, frame)

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		return writeOutput(path, diagrams.SVG(frame)+"\n")
	}
	return nil
}
