package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/diagrams"
	"github.com/ziadkadry99/netviz/internal/probability"
	"github.com/ziadkadry99/netviz/internal/ui"
)

// Output formats understood by render and simulate.
const (
	formatSVG     = "svg"
	formatMermaid = "mermaid"
	formatJSON    = "json"
	formatText    = "text"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the network for the configured categories",
	Long: `Builds the three-layer network for the current categories and prints it.
Without --probabilities every category gets the same share, so no output node
is lit. Formats: svg, mermaid, json, text.`,
	Example: `  netviz render --category cats --category dogs --format mermaid
  netviz render -c cats -c dogs --probabilities 0.2,0.8 -o network.svg`,
	RunE: runRender,
}

func init() {
	addCategoryFlag(renderCmd)
	renderCmd.Flags().StringP("format", "f", formatSVG, "output format: svg, mermaid, json or text")
	renderCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	renderCmd.Flags().Float64Slice("probabilities", nil, "probability per category, in category order")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
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

	frame := session.Frame()
	if probs, _ := cmd.Flags().GetFloat64Slice("probabilities"); len(probs) > 0 {
		if len(probs) != len(store.Get()) {
			return fmt.Errorf("got %d probabilities for %d categories", len(probs), len(store.Get()))
		}
		frame = session.SetProbabilities(probability.Vector(probs))
	}

	format, _ := cmd.Flags().GetString("format")
	out, err := formatFrame(frame, format)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	return writeOutput(output, out)
}

// formatFrame renders frame in the named format.
func formatFrame(frame *activation.Frame, format string) (string, error) {
	switch strings.ToLower(format) {
	case formatSVG:
		return diagrams.SVG(frame) + "\n", nil
	case formatMermaid:
		return diagrams.Mermaid(frame), nil
	case formatJSON:
		data, err := json.MarshalIndent(frame, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding frame: %w", err)
		}
		return string(data) + "\n", nil
	case formatText:
		var buf bytes.Buffer
		ui.Probabilities(&buf, frame)
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown format %q (want svg, mermaid, json or text)", format)
	}
}
