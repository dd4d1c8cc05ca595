package config

import (
	"github.com/ziadkadry99/netviz/internal/inference"
	"github.com/ziadkadry99/netviz/internal/topology"
)

// DefaultPath is where init writes the configuration.
const DefaultPath = ".netviz.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	layout := topology.DefaultLayout()
	return &Config{
		ServerURL:   "http://localhost:5000",
		Categories:  []string{"Category 1"},
		DataDir:     ".netviz",
		Environment: "development",
		Serve: ServeConfig{
			Port: 8080,
		},
		Canvas: CanvasConfig{
			Width:  layout.Width,
			Height: layout.Height,
		},
		Training: TrainingConfig{
			LearningRate: inference.DefaultLearningRate,
			Epochs:       inference.DefaultEpochs,
		},
	}
}
