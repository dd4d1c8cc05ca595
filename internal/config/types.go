package config

import "time"

// Config is the top-level netviz configuration, corresponding to .netviz.yml.
type Config struct {
	ServerURL   string         `yaml:"server_url" koanf:"server_url" validate:"required,url"`
	Timeout     time.Duration  `yaml:"timeout" koanf:"timeout" validate:"gte=0"`
	Categories  []string       `yaml:"categories" koanf:"categories" validate:"max=5,dive,required"`
	DataDir     string         `yaml:"data_dir" koanf:"data_dir" validate:"required"`
	Environment string         `yaml:"environment" koanf:"environment" validate:"oneof=development production"`
	LogLevel    string         `yaml:"log_level" koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Serve       ServeConfig    `yaml:"serve" koanf:"serve"`
	Canvas      CanvasConfig   `yaml:"canvas" koanf:"canvas"`
	Training    TrainingConfig `yaml:"training" koanf:"training"`
	Samples     SamplesConfig  `yaml:"samples" koanf:"samples"`
}

// ServeConfig holds settings for the local dashboard server.
type ServeConfig struct {
	Port     int  `yaml:"port" koanf:"port" validate:"gte=1,lte=65535"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}

// CanvasConfig sets the diagram size.
type CanvasConfig struct {
	Width  float64 `yaml:"width" koanf:"width" validate:"gt=0"`
	Height float64 `yaml:"height" koanf:"height" validate:"gt=0"`
}

// TrainingConfig holds the defaults for training runs.
type TrainingConfig struct {
	LearningRate float64 `yaml:"learning_rate" koanf:"learning_rate" validate:"gt=0"`
	Epochs       int     `yaml:"epochs" koanf:"epochs" validate:"gte=1"`
}

// SamplesConfig filters the images picked up by batch uploads.
type SamplesConfig struct {
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
