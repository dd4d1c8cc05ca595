package inference

import (
	"context"
	"fmt"
	"io"
)

const (
	// DefaultLearningRate is sent when the caller's value is missing or invalid.
	DefaultLearningRate = 0.001
	// DefaultEpochs is sent when the caller's value is missing or invalid.
	DefaultEpochs = 10
)

// Service is the training server as seen by netviz.
type Service interface {
	// Upload stores a labelled training image.
	Upload(ctx context.Context, image Image, label string) (*UploadResult, error)
	// Predict classifies an image.
	Predict(ctx context.Context, image Image) (*Prediction, error)
	// Train fits the classification head on every uploaded image.
	Train(ctx context.Context, req TrainRequest) (*TrainResult, error)
}

// Image is a JPEG payload. Name is used as the multipart filename; a
// generated one is used when empty.
type Image struct {
	Name string
	Data io.Reader
}

// UploadResult is the decoded /upload response.
type UploadResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// Prediction is the decoded /predict response.
type Prediction struct {
	Probabilities  map[string]float64 `json:"probabilities_map"`
	PredictedLabel string             `json:"predicted_class_label"`
}

// TrainRequest holds the user-tunable training parameters.
type TrainRequest struct {
	LearningRate float64 `json:"learning_rate" validate:"gt=0"`
	Epochs       int     `json:"epochs" validate:"gte=1"`
}

// TrainResult is the decoded /train success response.
type TrainResult struct {
	Status  string   `json:"status"`
	Classes []string `json:"classes"`
}

// TransportError reports that the training server could not be reached or
// its response could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: could not reach the training server: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response. Message carries the server's
// "error" field verbatim when present.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.Status, e.Message)
}
