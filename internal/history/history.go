// Package history records what the user did against the training server
// and the category list: uploads, predictions, training runs and edits.
package history

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Action names the kind of operation recorded.
type Action string

const (
	ActionUpload     Action = "upload"
	ActionPredict    Action = "predict"
	ActionTrain      Action = "train"
	ActionCategories Action = "categories"
)

// Outcome tells whether the operation succeeded.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Entry is a single history record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Outcome   Outcome   `json:"outcome"`
	Label     string    `json:"label,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FormatProbabilities renders a prediction map as "label=0.000" pairs sorted
// by label, for the Detail field of predict entries.
func FormatProbabilities(m map[string]float64) string {
	parts := make([]string, 0, len(m))
	for _, label := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s=%.3f", label, m[label]))
	}
	return strings.Join(parts, " ")
}
