package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/history"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Categories int                    `json:"categories"`
	Version    uint64                 `json:"version"`
	Predicted  string                 `json:"predicted,omitempty"`
	History    map[history.Action]int `json:"history"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	// The frame carries its own category snapshot; counting and labelling
	// from it keeps both consistent under concurrent edits.
	frame := d.session.Frame()
	resp := statsResponse{
		Categories: len(frame.Outputs()),
		Version:    d.session.Store().Version(),
		Predicted:  predictedLabel(frame),
		History:    map[history.Action]int{},
	}

	if d.history != nil {
		counts, err := d.history.Counts(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.History = counts
	}

	writeJSON(w, http.StatusOK, resp)
}

// predictedLabel returns the label of the frame's predicted output node, or
// "" when there is none.
func predictedLabel(frame *activation.Frame) string {
	outputs := frame.Outputs()
	if frame.Predicted < 0 || frame.Predicted >= len(outputs) {
		return ""
	}
	return outputs[frame.Predicted].Label
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
