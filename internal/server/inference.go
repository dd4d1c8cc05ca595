package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/inference"
)

// maxImageSize bounds multipart uploads.
const maxImageSize = 10 << 20

type predictResponse struct {
	Prediction *inference.Prediction `json:"prediction"`
	Frame      *activation.Frame     `json:"frame"`
}

func (s *Server) registerInferenceRoutes(r chi.Router) {
	r.Post("/api/upload", s.handleUpload)
	r.Post("/api/predict", s.handlePredict)
	r.Post("/api/train", s.handleTrain)
}

// handleUpload forwards an image to the training server, labelled with the
// "label" form field or the selected category.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	image, closeFn, err := formImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer closeFn()

	label := strings.TrimSpace(r.FormValue("label"))
	if label == "" {
		sel, err := s.session.Store().Selected()
		if err != nil {
			s.writeError(w, err)
			return
		}
		label = sel.Label
	}

	result, err := s.infer.Upload(r.Context(), image, label)
	s.record(r, history.Entry{
		Action:  history.ActionUpload,
		Label:   label,
		Summary: "uploaded " + image.Name,
	}, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePredict classifies an image and applies the probabilities to the
// network view.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	image, closeFn, err := formImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer closeFn()

	pred, err := s.infer.Predict(r.Context(), image)
	entry := history.Entry{Action: history.ActionPredict}
	if err == nil {
		entry.Label = pred.PredictedLabel
		entry.Summary = "predicted " + pred.PredictedLabel
		entry.Detail = history.FormatProbabilities(pred.Probabilities)
	}
	s.record(r, entry, err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	frame := s.session.ApplyPrediction(pred.Probabilities)
	writeJSON(w, http.StatusOK, predictResponse{Prediction: pred, Frame: frame})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req inference.TrainRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}
	req = req.WithDefaults()

	result, err := s.infer.Train(r.Context(), req)
	entry := history.Entry{
		Action:  history.ActionTrain,
		Summary: fmt.Sprintf("learning rate %g, %d epochs", req.LearningRate, req.Epochs),
	}
	if err == nil {
		entry.Detail = strings.Join(result.Classes, ", ")
	}
	s.record(r, entry, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// formImage extracts the "image" part of a multipart request.
func formImage(w http.ResponseWriter, r *http.Request) (inference.Image, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return inference.Image{}, nil, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return inference.Image{}, nil, fmt.Errorf("%w: image is required", errBadRequest)
		}
		return inference.Image{}, nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return inference.Image{Name: header.Filename, Data: file}, func() { file.Close() }, nil
}

// record writes a history entry when a history store is configured. A
// non-nil opErr marks the entry as failed.
func (s *Server) record(r *http.Request, entry history.Entry, opErr error) {
	if s.history == nil {
		return
	}
	if opErr != nil {
		entry.Outcome = history.OutcomeFailed
		entry.Error = opErr.Error()
	}
	if _, err := s.history.Log(r.Context(), entry); err != nil {
		s.logger.Warn("recording history", zap.Error(err))
	}
}
