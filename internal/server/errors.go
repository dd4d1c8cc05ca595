package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/inference"
	"github.com/ziadkadry99/netviz/internal/validation"
)

// unreachableMessage is shown instead of the underlying network error.
const unreachableMessage = "could not reach the training server"

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps err onto a status code. Training server errors are passed
// through verbatim; transport failures get a generic message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		serr *inference.ServerError
		terr *inference.TransportError
	)
	switch {
	case errors.As(err, &serr):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: serr.Message})
	case errors.As(err, &terr):
		s.logger.Warn("training server unreachable", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: unreachableMessage})
	case errors.Is(err, category.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, category.ErrNoSelection),
		errors.Is(err, category.ErrLimitReached),
		errors.Is(err, category.ErrDuplicateLabel),
		errors.Is(err, category.ErrDuplicateID),
		errors.Is(err, category.ErrEmptyLabel),
		errors.Is(err, errBadRequest),
		validation.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
