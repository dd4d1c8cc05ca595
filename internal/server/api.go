package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/diagrams"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/probability"
	"github.com/ziadkadry99/netviz/internal/validation"
)

type categoriesResponse struct {
	Categories []category.Category `json:"categories"`
	Selected   string              `json:"selected,omitempty"`
	Version    uint64              `json:"version"`
}

type categoryRequest struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type setCategoriesRequest struct {
	Categories []categoryRequest `json:"categories" validate:"max=5,dive"`
}

type selectRequest struct {
	Category string `json:"category"`
}

type probabilitiesRequest struct {
	Probabilities []float64          `json:"probabilities,omitempty"`
	Map           map[string]float64 `json:"probabilities_map,omitempty"`
}

func (s *Server) registerCategoryRoutes(r chi.Router) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", s.handleGetCategories)
		r.Put("/", s.handleSetCategories)
		r.Post("/", s.handleAddCategory)
		r.Put("/selected", s.handleSelectCategory)
		r.Patch("/{id}", s.handleRenameCategory)
		r.Delete("/{id}", s.handleRemoveCategory)
	})
}

func (s *Server) registerNetworkRoutes(r chi.Router) {
	r.Get("/api/network", s.handleNetwork)
	r.Get("/api/network.svg", s.handleNetworkSVG)
	r.Get("/api/network.mmd", s.handleNetworkMermaid)
	r.Put("/api/network/probabilities", s.handleSetProbabilities)
	r.Post("/api/network/simulate", s.handleSimulate)
}

func (s *Server) categoriesState() categoriesResponse {
	store := s.session.Store()
	cats, version := store.Snapshot()
	resp := categoriesResponse{Categories: cats, Version: version}
	if sel, err := store.Selected(); err == nil {
		resp.Selected = sel.ID
	}
	return resp
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.categoriesState())
}

func (s *Server) handleSetCategories(w http.ResponseWriter, r *http.Request) {
	var req setCategoriesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.writeError(w, err)
		return
	}

	cats := make([]category.Category, len(req.Categories))
	for i, c := range req.Categories {
		cats[i] = category.Category{ID: c.ID, Label: c.Label, Color: c.Color}
	}
	if err := s.session.Store().Set(cats); err != nil {
		s.writeError(w, err)
		return
	}

	state := s.categoriesState()
	s.record(r, history.Entry{
		Action:  history.ActionCategories,
		Summary: "replaced categories: " + strings.Join(category.Labels(state.Categories), ", "),
	}, nil)
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}

	store := s.session.Store()
	var (
		added category.Category
		err   error
	)
	if strings.TrimSpace(req.Label) == "" {
		added, err = store.Add()
	} else {
		added, err = store.AddLabel(req.Label)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.record(r, history.Entry{
		Action:  history.ActionCategories,
		Label:   added.Label,
		Summary: "added category " + added.Label,
	}, nil)
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.session.Store().Rename(id, req.Label); err != nil {
		s.writeError(w, err)
		return
	}

	s.record(r, history.Entry{
		Action:  history.ActionCategories,
		Label:   strings.TrimSpace(req.Label),
		Summary: "renamed category to " + strings.TrimSpace(req.Label),
	}, nil)
	writeJSON(w, http.StatusOK, s.categoriesState())
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	store := s.session.Store()

	var label string
	cats := store.Get()
	if i := category.IndexOf(cats, id); i >= 0 {
		label = cats[i].Label
	}
	if err := store.Remove(id); err != nil {
		s.writeError(w, err)
		return
	}

	s.record(r, history.Entry{
		Action:  history.ActionCategories,
		Label:   label,
		Summary: "removed category " + label,
	}, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.Store().Select(req.Category); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.categoriesState())
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Frame())
}

func (s *Server) handleNetworkSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(diagrams.SVG(s.session.Frame())))
}

func (s *Server) handleNetworkMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(diagrams.Mermaid(s.session.Frame())))
}

func (s *Server) handleSetProbabilities(w http.ResponseWriter, r *http.Request) {
	var req probabilitiesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if req.Map != nil {
		writeJSON(w, http.StatusOK, s.session.ApplyPrediction(req.Map))
		return
	}
	writeJSON(w, http.StatusOK, s.session.SetProbabilities(probability.Vector(req.Probabilities)))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Simulate())
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
