package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/export"
	"github.com/pankajredekar/stockroom/internal/repository"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.deps.Categories.Create(r.Context(), req.Name, req.Emoji, req.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := s.deps.Categories.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Stats.Summary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleOutOfStock(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Stats.OutOfStock(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Stats.LowStock(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Products.List(r.Context(), repository.ProductFilter{Sort: "name"})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, products); err != nil {
		s.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("products_%s.csv", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportSQL(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dialect")
	if name == "" {
		name = database.Postgres
	}
	dialect, err := database.DialectFor(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, err := s.deps.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	products, err := s.deps.Products.List(r.Context(), repository.ProductFilter{Sort: "id"})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteSQLDump(&buf, dialect, categories, products, s.now()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/sql; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=stockroom_%s.sql", dialect.Name()))
	_, _ = w.Write(buf.Bytes())
}
