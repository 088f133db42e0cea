package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateCategory(r.Context(), c)
	if err != nil {
		respondStorageError(w, r, err, "failed to create category")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.storage.ListCategories(r.Context())
	if err != nil {
		respondStorageError(w, r, err, "failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.storage.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get category")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateCategory(r.Context(), c); err != nil {
		respondStorageError(w, r, err, "failed to update category")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete category")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item core.LifeItem
	if err := decodeJSON(r, &item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	item.LastUpdated = time.Now().UTC()
	created, err := s.storage.CreateLifeItem(r.Context(), item)
	if err != nil {
		respondStorageError(w, r, err, "failed to create item")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListLifeItems(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.storage.GetLifeItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var item core.LifeItem
	if err := decodeJSON(r, &item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ID = chi.URLParam(r, "id")
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	item.LastUpdated = time.Now().UTC()
	if err := s.storage.UpdateLifeItem(r.Context(), item); err != nil {
		respondStorageError(w, r, err, "failed to update item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteLifeItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (s *Server) handleGetValuation(w http.ResponseWriter, r *http.Request) {
	v, err := s.storage.GetPropertyValuation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get valuation")
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpsertValuation(w http.ResponseWriter, r *http.Request) {
	var v core.PropertyValuation
	if err := decodeJSON(r, &v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v.ItemID = chi.URLParam(r, "id")
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	saved, err := s.storage.UpsertPropertyValuation(r.Context(), v)
	if err != nil {
		respondStorageError(w, r, err, "failed to save valuation")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteValuation(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeletePropertyValuation(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete valuation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "valuation deleted"})
}
