package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c core.Contact
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateContact(r.Context(), c)
	if err != nil {
		respondStorageError(w, r, err, "failed to create contact")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.storage.ListContacts(r.Context(), r.URL.Query().Get("itemId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list contacts")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.storage.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get contact")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var c core.Contact
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateContact(r.Context(), c); err != nil {
		respondStorageError(w, r, err, "failed to update contact")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete contact")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e core.SocialEvent
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := e.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateSocialEvent(r.Context(), e)
	if err != nil {
		respondStorageError(w, r, err, "failed to create event")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.storage.ListSocialEvents(r.Context(), r.URL.Query().Get("itemId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.storage.GetSocialEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get event")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var e core.SocialEvent
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e.ID = chi.URLParam(r, "id")
	if err := e.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateSocialEvent(r.Context(), e); err != nil {
		respondStorageError(w, r, err, "failed to update event")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteSocialEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var a core.Alert
	if err := decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	created, err := s.storage.CreateAlert(r.Context(), a)
	if err != nil {
		respondStorageError(w, r, err, "failed to create alert")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	alerts, err := s.storage.ListAlerts(r.Context(), r.URL.Query().Get("itemId"), activeOnly)
	if err != nil {
		respondStorageError(w, r, err, "failed to list alerts")
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	a, err := s.storage.GetAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get alert")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	var a core.Alert
	if err := decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = chi.URLParam(r, "id")
	if err := a.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateAlert(r.Context(), a); err != nil {
		respondStorageError(w, r, err, "failed to update alert")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete alert")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "alert deleted"})
}
