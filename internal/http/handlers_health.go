package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func (s *Server) handleCreateBodyMetric(w http.ResponseWriter, r *http.Request) {
	var m core.BodyMetric
	if err := decodeJSON(r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := m.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateBodyMetric(r.Context(), m)
	if err != nil {
		respondStorageError(w, r, err, "failed to create body metric")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListBodyMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.storage.ListBodyMetrics(r.Context(), r.URL.Query().Get("itemId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list body metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleGetBodyMetric(w http.ResponseWriter, r *http.Request) {
	m, err := s.storage.GetBodyMetric(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get body metric")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateBodyMetric(w http.ResponseWriter, r *http.Request) {
	var m core.BodyMetric
	if err := decodeJSON(r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.ID = chi.URLParam(r, "id")
	if err := m.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateBodyMetric(r.Context(), m); err != nil {
		respondStorageError(w, r, err, "failed to update body metric")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteBodyMetric(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteBodyMetric(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete body metric")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "body metric deleted"})
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var a core.HealthAppointment
	if err := decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateHealthAppointment(r.Context(), a)
	if err != nil {
		respondStorageError(w, r, err, "failed to create appointment")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.storage.ListHealthAppointments(r.Context(), r.URL.Query().Get("itemId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list appointments")
		return
	}
	respondJSON(w, http.StatusOK, appointments)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := s.storage.GetHealthAppointment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get appointment")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var a core.HealthAppointment
	if err := decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = chi.URLParam(r, "id")
	if err := a.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateHealthAppointment(r.Context(), a); err != nil {
		respondStorageError(w, r, err, "failed to update appointment")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteHealthAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete appointment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

func (s *Server) handleCreateDependency(w http.ResponseWriter, r *http.Request) {
	var d core.Dependency
	if err := decodeJSON(r, &d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := d.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateDependency(r.Context(), d)
	if err != nil {
		respondStorageError(w, r, err, "failed to create dependency")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.storage.ListDependencies(r.Context(), r.URL.Query().Get("fromItemId"))
	if err != nil {
		respondStorageError(w, r, err, "failed to list dependencies")
		return
	}
	respondJSON(w, http.StatusOK, deps)
}

func (s *Server) handleGetDependency(w http.ResponseWriter, r *http.Request) {
	d, err := s.storage.GetDependency(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get dependency")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDependency(w http.ResponseWriter, r *http.Request) {
	var d core.Dependency
	if err := decodeJSON(r, &d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.ID = chi.URLParam(r, "id")
	if err := d.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateDependency(r.Context(), d); err != nil {
		respondStorageError(w, r, err, "failed to update dependency")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteDependency(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete dependency")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "dependency deleted"})
}
