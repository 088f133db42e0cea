package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PierreBrethes/life-map-back/internal/core"
	applog "github.com/PierreBrethes/life-map-back/internal/log"
)

func (s *Server) handleAppendEntry(w http.ResponseWriter, r *http.Request) {
	// Amounts arrive as strings so clients can use either decimal separator.
	var req struct {
		core.LedgerEntry
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	value, err := core.ParseAmount(req.Value)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	e := req.LedgerEntry
	e.Value = value
	if err := e.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.ledger.AppendLedgerEntry(r.Context(), e)
	if err != nil {
		respondStorageError(w, r, err, "failed to append ledger entry")
		return
	}
	s.invalidateEntries(created.ItemID)
	s.logger.InfoContext(r.Context(), "Ledger entry recorded",
		applog.FieldEntryID, created.ID,
		applog.FieldItemID, created.ItemID,
		applog.FieldAmount, created.Value.String())
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDateParam(q.Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseDateParam(q.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	key := entriesCacheKey(q.Get("itemId"), from, to)
	if cached, found := s.entriesCache.Get(key); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	entries, err := s.ledger.ListEntries(r.Context(), q.Get("itemId"), from, to)
	if err != nil {
		respondStorageError(w, r, err, "failed to list ledger entries")
		return
	}
	s.entriesCache.Set(key, entries)
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.ledger.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get ledger entry")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.ledger.GetEntry(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err, "failed to get ledger entry")
		return
	}
	if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
		respondStorageError(w, r, err, "failed to delete ledger entry")
		return
	}
	s.invalidateEntries(entry.ItemID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var sub core.Subscription
	if err := decodeJSON(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := sub.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateSubscription(r.Context(), sub)
	if err != nil {
		respondStorageError(w, r, err, "failed to create subscription")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.storage.ListSubscriptions(r.Context())
	if err != nil {
		respondStorageError(w, r, err, "failed to list subscriptions")
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.storage.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get subscription")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var sub core.Subscription
	if err := decodeJSON(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub.ID = chi.URLParam(r, "id")
	if err := sub.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.UpdateSubscription(r.Context(), sub); err != nil {
		respondStorageError(w, r, err, "failed to update subscription")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteSubscription(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete subscription")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "subscription deleted"})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule core.RecurringRule
	if err := decodeJSON(r, &rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now := time.Now().UTC()
	if rule.StartDate.IsZero() {
		rule.StartDate = now
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now
	rule.LastProcessed = time.Time{}
	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.storage.CreateRecurringRule(r.Context(), rule)
	if err != nil {
		respondStorageError(w, r, err, "failed to create recurring rule")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.storage.ListRecurringRules(r.Context())
	if err != nil {
		respondStorageError(w, r, err, "failed to list recurring rules")
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.storage.GetRecurringRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStorageError(w, r, err, "failed to get recurring rule")
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

// handleUpdateRule replaces the mutable fields of a rule. The watermark is
// kept from the stored rule so edits can never move reconciliation
// backwards.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var rule core.RecurringRule
	if err := decodeJSON(r, &rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rule.ID = chi.URLParam(r, "id")

	existing, err := s.storage.GetRecurringRule(r.Context(), rule.ID)
	if err != nil {
		respondStorageError(w, r, err, "failed to get recurring rule")
		return
	}
	rule.LastProcessed = existing.LastProcessed
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()

	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.storage.SaveRecurringRule(r.Context(), rule); err != nil {
		respondStorageError(w, r, err, "failed to update recurring rule")
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteRecurringRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStorageError(w, r, err, "failed to delete recurring rule")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "rule deleted"})
}

func (s *Server) handleRecurringSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Run(r.Context(), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reconciliation run failed", applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	if result.Posted > 0 {
		// Postings can touch any account.
		s.entriesCache.Purge()
	}
	s.logger.InfoContext(r.Context(), "Reconciliation completed",
		"posted", result.Posted, "rule_errors", len(result.Errors))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecurringMigrate(w http.ResponseWriter, r *http.Request) {
	result, err := s.migrator.Migrate(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Subscription migration failed", applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "migration failed")
		return
	}
	s.logger.InfoContext(r.Context(), "Subscription migration completed",
		"migrated", result.Migrated, "skipped", result.Skipped, "errors", len(result.Errors))
	respondJSON(w, http.StatusOK, result)
}

func entriesCacheKey(itemID string, from, to time.Time) string {
	return itemID + "|" + from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339)
}

// invalidateEntries drops cached list responses touching the given account,
// plus the unfiltered family.
func (s *Server) invalidateEntries(itemID string) {
	s.entriesCache.DeletePrefix(itemID + "|")
	s.entriesCache.DeletePrefix("|")
}
