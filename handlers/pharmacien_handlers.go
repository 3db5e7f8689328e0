package handlers

import (
	"net/http"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/go-chi/chi/v5"
)

// ListCommandes returns every order, optionally filtered by ?status=
func (h *HTTPHandlerImpl) ListCommandes(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.CommandeFilter{Status: entities.Statut(r.URL.Query().Get("status"))}
	list, err := h.Workflow.ListCommandes(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

// CountCommandes returns the number of orders per status
func (h *HTTPHandlerImpl) CountCommandes(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Workflow.CountByStatus(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, counts)
}

func (h *HTTPHandlerImpl) GetCommande(w http.ResponseWriter, r *http.Request) {
	c, err := h.Workflow.GetCommande(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, c)
}

// Disponibilite shows each line of an order against the catalog
func (h *HTTPHandlerImpl) Disponibilite(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Workflow.Disponibilite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, lines)
}

type statutRequest struct {
	Status entities.Statut `json:"status"`
}

// AdvanceStatus moves an order to the requested status. A change refused by
// the stock check answers 409 with the report of what is missing.
func (h *HTTPHandlerImpl) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	var req statutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.Workflow.AdvanceStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if !t.Applied {
		body := errorBody(http.StatusConflict, "stock insuffisant ou médicament absent du catalogue")
		body["transition"] = t
		RespondWithJSON(w, http.StatusConflict, body)
		return
	}
	RespondWithJSON(w, http.StatusOK, t)
}

func (h *HTTPHandlerImpl) ListPatients(w http.ResponseWriter, r *http.Request) {
	list, err := h.Patients.ListPatients(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (h *HTTPHandlerImpl) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.Patients.GetPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, p)
}

func (h *HTTPHandlerImpl) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var p entities.Patient
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := h.Patients.CreatePatient(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandlerImpl) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var p entities.Patient
	if !decodeJSON(w, r, &p) {
		return
	}
	updated, err := h.Patients.UpdatePatient(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandlerImpl) DeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := h.Patients.DeletePatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quality returns the data quality report, or the full daily report with ?complet=1
func (h *HTTPHandlerImpl) Quality(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("complet") != "" {
		rep, err := h.Reporter.Build(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, rep)
		return
	}

	q, err := h.Reporter.Quality(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, q)
}
