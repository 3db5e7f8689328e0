package handlers

import (
	"net/http"

	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/workflow"
	"github.com/go-chi/chi/v5"
)

// ListMyOrdonnances returns the caller's prescriptions
func (h *HTTPHandlerImpl) ListMyOrdonnances(w http.ResponseWriter, r *http.Request) {
	list, err := h.Workflow.ListOrdonnances(r.Context(), claims(r).UserID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

// GetMyOrdonnance returns one of the caller's prescriptions. Someone else's
// prescription is reported as not found.
func (h *HTTPHandlerImpl) GetMyOrdonnance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := h.Workflow.GetOrdonnance(r.Context(), id)
	if err == nil && o.PatientID != claims(r).UserID {
		err = workflow.ErrOrdonnanceNotFound
	}
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, o)
}

// CreateCommande converts the caller's prescription into an order
func (h *HTTPHandlerImpl) CreateCommande(w http.ResponseWriter, r *http.Request) {
	var req interfaces.CreateCommandeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.OrdonnanceID = chi.URLParam(r, "id")
	req.PatientID = claims(r).UserID

	c, err := h.Workflow.CreateCommande(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, c)
}

// ListMyCommandes returns the caller's orders, newest first
func (h *HTTPHandlerImpl) ListMyCommandes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Workflow.ListCommandes(r.Context(), interfaces.CommandeFilter{PatientID: claims(r).UserID})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, list)
}

// GetMyCommande returns one of the caller's orders
func (h *HTTPHandlerImpl) GetMyCommande(w http.ResponseWriter, r *http.Request) {
	c, err := h.Workflow.GetCommande(r.Context(), chi.URLParam(r, "id"))
	if err == nil && c.PatientID != claims(r).UserID {
		err = workflow.ErrCommandeNotFound
	}
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, c)
}
