package handlers

import (
	"net/http"

	"github.com/giygas/pharmacie-api/auth"
	"github.com/giygas/pharmacie-api/entities"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with every endpoint and no other middleware.
func (h *HTTPHandlerImpl) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds every endpoint to r. Patient routes answer only for the
// caller's own records, pharmacist routes see everything.
func (h *HTTPHandlerImpl) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.Tokens))

		r.Get("/me", h.Me)
		r.Get("/pharmacies", h.ListPharmacies)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(entities.RolePatient))

			r.Get("/ordonnances", h.ListMyOrdonnances)
			r.Get("/ordonnances/{id}", h.GetMyOrdonnance)
			r.Post("/ordonnances/{id}/commande", h.CreateCommande)
			r.Get("/commandes", h.ListMyCommandes)
			r.Get("/commandes/{id}", h.GetMyCommande)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(entities.RolePharmacien))

			r.Get("/medicaments", h.ListMedicaments)
			r.Post("/medicaments", h.CreateMedicament)
			r.Get("/medicaments/recherche/{term}", h.SearchMedicaments)
			r.Get("/medicaments/stock-faible", h.LowStock)
			r.Get("/medicaments/{id}", h.GetMedicament)
			r.Patch("/medicaments/{id}", h.UpdateMedicament)
			r.Delete("/medicaments/{id}", h.DeleteMedicament)

			r.Get("/pharmacien/commandes", h.ListCommandes)
			r.Get("/pharmacien/commandes/compteurs", h.CountCommandes)
			r.Get("/pharmacien/commandes/{id}", h.GetCommande)
			r.Get("/pharmacien/commandes/{id}/disponibilite", h.Disponibilite)
			r.Post("/pharmacien/commandes/{id}/statut", h.AdvanceStatus)
			r.Get("/pharmacien/qualite", h.Quality)

			r.Get("/patients", h.ListPatients)
			r.Post("/patients", h.CreatePatient)
			r.Get("/patients/{id}", h.GetPatient)
			r.Put("/patients/{id}", h.UpdatePatient)
			r.Delete("/patients/{id}", h.DeletePatient)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusNotFound, "route introuvable")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusMethodNotAllowed, "méthode non autorisée")
	})
}
