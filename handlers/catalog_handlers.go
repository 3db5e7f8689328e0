package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/giygas/pharmacie-api/catalog"
	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/validation"
	"github.com/go-chi/chi/v5"
)

// medicamentForm accepts quantiteStock as a JSON number or a numeric string
type medicamentForm struct {
	ID            string          `json:"id"`
	Nom           string          `json:"nom"`
	Dosage        string          `json:"dosage"`
	Forme         string          `json:"forme"`
	QuantiteStock json.RawMessage `json:"quantiteStock"`
}

// stockText returns quantiteStock as text: a JSON string is unquoted, a
// number is kept as written. Absent and null report present=false.
func stockText(raw json.RawMessage) (text string, present bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	return string(raw), true
}

func (f medicamentForm) input() interfaces.MedicamentInput {
	in := interfaces.MedicamentInput{ID: f.ID, Nom: f.Nom, Dosage: f.Dosage, Forme: f.Forme}
	in.QuantiteStock, _ = stockText(f.QuantiteStock)
	return in
}

// medicamentPatchForm is the PATCH body. quantiteStock follows the same rules
// as in medicamentForm.
type medicamentPatchForm struct {
	Nom           *string         `json:"nom"`
	Dosage        *string         `json:"dosage"`
	Forme         *string         `json:"forme"`
	QuantiteStock json.RawMessage `json:"quantiteStock"`
}

func (f medicamentPatchForm) patch() (interfaces.MedicamentPatch, error) {
	p := interfaces.MedicamentPatch{Nom: f.Nom, Dosage: f.Dosage, Forme: f.Forme}
	text, present := stockText(f.QuantiteStock)
	if !present {
		return p, nil
	}
	q, err := validation.ParseQuantiteStock(text)
	if err != nil {
		var errs validation.Errors
		errs.Add("quantiteStock", err.Error())
		return p, errs.Err()
	}
	p.QuantiteStock = &q
	return p, nil
}

// medicamentView adds the stock level shown next to each entry
type medicamentView struct {
	entities.Medicament
	Niveau      catalog.StockLevel `json:"niveau"`
	NiveauLabel string             `json:"niveauLabel"`
}

func viewOf(m entities.Medicament) medicamentView {
	lvl := catalog.LevelOf(m.QuantiteStock)
	return medicamentView{Medicament: m, Niveau: lvl, NiveauLabel: lvl.Label()}
}

func viewsOf(list []entities.Medicament) []medicamentView {
	out := make([]medicamentView, len(list))
	for i, m := range list {
		out[i] = viewOf(m)
	}
	return out
}

// ListMedicaments returns the whole catalog
func (h *HTTPHandlerImpl) ListMedicaments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, viewsOf(list))
}

// GetMedicament returns one catalog entry
func (h *HTTPHandlerImpl) GetMedicament(w http.ResponseWriter, r *http.Request) {
	m, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, viewOf(m))
}

// SearchMedicaments searches the catalog by name
func (h *HTTPHandlerImpl) SearchMedicaments(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	if term == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}
	if err := h.Validator.ValidateInput(term); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.Catalog.Search(r.Context(), term)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	// Always return 200 with results array (empty if no matches)
	RespondWithJSON(w, http.StatusOK, viewsOf(list))
}

// LowStock lists entries under ?seuil=, or the configured threshold
func (h *HTTPHandlerImpl) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.LowStockThreshold
	if s := r.URL.Query().Get("seuil"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			RespondWithError(w, http.StatusBadRequest, "seuil must be a non-negative integer")
			return
		}
		threshold = n
	}

	list, err := h.Catalog.LowStock(r.Context(), threshold)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"seuil":       threshold,
		"medicaments": viewsOf(list),
	})
}

// CreateMedicament adds a catalog entry
func (h *HTTPHandlerImpl) CreateMedicament(w http.ResponseWriter, r *http.Request) {
	var form medicamentForm
	if !decodeJSON(w, r, &form) {
		return
	}
	m, err := h.Catalog.Add(r.Context(), form.input())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, viewOf(m))
}

// UpdateMedicament applies a partial update
func (h *HTTPHandlerImpl) UpdateMedicament(w http.ResponseWriter, r *http.Request) {
	var form medicamentPatchForm
	if !decodeJSON(w, r, &form) {
		return
	}
	patch, err := form.patch()
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	m, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, viewOf(m))
}

// DeleteMedicament removes a catalog entry
func (h *HTTPHandlerImpl) DeleteMedicament(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
