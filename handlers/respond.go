// Package handlers provides HTTP request handlers for the pharmacie API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/giygas/pharmacie-api/catalog"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/validation"
	"github.com/giygas/pharmacie-api/workflow"
	"github.com/go-chi/chi/v5/middleware"
)

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, errorBody(code, message))
}

func errorBody(code int, message string) map[string]any {
	return map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
}

// respondWithServiceError maps a service error to a status code. Anything it
// does not recognize is a store failure: logged, and answered with a generic 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case validation.IsValidation(err):
		body := errorBody(http.StatusBadRequest, "données invalides")
		body["fields"] = validation.Fields(err)
		RespondWithJSON(w, http.StatusBadRequest, body)

	case workflow.IsInput(err):
		RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, workflow.ErrOrdonnanceNotFound),
		errors.Is(err, workflow.ErrCommandeNotFound),
		errors.Is(err, workflow.ErrPatientNotFound),
		errors.Is(err, workflow.ErrPharmacieNotFound),
		errors.Is(err, catalog.ErrMedicamentNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrPatientExists),
		errors.Is(err, workflow.ErrOrdonnanceExists),
		errors.Is(err, catalog.ErrMedicamentExists):
		RespondWithError(w, http.StatusConflict, err.Error())

	default:
		logging.Error("Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		RespondWithError(w, http.StatusInternalServerError, "could not complete the request")
	}
}

// decodeJSON reads a single JSON object from the request body. On failure it
// writes the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil && dec.More() {
		err = errors.New("données après l'objet JSON")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		RespondWithError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("corps de requête trop volumineux, maximum %d octets", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		RespondWithError(w, http.StatusBadRequest, "corps de requête vide")
	default:
		RespondWithError(w, http.StatusBadRequest, "JSON invalide: "+err.Error())
	}
	return false
}
