package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/pharmacie-api/auth"
	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/health"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
)

// Reporter builds the pharmacist's quality and stock reports.
type Reporter interface {
	Quality(ctx context.Context) (*interfaces.DataQualityReport, error)
	Build(ctx context.Context) (health.Report, error)
}

// Deps are the services the handlers call.
type Deps struct {
	Auth              interfaces.Authenticator
	Tokens            interfaces.TokenIssuer
	Catalog           interfaces.CatalogService
	Workflow          interfaces.WorkflowService
	Patients          interfaces.PatientService
	Validator         interfaces.DataValidator
	Health            interfaces.HealthChecker
	Reporter          Reporter
	LowStockThreshold int
}

// HTTPHandlerImpl holds every endpoint of the API. Routing is done by the server.
type HTTPHandlerImpl struct {
	Deps
	startedAt time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(d Deps) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{Deps: d, startedAt: time.Now()}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      entities.User `json:"user"`
}

// Login checks credentials and returns a session token
func (h *HTTPHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondWithError(w, http.StatusBadRequest, "email et mot de passe requis")
		return
	}

	user, ok, err := h.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if !ok {
		logging.Info("Failed login attempt", "remote_addr", r.RemoteAddr)
		RespondWithError(w, http.StatusUnauthorized, "email ou mot de passe incorrect")
		return
	}

	token, expiresAt, err := h.Tokens.Issue(user)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logging.SetUserID(r.Context(), user.ID)
	logging.Info("User logged in", "user_id", user.ID, "role", user.Role)
	RespondWithJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: user.Public()})
}

// Me returns who the token belongs to
func (h *HTTPHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	RespondWithJSON(w, http.StatusOK, claims)
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Uptime string         `json:"uptime"`
	Data   map[string]any `json:"data"`
}

// HealthCheck reports store and collection health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, code := h.Health.HealthCheck(r.Context())
	RespondWithJSON(w, code, HealthResponse{
		Status: status,
		Uptime: formatUptimeHuman(time.Since(h.startedAt)),
		Data:   data,
	})
}

// ListPharmacies returns the pharmacies an order can be sent to
func (h *HTTPHandlerImpl) ListPharmacies(w http.ResponseWriter, r *http.Request) {
	ph, err := h.Workflow.ListPharmacies(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ph)
}

// claims returns the authenticated user. Routes using it sit behind auth.Middleware.
func claims(r *http.Request) interfaces.Claims {
	c, _ := auth.ClaimsFrom(r.Context())
	return c
}
