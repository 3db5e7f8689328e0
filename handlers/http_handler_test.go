package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/pharmacie-api/auth"
	"github.com/giygas/pharmacie-api/catalog"
	"github.com/giygas/pharmacie-api/health"
	"github.com/giygas/pharmacie-api/kvstore"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/giygas/pharmacie-api/seed"
	"github.com/giygas/pharmacie-api/validation"
	"github.com/giygas/pharmacie-api/workflow"
)

type testAPI struct {
	router     http.Handler
	patient    string
	pharmacien string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repos := repository.New(store)
	if _, err := seed.Run(ctx, repos, true); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	v := validation.NewDataValidator()
	cat := catalog.NewService(repos, v)
	wf := workflow.NewService(repos, v)
	tokens := auth.NewIssuer("handler-test-secret-with-32-characters", time.Hour)

	h := NewHTTPHandler(Deps{
		Auth:              auth.NewAuthenticator(repos),
		Tokens:            tokens,
		Catalog:           cat,
		Workflow:          wf,
		Patients:          wf,
		Validator:         v,
		Health:            health.NewHealthChecker(store, repos, time.Minute),
		Reporter:          health.NewReporter(repos, cat, wf, v, 20),
		LowStockThreshold: 20,
	})
	api := &testAPI{router: h.Routes()}
	api.patient = api.login(t, "patient@test.com", "patient123")
	api.pharmacien = api.login(t, "pharmacien@test.com", "pharma123")
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if rr.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", rr.Code, rr.Body.String())
	}
	var resp loginResponse
	decode(t, rr, &resp)
	return resp.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "patient@test.com", "password": "patient123"})
	expectStatus(t, rr, http.StatusOK)
	var resp loginResponse
	decode(t, rr, &resp)
	if resp.User.ID != "u222" || resp.User.Password != "" {
		t.Errorf("Expected u222 without password, got %+v", resp.User)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": "patient@test.com", "password": "patient12"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "patient@test.com"}, http.StatusBadRequest},
		{"invalid json", "{", http.StatusBadRequest},
		{"empty body", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, http.MethodPost, "/auth/login", "", tt.body)
			expectStatus(t, rr, tt.want)
			var body map[string]any
			decode(t, rr, &body)
			if body["code"] != float64(tt.want) {
				t.Errorf("Expected code %d in body, got %v", tt.want, body["code"])
			}
		})
	}
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/me", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var me map[string]any
	decode(t, rr, &me)
	if me["sub"] != "u333" || me["role"] != "pharmacien" {
		t.Errorf("Unexpected claims: %v", me)
	}

	expectStatus(t, api.do(t, http.MethodGet, "/me", "", nil), http.StatusUnauthorized)
}

func TestRoleGating(t *testing.T) {
	api := newTestAPI(t)

	expectStatus(t, api.do(t, http.MethodGet, "/medicaments", api.patient, nil), http.StatusForbidden)
	expectStatus(t, api.do(t, http.MethodGet, "/ordonnances", api.pharmacien, nil), http.StatusForbidden)
	expectStatus(t, api.do(t, http.MethodGet, "/medicaments", "", nil), http.StatusUnauthorized)
	expectStatus(t, api.do(t, http.MethodGet, "/pharmacies", api.patient, nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/pharmacies", api.pharmacien, nil), http.StatusOK)
}

func TestPatientConvertsOrdonnance(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/ordonnances", api.patient, nil)
	expectStatus(t, rr, http.StatusOK)
	var ordonnances []map[string]any
	decode(t, rr, &ordonnances)
	if len(ordonnances) != 4 {
		t.Fatalf("Expected 4 ordonnances, got %d", len(ordonnances))
	}

	expectStatus(t, api.do(t, http.MethodGet, "/ordonnances/o888", api.patient, nil), http.StatusOK)

	rr = api.do(t, http.MethodPost, "/ordonnances/o888/commande", api.patient,
		map[string]string{"pharmacieId": "ph002", "lieuLivraison": "10 rue des Lilas"})
	expectStatus(t, rr, http.StatusCreated)
	var cmd map[string]any
	decode(t, rr, &cmd)
	if cmd["status"] != "en_attente" || cmd["ordonnanceId"] != "o888" || cmd["pharmacieName"] != "Pharmacie du Centre" {
		t.Errorf("Unexpected commande: %v", cmd)
	}

	expectStatus(t, api.do(t, http.MethodGet, "/ordonnances/o888", api.patient, nil), http.StatusNotFound)
	expectStatus(t, api.do(t, http.MethodPost, "/ordonnances/o888/commande", api.patient,
		map[string]string{"pharmacieId": "ph002", "lieuLivraison": "x"}), http.StatusNotFound)

	rr = api.do(t, http.MethodGet, "/commandes", api.patient, nil)
	expectStatus(t, rr, http.StatusOK)
	var mine []map[string]any
	decode(t, rr, &mine)
	if len(mine) != 1 {
		t.Fatalf("Expected 1 commande, got %d", len(mine))
	}
	expectStatus(t, api.do(t, http.MethodGet, "/commandes/"+cmd["id"].(string), api.patient, nil), http.StatusOK)
}

func TestCreateCommandeErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"no pharmacie", map[string]string{"lieuLivraison": "ici"}, http.StatusBadRequest},
		{"no lieu", map[string]string{"pharmacieId": "ph001", "lieuLivraison": "  "}, http.StatusBadRequest},
		{"unknown pharmacie", map[string]string{"pharmacieId": "ph999", "lieuLivraison": "ici"}, http.StatusNotFound},
		{"bad json", `{"pharmacieId":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, api.do(t, http.MethodPost, "/ordonnances/o889/commande", api.patient, tt.body), tt.want)
		})
	}
	// nothing was converted
	expectStatus(t, api.do(t, http.MethodGet, "/ordonnances/o889", api.patient, nil), http.StatusOK)
}

func TestAdvanceStatusGuard(t *testing.T) {
	api := newTestAPI(t)

	expectStatus(t, api.do(t, http.MethodPatch, "/medicaments/m002", api.pharmacien,
		map[string]int{"quantiteStock": 10}), http.StatusOK)

	rr := api.do(t, http.MethodPost, "/ordonnances/o889/commande", api.patient,
		map[string]string{"pharmacieId": "ph001", "lieuLivraison": "domicile"})
	expectStatus(t, rr, http.StatusCreated)
	var cmd struct {
		ID string `json:"id"`
	}
	decode(t, rr, &cmd)
	statut := "/pharmacien/commandes/" + cmd.ID + "/statut"

	rr = api.do(t, http.MethodGet, "/pharmacien/commandes/"+cmd.ID+"/disponibilite", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var lines []map[string]any
	decode(t, rr, &lines)
	if len(lines) != 2 || lines[0]["isAvailable"] != false || lines[0]["quantityNeeded"] != float64(21) {
		t.Errorf("Unexpected availability: %v", lines)
	}

	rr = api.do(t, http.MethodPost, statut, api.pharmacien, map[string]string{"status": "en_preparation"})
	expectStatus(t, rr, http.StatusConflict)
	var blocked struct {
		Transition struct {
			Applied bool `json:"applied"`
			Report  struct {
				Insufficient []struct {
					Name           string `json:"name"`
					StockQuantity  int    `json:"stockQuantity"`
					QuantityNeeded int    `json:"quantityNeeded"`
				} `json:"insufficient"`
			} `json:"report"`
		} `json:"transition"`
	}
	decode(t, rr, &blocked)
	ins := blocked.Transition.Report.Insufficient
	if blocked.Transition.Applied || len(ins) != 1 || ins[0].StockQuantity != 10 || ins[0].QuantityNeeded != 21 {
		t.Errorf("Unexpected blocked transition: %+v", blocked)
	}

	expectStatus(t, api.do(t, http.MethodPatch, "/medicaments/m002", api.pharmacien,
		map[string]int{"quantiteStock": 25}), http.StatusOK)

	rr = api.do(t, http.MethodPost, statut, api.pharmacien, map[string]string{"status": "en_preparation"})
	expectStatus(t, rr, http.StatusOK)

	expectStatus(t, api.do(t, http.MethodPost, statut, api.pharmacien, map[string]string{"status": "en_attente"}), http.StatusConflict)
	expectStatus(t, api.do(t, http.MethodPost, statut, api.pharmacien, map[string]string{"status": "livree"}), http.StatusBadRequest)
	expectStatus(t, api.do(t, http.MethodPost, statut, api.pharmacien, map[string]string{"status": "prete"}), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodPost, "/pharmacien/commandes/c404/statut", api.pharmacien,
		map[string]string{"status": "prete"}), http.StatusNotFound)

	rr = api.do(t, http.MethodGet, "/pharmacien/commandes/compteurs", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var counts map[string]int
	decode(t, rr, &counts)
	if counts["prete"] != 1 || counts["en_attente"] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}

	rr = api.do(t, http.MethodGet, "/pharmacien/commandes?status=prete", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var ready []map[string]any
	decode(t, rr, &ready)
	if len(ready) != 1 {
		t.Errorf("Expected 1 ready commande, got %d", len(ready))
	}
	expectStatus(t, api.do(t, http.MethodGet, "/pharmacien/commandes?status=perdue", api.pharmacien, nil), http.StatusBadRequest)
}

func TestCatalogEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/medicaments", api.pharmacien,
		`{"nom":"Smecta","dosage":"3 g","forme":"Poudre","quantiteStock":"12"}`)
	expectStatus(t, rr, http.StatusCreated)
	var created map[string]any
	decode(t, rr, &created)
	if created["quantiteStock"] != float64(12) || created["niveau"] != "stock_faible" {
		t.Errorf("Unexpected created entry: %v", created)
	}
	if !strings.HasPrefix(created["id"].(string), "m") {
		t.Errorf("Expected generated id, got %v", created["id"])
	}

	rr = api.do(t, http.MethodPost, "/medicaments", api.pharmacien,
		`{"nom":"","dosage":"3 g","forme":"Poudre","quantiteStock":"abc"}`)
	expectStatus(t, rr, http.StatusBadRequest)
	var invalid struct {
		Fields []validation.FieldError `json:"fields"`
	}
	decode(t, rr, &invalid)
	if len(invalid.Fields) != 2 {
		t.Errorf("Expected 2 field errors, got %+v", invalid.Fields)
	}

	expectStatus(t, api.do(t, http.MethodPost, "/medicaments", api.pharmacien,
		`{"id":"m001","nom":"X","dosage":"1","forme":"Y","quantiteStock":1}`), http.StatusConflict)

	rr = api.do(t, http.MethodGet, "/medicaments/recherche/doli", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var found []map[string]any
	decode(t, rr, &found)
	if len(found) != 1 || found[0]["id"] != "m001" {
		t.Errorf("Expected Doliprane, got %v", found)
	}
	expectStatus(t, api.do(t, http.MethodGet, "/medicaments/recherche/a", api.pharmacien, nil), http.StatusBadRequest)

	rr = api.do(t, http.MethodGet, "/medicaments/stock-faible", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var low struct {
		Seuil       int              `json:"seuil"`
		Medicaments []map[string]any `json:"medicaments"`
	}
	decode(t, rr, &low)
	if low.Seuil != 20 || len(low.Medicaments) != 1 {
		t.Errorf("Expected Smecta alone under 20, got %+v", low)
	}
	expectStatus(t, api.do(t, http.MethodGet, "/medicaments/stock-faible?seuil=-1", api.pharmacien, nil), http.StatusBadRequest)

	expectStatus(t, api.do(t, http.MethodDelete, "/medicaments/m005", api.pharmacien, nil), http.StatusNoContent)
	expectStatus(t, api.do(t, http.MethodGet, "/medicaments/m005", api.pharmacien, nil), http.StatusNotFound)
	expectStatus(t, api.do(t, http.MethodDelete, "/medicaments/m005", api.pharmacien, nil), http.StatusNotFound)
}

func TestPatchMedicamentStock(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPatch, "/medicaments/m001", api.pharmacien, `{"quantiteStock":"12"}`)
	expectStatus(t, rr, http.StatusOK)
	var updated map[string]any
	decode(t, rr, &updated)
	if updated["quantiteStock"] != float64(12) {
		t.Errorf("Expected stock 12 from a numeric string, got %v", updated["quantiteStock"])
	}

	rr = api.do(t, http.MethodPatch, "/medicaments/m001", api.pharmacien, `{"quantiteStock":7}`)
	expectStatus(t, rr, http.StatusOK)

	tests := []struct {
		name string
		body string
	}{
		{"not a number", `{"quantiteStock":"douze"}`},
		{"negative", `{"quantiteStock":-3}`},
		{"decimal", `{"quantiteStock":1.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, http.MethodPatch, "/medicaments/m001", api.pharmacien, tt.body)
			expectStatus(t, rr, http.StatusBadRequest)
			var invalid struct {
				Fields []validation.FieldError `json:"fields"`
			}
			decode(t, rr, &invalid)
			if len(invalid.Fields) != 1 || invalid.Fields[0].Field != "quantiteStock" {
				t.Errorf("Expected a quantiteStock field error, got %+v", invalid.Fields)
			}
		})
	}

	// a rejected patch leaves the entry untouched
	rr = api.do(t, http.MethodGet, "/medicaments/m001", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var current map[string]any
	decode(t, rr, &current)
	if current["quantiteStock"] != float64(7) {
		t.Errorf("Expected stock 7, got %v", current["quantiteStock"])
	}
}

func TestPatientEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/patients", api.pharmacien, map[string]any{"name": "Paul Durand", "age": 30})
	expectStatus(t, rr, http.StatusCreated)
	var p map[string]any
	decode(t, rr, &p)
	id := p["id"].(string)

	expectStatus(t, api.do(t, http.MethodPost, "/patients", api.pharmacien, map[string]any{"name": ""}), http.StatusBadRequest)

	rr = api.do(t, http.MethodPost, "/patients", api.pharmacien, map[string]any{"id": "u222", "name": "Doublon"})
	expectStatus(t, rr, http.StatusConflict)
	var conflict map[string]any
	decode(t, rr, &conflict)
	if !strings.Contains(conflict["message"].(string), "u222") {
		t.Errorf("Expected the duplicate id in the message, got %v", conflict["message"])
	}
	expectStatus(t, api.do(t, http.MethodPut, "/patients/"+id, api.pharmacien, map[string]any{"name": "Paul D.", "age": 31}), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/patients/"+id, api.pharmacien, nil), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodDelete, "/patients/"+id, api.pharmacien, nil), http.StatusNoContent)
	expectStatus(t, api.do(t, http.MethodGet, "/patients/"+id, api.pharmacien, nil), http.StatusNotFound)
}

func TestHealthAndQuality(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var hr HealthResponse
	decode(t, rr, &hr)
	if hr.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", hr.Status)
	}

	expectStatus(t, api.do(t, http.MethodGet, "/pharmacien/qualite", api.pharmacien, nil), http.StatusOK)

	rr = api.do(t, http.MethodGet, "/pharmacien/qualite?complet=1", api.pharmacien, nil)
	expectStatus(t, rr, http.StatusOK)
	var rep health.Report
	decode(t, rr, &rep)
	if rep.Threshold != 20 || rep.Quality == nil {
		t.Errorf("Unexpected report: %+v", rep)
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	rr := api.do(t, http.MethodGet, "/nope", "", nil)
	expectStatus(t, rr, http.StatusNotFound)
	var body map[string]any
	decode(t, rr, &body)
	if body["message"] != "route introuvable" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestFormatUptimeHuman(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{2*time.Minute + 3*time.Second, "2m 3s"},
		{26*time.Hour + time.Second, "1d 2h 0m 1s"},
	}
	for _, tt := range tests {
		if got := formatUptimeHuman(tt.in); got != tt.want {
			t.Errorf("formatUptimeHuman(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
