// Package interfaces defines core abstractions for the pharmacie API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/reconciliation"
)

// KVReader reads whole values by key. A missing key is reported with found=false
// and a nil error.
type KVReader interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
}

// KVWriter replaces the whole value stored under key.
type KVWriter interface {
	Set(ctx context.Context, key string, value []byte) error
}

// KVReadWriter is what repositories need to load and save a collection.
type KVReadWriter interface {
	KVReader
	KVWriter
}

// KVTx is a read/write view valid only inside TransactionalKVStore.Update.
type KVTx interface {
	KVReadWriter
}

// KVStore defines the contract for the persisted key-value store every
// entity collection lives in.
type KVStore interface {
	KVReadWriter
	Ping(ctx context.Context) error
	Close() error
}

// TransactionalKVStore is a KVStore able to commit several writes atomically.
// If fn returns an error nothing it wrote is kept.
type TransactionalKVStore interface {
	KVStore
	Update(ctx context.Context, fn func(tx KVTx) error) error
}

// DataQualityReport provides a summary of data quality issues
type DataQualityReport struct {
	DuplicateMedicamentIDs   []string `json:"duplicate_medicament_ids"`
	AmbiguousMedicamentNames []string `json:"ambiguous_medicament_names"`
	NegativeStock            []string `json:"negative_stock"`
	CommandesUnknownStatus   []string `json:"commandes_unknown_status"`
	ConvertedOrdonnances     []string `json:"converted_ordonnances"` // still present although an order references them
	UnmatchedLineNames       []string `json:"unmatched_line_names"`  // order lines with no catalog entry
}

// HasIssues reports whether any check found something.
func (r *DataQualityReport) HasIssues() bool {
	return len(r.DuplicateMedicamentIDs) > 0 || len(r.AmbiguousMedicamentNames) > 0 ||
		len(r.NegativeStock) > 0 || len(r.CommandesUnknownStatus) > 0 ||
		len(r.ConvertedOrdonnances) > 0 || len(r.UnmatchedLineNames) > 0
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateInput validates user search input
	ValidateInput(input string) error

	// ValidateMedicamentInput checks the catalog form and returns the parsed entry
	ValidateMedicamentInput(in MedicamentInput) (entities.Medicament, error)

	// ValidateMedicament checks a catalog entry before it is written
	ValidateMedicament(m *entities.Medicament) error

	// ValidateOrdonnance checks a prescription and its lines
	ValidateOrdonnance(o *entities.Ordonnance) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(medicaments []entities.Medicament, ordonnances []entities.Ordonnance,
		commandes []entities.Commande) *DataQualityReport
}

// MedicamentInput is the catalog form. QuantiteStock is kept as raw text so a
// non-numeric value can be reported as a validation error.
type MedicamentInput struct {
	ID            string
	Nom           string
	Dosage        string
	Forme         string
	QuantiteStock string
}

// MedicamentPatch updates only the non-nil fields.
type MedicamentPatch struct {
	Nom           *string `json:"nom,omitempty"`
	Dosage        *string `json:"dosage,omitempty"`
	Forme         *string `json:"forme,omitempty"`
	QuantiteStock *int    `json:"quantiteStock,omitempty"`
}

// CatalogService manages medications and their stock.
type CatalogService interface {
	List(ctx context.Context) ([]entities.Medicament, error)
	Get(ctx context.Context, id string) (entities.Medicament, error)
	Search(ctx context.Context, term string) ([]entities.Medicament, error)
	Add(ctx context.Context, in MedicamentInput) (entities.Medicament, error)
	Update(ctx context.Context, id string, patch MedicamentPatch) (entities.Medicament, error)
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context, threshold int) ([]entities.Medicament, error)
}

// CreateCommandeRequest asks to turn a prescription into an order.
type CreateCommandeRequest struct {
	OrdonnanceID  string `json:"-"`
	PatientID     string `json:"-"`
	PharmacieID   string `json:"pharmacieId"`
	LieuLivraison string `json:"lieuLivraison"`
	Remarques     string `json:"remarques"`
}

// CommandeFilter narrows ListCommandes. Empty fields match everything.
type CommandeFilter struct {
	PatientID string
	Status    entities.Statut
}

// Transition is the outcome of a lifecycle step. When Applied is false the
// order was left untouched and Report says why.
type Transition struct {
	Commande entities.Commande      `json:"commande"`
	From     entities.Statut        `json:"from"`
	To       entities.Statut        `json:"to"`
	Applied  bool                   `json:"applied"`
	Report   *reconciliation.Report `json:"report,omitempty"`
}

// RecoveryReport summarizes a journal replay.
type RecoveryReport struct {
	EntriesReplayed     int      `json:"entries_replayed"`
	OrdonnancesDeleted  []string `json:"ordonnances_deleted"`
	EntriesWithoutOrder int      `json:"entries_without_order"`
}

// WorkflowService covers prescriptions, orders and the order lifecycle.
type WorkflowService interface {
	ListOrdonnances(ctx context.Context, patientID string) ([]entities.Ordonnance, error)
	GetOrdonnance(ctx context.Context, id string) (entities.Ordonnance, error)
	CreateOrdonnance(ctx context.Context, o entities.Ordonnance) (entities.Ordonnance, error)

	CreateCommande(ctx context.Context, req CreateCommandeRequest) (entities.Commande, error)
	ListCommandes(ctx context.Context, filter CommandeFilter) ([]entities.Commande, error)
	GetCommande(ctx context.Context, id string) (entities.Commande, error)
	CountByStatus(ctx context.Context) (map[entities.Statut]int, error)

	AdvanceStatus(ctx context.Context, commandeID string, target entities.Statut) (Transition, error)
	Disponibilite(ctx context.Context, commandeID string) ([]reconciliation.Line, error)

	ListPharmacies(ctx context.Context) ([]entities.Pharmacie, error)
	Recover(ctx context.Context) (RecoveryReport, error)
}

// PatientService is the pharmacist's patient directory.
type PatientService interface {
	ListPatients(ctx context.Context) ([]entities.Patient, error)
	GetPatient(ctx context.Context, id string) (entities.Patient, error)
	CreatePatient(ctx context.Context, p entities.Patient) (entities.Patient, error)
	UpdatePatient(ctx context.Context, id string, p entities.Patient) (entities.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// Authenticator checks credentials against the user collection.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (entities.User, bool, error)
}

// Claims is what a session token says about its holder.
type Claims struct {
	UserID string        `json:"sub"`
	Role   entities.Role `json:"role"`
	Name   string        `json:"name"`
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(user entities.User) (token string, expiresAt time.Time, err error)
	Parse(token string) (Claims, error)
}

// Scheduler defines the contract for job scheduling.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck(ctx context.Context) (status string, details map[string]any, httpStatus int)
}
