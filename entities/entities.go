// Package entities holds the records persisted by the pharmacie API. JSON field
// names are the persisted vocabulary and must not change.
package entities

import "time"

// Persisted collection keys, one per entity type.
const (
	KeyUsers       = "users"
	KeyMedicaments = "medicaments"
	KeyOrdonnances = "ordonnances"
	KeyCommandes   = "commandes"
	KeyPatients    = "patients"
	KeyPharmacies  = "pharmacies"
	KeyJournal     = "journal"
)

// AllKeys lists every collection key.
func AllKeys() []string {
	return []string{KeyUsers, KeyMedicaments, KeyOrdonnances, KeyCommandes, KeyPatients, KeyPharmacies, KeyJournal}
}

// Medicament is a catalog entry
type Medicament struct {
	ID            string `json:"id"`
	Nom           string `json:"nom"`
	Dosage        string `json:"dosage"`
	Forme         string `json:"forme"`
	QuantiteStock int    `json:"quantiteStock"`
}

// LigneMedicament is one prescribed medication. The name is a copy taken at
// prescription time, not a live reference to the catalog.
type LigneMedicament struct {
	IDMedicament    string `json:"idMedicament"`
	NomMedicament   string `json:"nomMedicament"`
	Dosage          string `json:"dosage"`
	QuantiteParJour int    `json:"quantiteParJour"`
	Duree           int    `json:"duree"`
}

// QuantiteNecessaire is the number of units needed for the whole treatment.
func (l LigneMedicament) QuantiteNecessaire() int {
	return l.QuantiteParJour * l.Duree
}

// CopyLignes returns a copy of lines that shares no backing array with the input.
func CopyLignes(lines []LigneMedicament) []LigneMedicament {
	if lines == nil {
		return nil
	}
	out := make([]LigneMedicament, len(lines))
	copy(out, lines)
	return out
}

// Ordonnance is a prescription. It lives until converted into a Commande.
type Ordonnance struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	MedecinID   string            `json:"medecinId"`
	MedecinName string            `json:"medecinName"`
	Medicaments []LigneMedicament `json:"medicaments"`
	Date        string            `json:"date"`
	Notes       string            `json:"notes"`
}

// Commande is a pharmacy order created from an Ordonnance.
type Commande struct {
	ID            string            `json:"id"`
	OrdonnanceID  string            `json:"ordonnanceId"`
	PatientID     string            `json:"patientId"`
	PharmacienID  string            `json:"pharmacienId"`
	PharmacieName string            `json:"pharmacieName"`
	LieuLivraison string            `json:"lieuLivraison"`
	Remarques     string            `json:"remarques,omitempty"`
	DateCreation  time.Time         `json:"dateCreation"`
	Status        Statut            `json:"status"`
	Medicaments   []LigneMedicament `json:"medicaments"`
}

// Pharmacie is a pharmacy a patient can send an order to.
type Pharmacie struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Patient is a patient record managed by pharmacists.
type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

// JournalStage marks how far a non-atomic conversion got.
type JournalStage string

const StagePendingDelete JournalStage = "pending_delete"

// JournalEntry records an in-flight prescription to order conversion on
// stores without transactions.
type JournalEntry struct {
	CommandeID   string       `json:"commandeId"`
	OrdonnanceID string       `json:"ordonnanceId"`
	Stage        JournalStage `json:"stage"`
	CreatedAt    time.Time    `json:"createdAt"`
}
