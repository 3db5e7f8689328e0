// Package reconciliation matches prescribed medication lines against the
// catalog. Everything here is pure: no store access, no mutation of inputs.
package reconciliation

import (
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName is the matching key for a medication name: trimmed, NFC
// normalized and case folded.
func NormalizeName(name string) string {
	// A Caser keeps state, so one per call.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

// Index maps normalized names to catalog entries. The first entry wins when
// two share a name.
func Index(catalog []entities.Medicament) map[string]entities.Medicament {
	idx := make(map[string]entities.Medicament, len(catalog))
	for _, m := range catalog {
		key := NormalizeName(m.Nom)
		if _, exists := idx[key]; !exists {
			idx[key] = m
		}
	}
	return idx
}

// Line is a prescription line augmented with its catalog situation.
type Line struct {
	entities.LigneMedicament
	StockQuantity   int  `json:"stockQuantity"`
	QuantityNeeded  int  `json:"quantityNeeded"`
	IsAvailable     bool `json:"isAvailable"`
	ExistsInCatalog bool `json:"existsInCatalog"`
}

// Reconcile projects every line against the catalog, in line order.
// Matching is by name, not by IDMedicament, so entries added after the
// prescription was written still match.
func Reconcile(lines []entities.LigneMedicament, catalog []entities.Medicament) []Line {
	idx := Index(catalog)
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, reconcileLine(l, idx))
	}
	return out
}

func reconcileLine(l entities.LigneMedicament, idx map[string]entities.Medicament) Line {
	line := Line{
		LigneMedicament: l,
		QuantityNeeded:  l.QuantiteNecessaire(),
	}
	if m, ok := idx[NormalizeName(l.NomMedicament)]; ok {
		line.ExistsInCatalog = true
		line.StockQuantity = m.QuantiteStock
		line.IsAvailable = m.QuantiteStock >= line.QuantityNeeded
	}
	return line
}

// Missing is a line whose medication is not in the catalog.
type Missing struct {
	Name string `json:"name"`
}

// Insufficient is a line the current stock cannot cover.
type Insufficient struct {
	Name           string `json:"name"`
	StockQuantity  int    `json:"stockQuantity"`
	QuantityNeeded int    `json:"quantityNeeded"`
}

// Report lists every line blocking preparation of an order.
type Report struct {
	Missing      []Missing      `json:"missing"`
	Insufficient []Insufficient `json:"insufficient"`
}

// Blocked is true when at least one line is missing or insufficient.
func (r Report) Blocked() bool {
	return len(r.Missing) > 0 || len(r.Insufficient) > 0
}

// MissingNames returns the names listed under Missing.
func (r Report) MissingNames() []string {
	names := make([]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		names = append(names, m.Name)
	}
	return names
}

// Check classifies every line. A single missing or insufficient line is
// enough to block; there is no partial preparation.
func Check(lines []entities.LigneMedicament, catalog []entities.Medicament) Report {
	report := Report{Missing: []Missing{}, Insufficient: []Insufficient{}}
	for _, line := range Reconcile(lines, catalog) {
		switch {
		case !line.ExistsInCatalog:
			report.Missing = append(report.Missing, Missing{Name: line.NomMedicament})
		case !line.IsAvailable:
			report.Insufficient = append(report.Insufficient, Insufficient{
				Name:           line.NomMedicament,
				StockQuantity:  line.StockQuantity,
				QuantityNeeded: line.QuantityNeeded,
			})
		}
	}
	return report
}
