package medicamentsparser

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/reconciliation"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/google/uuid"
)

// ImportResult summarizes one catalog import.
type ImportResult struct {
	Parsed            int        `json:"parsed"`
	Added             int        `json:"added"`
	AlreadyInCatalog  int        `json:"already_in_catalog"`
	NotCommercialised int        `json:"not_commercialised"`
	Invalid           int        `json:"invalid"`
	Stats             ParseStats `json:"-"`
}

// Importer adds BDPM specialties to the catalog with a stock of zero.
type Importer struct {
	repos     *repository.Repositories
	validator interfaces.DataValidator
	newID     func() string
}

func NewImporter(repos *repository.Repositories, validator interfaces.DataValidator) *Importer {
	return &Importer{
		repos:     repos,
		validator: validator,
		newID:     func() string { return "m" + uuid.NewString() },
	}
}

// Import reads source (a file path or URL) and adds every commercialised
// specialty whose normalized name is not already in the catalog. The catalog
// is written once.
func (im *Importer) Import(ctx context.Context, source string) (ImportResult, error) {
	r, err := Open(ctx, source)
	if err != nil {
		return ImportResult{}, err
	}
	specialites, stats, err := ParseSpecialites(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", source, err)
	}

	result := ImportResult{Parsed: len(specialites), Stats: stats}
	err = im.repos.Medicaments.Mutate(ctx, func(snap *repository.Snapshot[entities.Medicament]) error {
		known := reconciliation.Index(snap.Items())
		for _, s := range specialites {
			if !s.Commercialised() {
				result.NotCommercialised++
				continue
			}
			m := im.toMedicament(s)
			key := reconciliation.NormalizeName(m.Nom)
			if _, exists := known[key]; exists {
				result.AlreadyInCatalog++
				continue
			}
			if err := im.validator.ValidateMedicament(&m); err != nil {
				result.Invalid++
				logging.Debug("Skipping BDPM specialty", "cis", s.Cis, "error", err)
				continue
			}
			if err := snap.Insert(m); err != nil {
				return err
			}
			known[key] = m
			result.Added++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("import catalog: %w", err)
	}

	logging.Info("Catalog import completed",
		"source", source,
		"parsed", result.Parsed,
		"added", result.Added,
		"already_in_catalog", result.AlreadyInCatalog,
		"not_commercialised", result.NotCommercialised,
		"invalid", result.Invalid,
	)
	return result, nil
}

func (im *Importer) toMedicament(s Specialite) entities.Medicament {
	nom, dosage := SplitDenomination(s.Denomination)
	if dosage == "" {
		dosage = "non précisé"
	}
	forme := s.FormePharmaceutique
	if r, size := utf8.DecodeRuneInString(forme); size > 0 {
		forme = string(unicode.ToUpper(r)) + forme[size:]
	}
	return entities.Medicament{
		ID:            im.newID(),
		Nom:           nom,
		Dosage:        dosage,
		Forme:         forme,
		QuantiteStock: 0,
	}
}
