// Package catalog manages the medication catalog and its stock quantities.
package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/reconciliation"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/google/uuid"
)

var (
	ErrMedicamentNotFound = errors.New("medicament not found")
	ErrMedicamentExists   = errors.New("medicament id already exists")
)

// Compile-time check to ensure Service implements CatalogService
var _ interfaces.CatalogService = (*Service)(nil)

// Service is the catalog of medications
type Service struct {
	repos     *repository.Repositories
	validator interfaces.DataValidator
	newID     func() string
}

// NewService creates a catalog service over repos
func NewService(repos *repository.Repositories, validator interfaces.DataValidator) *Service {
	return &Service{
		repos:     repos,
		validator: validator,
		newID:     func() string { return "m" + uuid.NewString() },
	}
}

// List returns the whole catalog in stored order
func (s *Service) List(ctx context.Context) ([]entities.Medicament, error) {
	return s.repos.Medicaments.List(ctx)
}

// Get returns one medication
func (s *Service) Get(ctx context.Context, id string) (entities.Medicament, error) {
	m, found, err := s.repos.Medicaments.Get(ctx, id)
	if err != nil {
		return entities.Medicament{}, err
	}
	if !found {
		return entities.Medicament{}, fmt.Errorf("%w: %s", ErrMedicamentNotFound, id)
	}
	return m, nil
}

// Search returns medications whose name contains term, ignoring case,
// accents composition and surrounding spaces.
func (s *Service) Search(ctx context.Context, term string) ([]entities.Medicament, error) {
	snap, err := s.repos.Medicaments.Load(ctx)
	if err != nil {
		return nil, err
	}
	needle := reconciliation.NormalizeName(term)
	return snap.Filter(func(m entities.Medicament) bool {
		return strings.Contains(reconciliation.NormalizeName(m.Nom), needle)
	}), nil
}

// Add validates the form and appends a new medication
func (s *Service) Add(ctx context.Context, in interfaces.MedicamentInput) (entities.Medicament, error) {
	m, err := s.validator.ValidateMedicamentInput(in)
	if err != nil {
		return entities.Medicament{}, err
	}
	if m.ID == "" {
		m.ID = s.newID()
	}

	if err := s.repos.Medicaments.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return entities.Medicament{}, fmt.Errorf("%w: %s", ErrMedicamentExists, m.ID)
		}
		return entities.Medicament{}, err
	}

	logging.Info("Medicament added", "id", m.ID, "nom", m.Nom, "stock", m.QuantiteStock)
	return m, nil
}

// Update merges the non-nil fields of patch into the medication. Applying the
// same patch twice leaves the same result as once.
func (s *Service) Update(ctx context.Context, id string, patch interfaces.MedicamentPatch) (entities.Medicament, error) {
	var updated entities.Medicament
	err := s.repos.Medicaments.Mutate(ctx, func(snap *repository.Snapshot[entities.Medicament]) error {
		m, ok := snap.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMedicamentNotFound, id)
		}
		if patch.Nom != nil {
			m.Nom = strings.TrimSpace(*patch.Nom)
		}
		if patch.Dosage != nil {
			m.Dosage = strings.TrimSpace(*patch.Dosage)
		}
		if patch.Forme != nil {
			m.Forme = strings.TrimSpace(*patch.Forme)
		}
		if patch.QuantiteStock != nil {
			m.QuantiteStock = *patch.QuantiteStock
		}
		if err := s.validator.ValidateMedicament(&m); err != nil {
			return err
		}
		snap.Put(m)
		updated = m
		return nil
	})
	if err != nil {
		return entities.Medicament{}, err
	}
	return updated, nil
}

// Delete removes a medication
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repos.Medicaments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrMedicamentNotFound, id)
	}
	logging.Info("Medicament deleted", "id", id)
	return nil
}

// LowStock returns medications with less than threshold units, lowest first
func (s *Service) LowStock(ctx context.Context, threshold int) ([]entities.Medicament, error) {
	snap, err := s.repos.Medicaments.Load(ctx)
	if err != nil {
		return nil, err
	}
	low := snap.Filter(func(m entities.Medicament) bool { return m.QuantiteStock < threshold })
	slices.SortStableFunc(low, func(a, b entities.Medicament) int {
		return cmp.Compare(a.QuantiteStock, b.QuantiteStock)
	})
	return low, nil
}
