package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/repository"
)

// ListOrdonnances returns the prescriptions of a patient, or all of them
// when patientID is empty.
func (s *Service) ListOrdonnances(ctx context.Context, patientID string) ([]entities.Ordonnance, error) {
	snap, err := s.repos.Ordonnances.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Filter(func(o entities.Ordonnance) bool {
		return patientID == "" || o.PatientID == patientID
	}), nil
}

func (s *Service) GetOrdonnance(ctx context.Context, id string) (entities.Ordonnance, error) {
	o, found, err := s.repos.Ordonnances.Get(ctx, id)
	if err != nil {
		return entities.Ordonnance{}, err
	}
	if !found {
		return entities.Ordonnance{}, fmt.Errorf("%w: %s", ErrOrdonnanceNotFound, id)
	}
	return o, nil
}

// CreateOrdonnance validates and stores a new prescription. Date defaults to today.
func (s *Service) CreateOrdonnance(ctx context.Context, o entities.Ordonnance) (entities.Ordonnance, error) {
	o.MedecinName = strings.TrimSpace(o.MedecinName)
	o.Notes = strings.TrimSpace(o.Notes)
	o.Medicaments = entities.CopyLignes(o.Medicaments)
	for i := range o.Medicaments {
		o.Medicaments[i].NomMedicament = strings.TrimSpace(o.Medicaments[i].NomMedicament)
	}
	if err := s.validator.ValidateOrdonnance(&o); err != nil {
		return entities.Ordonnance{}, err
	}
	if o.ID == "" {
		o.ID = s.newID("o")
	}
	if o.Date == "" {
		o.Date = s.now().Format("2006-01-02")
	}

	if err := s.repos.Ordonnances.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return entities.Ordonnance{}, fmt.Errorf("%w: %s", ErrOrdonnanceExists, o.ID)
		}
		return entities.Ordonnance{}, err
	}
	return o, nil
}

// ListCommandes returns the orders matching filter, newest first
func (s *Service) ListCommandes(ctx context.Context, filter interfaces.CommandeFilter) ([]entities.Commande, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	snap, err := s.repos.Commandes.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := snap.Filter(func(c entities.Commande) bool {
		return (filter.PatientID == "" || c.PatientID == filter.PatientID) &&
			(filter.Status == "" || c.Status == filter.Status)
	})
	slices.SortStableFunc(out, func(a, b entities.Commande) int {
		return b.DateCreation.Compare(a.DateCreation)
	})
	return out, nil
}

func (s *Service) GetCommande(ctx context.Context, id string) (entities.Commande, error) {
	c, found, err := s.repos.Commandes.Get(ctx, id)
	if err != nil {
		return entities.Commande{}, err
	}
	if !found {
		return entities.Commande{}, fmt.Errorf("%w: %s", ErrCommandeNotFound, id)
	}
	return c, nil
}

// CountByStatus counts orders per lifecycle status, every status present
func (s *Service) CountByStatus(ctx context.Context) (map[entities.Statut]int, error) {
	snap, err := s.repos.Commandes.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[entities.Statut]int, 3)
	for _, st := range entities.Statuts() {
		counts[st] = 0
	}
	for _, c := range snap.Items() {
		counts[c.Status]++
	}
	return counts, nil
}

func (s *Service) ListPharmacies(ctx context.Context) ([]entities.Pharmacie, error) {
	return s.repos.Pharmacies.List(ctx)
}
