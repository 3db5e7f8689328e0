package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/giygas/pharmacie-api/validation"
)

func validatePatient(p entities.Patient) error {
	var errs validation.Errors
	if p.Name == "" {
		errs.Add("name", "le nom est requis")
	}
	if p.Age < 0 || p.Age > 150 {
		errs.Add("age", "l'âge doit être compris entre 0 et 150")
	}
	return errs.Err()
}

func trimPatient(p entities.Patient) entities.Patient {
	p.Name = strings.TrimSpace(p.Name)
	p.Adresse = strings.TrimSpace(p.Adresse)
	p.Telephone = strings.TrimSpace(p.Telephone)
	return p
}

func (s *Service) ListPatients(ctx context.Context) ([]entities.Patient, error) {
	return s.repos.Patients.List(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id string) (entities.Patient, error) {
	p, found, err := s.repos.Patients.Get(ctx, id)
	if err != nil {
		return entities.Patient{}, err
	}
	if !found {
		return entities.Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return p, nil
}

func (s *Service) CreatePatient(ctx context.Context, p entities.Patient) (entities.Patient, error) {
	p = trimPatient(p)
	if err := validatePatient(p); err != nil {
		return entities.Patient{}, err
	}
	if p.ID == "" {
		p.ID = s.newID("p")
	}
	if err := s.repos.Patients.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return entities.Patient{}, fmt.Errorf("%w: %s", ErrPatientExists, p.ID)
		}
		return entities.Patient{}, err
	}
	return p, nil
}

// UpdatePatient replaces every field of the patient but its id
func (s *Service) UpdatePatient(ctx context.Context, id string, p entities.Patient) (entities.Patient, error) {
	p = trimPatient(p)
	p.ID = id
	if err := validatePatient(p); err != nil {
		return entities.Patient{}, err
	}
	err := s.repos.Patients.Mutate(ctx, func(snap *repository.Snapshot[entities.Patient]) error {
		if !snap.Has(id) {
			return fmt.Errorf("%w: %s", ErrPatientNotFound, id)
		}
		snap.Put(p)
		return nil
	})
	if err != nil {
		return entities.Patient{}, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	deleted, err := s.repos.Patients.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return nil
}
