// Package seed writes the demo data set: two accounts, a small catalog,
// four prescriptions and three pharmacies.
package seed

import (
	"context"

	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/repository"
)

func seedCollection[T any](ctx context.Context, repo *repository.Repository[T], items []T, force bool) (bool, error) {
	if !force {
		existing, err := repo.List(ctx)
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			return false, nil
		}
	}
	if err := repo.Replace(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// Run writes each demo collection that is empty, or every one of them when
// force is set. Orders and the journal are never touched. It returns the
// keys written.
func Run(ctx context.Context, repos *repository.Repositories, force bool) ([]string, error) {
	written := []string{}
	steps := []struct {
		key string
		run func() (bool, error)
	}{
		{repos.Users.Key(), func() (bool, error) { return seedCollection(ctx, repos.Users, Users(), force) }},
		{repos.Medicaments.Key(), func() (bool, error) { return seedCollection(ctx, repos.Medicaments, Medicaments(), force) }},
		{repos.Ordonnances.Key(), func() (bool, error) { return seedCollection(ctx, repos.Ordonnances, Ordonnances(), force) }},
		{repos.Pharmacies.Key(), func() (bool, error) { return seedCollection(ctx, repos.Pharmacies, Pharmacies(), force) }},
		{repos.Patients.Key(), func() (bool, error) { return seedCollection(ctx, repos.Patients, Patients(), force) }},
	}

	for _, step := range steps {
		ok, err := step.run()
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, step.key)
		}
	}

	if len(written) > 0 {
		logging.Info("Seed data written", "collections", written, "force", force)
	}
	return written, nil
}
