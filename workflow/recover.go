package workflow

import (
	"context"
	"fmt"

	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/metrics"
)

// Recover finishes conversions interrupted between their writes.
//
// A journal entry whose order exists gets its prescription deleted. One whose
// order was never written is dropped and the prescription stays. Any
// prescription still referenced by an existing order is deleted as well.
// Running Recover again changes nothing.
func (s *Service) Recover(ctx context.Context) (interfaces.RecoveryReport, error) {
	report := interfaces.RecoveryReport{OrdonnancesDeleted: []string{}}

	entries, err := s.repos.Journal.List(ctx)
	if err != nil {
		return report, fmt.Errorf("recover: %w", err)
	}
	commandes, err := s.repos.Commandes.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("recover: %w", err)
	}

	deleted := make(map[string]bool)
	for _, e := range entries {
		if commandes.Has(e.CommandeID) {
			ok, err := s.repos.Ordonnances.Delete(ctx, e.OrdonnanceID)
			if err != nil {
				return report, fmt.Errorf("recover %s: %w", e.CommandeID, err)
			}
			if ok && !deleted[e.OrdonnanceID] {
				deleted[e.OrdonnanceID] = true
				report.OrdonnancesDeleted = append(report.OrdonnancesDeleted, e.OrdonnanceID)
			}
		} else {
			report.EntriesWithoutOrder++
		}

		if _, err := s.repos.Journal.Delete(ctx, e.CommandeID); err != nil {
			return report, fmt.Errorf("recover %s: %w", e.CommandeID, err)
		}
		report.EntriesReplayed++
		metrics.JournalRecovered.Inc()
	}

	ordonnances, err := s.repos.Ordonnances.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("recover: %w", err)
	}
	for _, c := range commandes.Items() {
		if deleted[c.OrdonnanceID] || !ordonnances.Has(c.OrdonnanceID) {
			continue
		}
		if _, err := s.repos.Ordonnances.Delete(ctx, c.OrdonnanceID); err != nil {
			return report, fmt.Errorf("recover sweep %s: %w", c.OrdonnanceID, err)
		}
		deleted[c.OrdonnanceID] = true
		report.OrdonnancesDeleted = append(report.OrdonnancesDeleted, c.OrdonnanceID)
	}

	if report.EntriesReplayed > 0 || len(report.OrdonnancesDeleted) > 0 {
		logging.Warn("Recovered interrupted conversions",
			"entries", report.EntriesReplayed,
			"without_order", report.EntriesWithoutOrder,
			"ordonnances_deleted", report.OrdonnancesDeleted,
		)
	}
	return report, nil
}
