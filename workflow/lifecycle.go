package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/metrics"
	"github.com/giygas/pharmacie-api/reconciliation"
	"github.com/giygas/pharmacie-api/repository"
)

// AdvanceStatus moves an order to target, which must be the next status of
// its lifecycle. Starting preparation is guarded by the stock check: if any
// line is missing from the catalog or short on stock nothing changes and the
// returned Transition has Applied false and the report. Stock is not
// decremented.
func (s *Service) AdvanceStatus(ctx context.Context, commandeID string, target entities.Statut) (interfaces.Transition, error) {
	if !target.Valid() {
		return interfaces.Transition{}, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	var (
		t   interfaces.Transition
		err error
	)
	if s.repos.Transactional() {
		err = s.repos.Update(ctx, func(tx *repository.Repositories) error {
			var err error
			t, err = s.advance(ctx, tx, commandeID, target)
			return err
		})
	} else {
		t, err = s.advance(ctx, s.repos, commandeID, target)
	}

	switch {
	case err != nil:
		var te *TransitionError
		if errors.As(err, &te) {
			metrics.CommandeTransitions.WithLabelValues(string(te.From), string(te.To), metrics.ResultRejected).Inc()
		}
		return interfaces.Transition{}, err
	case !t.Applied:
		metrics.CommandeTransitions.WithLabelValues(string(t.From), string(t.To), metrics.ResultBlocked).Inc()
		metrics.ReconciliationBlocks.WithLabelValues("missing").Add(float64(len(t.Report.Missing)))
		metrics.ReconciliationBlocks.WithLabelValues("insufficient").Add(float64(len(t.Report.Insufficient)))
		logging.Info("Commande preparation blocked",
			"commande_id", commandeID,
			"missing", t.Report.MissingNames(),
			"insufficient", len(t.Report.Insufficient),
		)
	default:
		metrics.CommandeTransitions.WithLabelValues(string(t.From), string(t.To), metrics.ResultApplied).Inc()
		logging.Info("Commande status changed", "commande_id", commandeID, "from", t.From, "to", t.To)
	}
	return t, nil
}

func (s *Service) advance(ctx context.Context, repos *repository.Repositories, commandeID string, target entities.Statut) (interfaces.Transition, error) {
	c, found, err := repos.Commandes.Get(ctx, commandeID)
	if err != nil {
		return interfaces.Transition{}, err
	}
	if !found {
		return interfaces.Transition{}, fmt.Errorf("%w: %s", ErrCommandeNotFound, commandeID)
	}

	t := interfaces.Transition{Commande: c, From: c.Status, To: target}
	if !c.Status.CanTransitionTo(target) {
		return interfaces.Transition{}, &TransitionError{From: c.Status, To: target}
	}

	if c.Status == entities.StatutEnAttente {
		catalog, err := repos.Medicaments.List(ctx)
		if err != nil {
			return interfaces.Transition{}, err
		}
		report := reconciliation.Check(c.Medicaments, catalog)
		if report.Blocked() {
			t.Report = &report
			return t, nil
		}
	}

	c.Status = target
	if err := repos.Commandes.Put(ctx, c); err != nil {
		return interfaces.Transition{}, err
	}
	t.Commande = c
	t.Applied = true
	return t, nil
}

// Disponibilite reconciles each line of an order against the current catalog
func (s *Service) Disponibilite(ctx context.Context, commandeID string) ([]reconciliation.Line, error) {
	c, err := s.GetCommande(ctx, commandeID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repos.Medicaments.List(ctx)
	if err != nil {
		return nil, err
	}
	return reconciliation.Reconcile(c.Medicaments, catalog), nil
}
