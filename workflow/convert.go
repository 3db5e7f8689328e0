package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/metrics"
	"github.com/giygas/pharmacie-api/repository"
)

// CreateCommande turns a prescription into an order placed with a pharmacy.
// The order gets a copy of the prescription lines and the prescription is
// removed. On a transactional store both writes commit together. Otherwise
// the conversion is recorded in the journal first so Recover can finish it.
func (s *Service) CreateCommande(ctx context.Context, req interfaces.CreateCommandeRequest) (entities.Commande, error) {
	if strings.TrimSpace(req.PharmacieID) == "" {
		return entities.Commande{}, ErrPharmacieRequired
	}
	if strings.TrimSpace(req.LieuLivraison) == "" {
		return entities.Commande{}, ErrLieuLivraisonRequired
	}

	var (
		cmd entities.Commande
		err error
	)
	if s.repos.Transactional() {
		err = s.repos.Update(ctx, func(tx *repository.Repositories) error {
			ph, o, err := s.conversionInputs(ctx, tx, req)
			if err != nil {
				return err
			}
			cmd = s.buildCommande(o, ph, req)
			if err := tx.Commandes.Create(ctx, cmd); err != nil {
				return err
			}
			_, err = tx.Ordonnances.Delete(ctx, o.ID)
			return err
		})
	} else {
		cmd, err = s.createWithJournal(ctx, req)
	}
	if err != nil {
		return entities.Commande{}, err
	}

	metrics.CommandesCreated.Inc()
	logging.Info("Commande created",
		"commande_id", cmd.ID,
		"ordonnance_id", cmd.OrdonnanceID,
		"patient_id", cmd.PatientID,
		"pharmacie_id", cmd.PharmacienID,
		"lines", len(cmd.Medicaments),
	)
	return cmd, nil
}

// createWithJournal runs the conversion as separate writes:
// journal entry, order, prescription delete, journal clear.
func (s *Service) createWithJournal(ctx context.Context, req interfaces.CreateCommandeRequest) (entities.Commande, error) {
	ph, o, err := s.conversionInputs(ctx, s.repos, req)
	if err != nil {
		return entities.Commande{}, err
	}
	cmd := s.buildCommande(o, ph, req)

	entry := entities.JournalEntry{
		CommandeID:   cmd.ID,
		OrdonnanceID: o.ID,
		Stage:        entities.StagePendingDelete,
		CreatedAt:    s.now(),
	}
	if err := s.repos.Journal.Create(ctx, entry); err != nil {
		return entities.Commande{}, fmt.Errorf("journal conversion: %w", err)
	}

	if err := s.repos.Commandes.Create(ctx, cmd); err != nil {
		return entities.Commande{}, fmt.Errorf("save commande: %w", err)
	}

	if _, err := s.repos.Ordonnances.Delete(ctx, o.ID); err != nil {
		return entities.Commande{}, fmt.Errorf("delete ordonnance: %w", err)
	}

	// The conversion is complete at this point, a stale entry is cleared by Recover.
	if _, err := s.repos.Journal.Delete(ctx, cmd.ID); err != nil {
		logging.Warn("Failed to clear conversion journal entry",
			"commande_id", cmd.ID, "error", err)
	}
	return cmd, nil
}

// conversionInputs loads the pharmacy and the prescription of a request.
func (s *Service) conversionInputs(ctx context.Context, repos *repository.Repositories, req interfaces.CreateCommandeRequest) (entities.Pharmacie, entities.Ordonnance, error) {
	ph, found, err := repos.Pharmacies.Get(ctx, req.PharmacieID)
	if err != nil {
		return entities.Pharmacie{}, entities.Ordonnance{}, err
	}
	if !found {
		return entities.Pharmacie{}, entities.Ordonnance{}, fmt.Errorf("%w: %s", ErrPharmacieNotFound, req.PharmacieID)
	}

	o, found, err := repos.Ordonnances.Get(ctx, req.OrdonnanceID)
	if err != nil {
		return entities.Pharmacie{}, entities.Ordonnance{}, err
	}
	if !found || (req.PatientID != "" && o.PatientID != req.PatientID) {
		return entities.Pharmacie{}, entities.Ordonnance{}, fmt.Errorf("%w: %s", ErrOrdonnanceNotFound, req.OrdonnanceID)
	}
	return ph, o, nil
}

func (s *Service) buildCommande(o entities.Ordonnance, ph entities.Pharmacie, req interfaces.CreateCommandeRequest) entities.Commande {
	return entities.Commande{
		ID:            s.newID("c"),
		OrdonnanceID:  o.ID,
		PatientID:     o.PatientID,
		PharmacienID:  ph.ID,
		PharmacieName: ph.Name,
		LieuLivraison: strings.TrimSpace(req.LieuLivraison),
		Remarques:     strings.TrimSpace(req.Remarques),
		DateCreation:  s.now(),
		Status:        entities.StatutEnAttente,
		Medicaments:   entities.CopyLignes(o.Medicaments),
	}
}
