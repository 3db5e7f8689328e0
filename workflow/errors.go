package workflow

import (
	"errors"
	"fmt"

	"github.com/giygas/pharmacie-api/entities"
)

var (
	ErrPharmacieRequired     = errors.New("une pharmacie doit être sélectionnée")
	ErrPharmacieNotFound     = errors.New("pharmacie introuvable")
	ErrLieuLivraisonRequired = errors.New("le lieu de livraison est requis")
	ErrOrdonnanceNotFound    = errors.New("ordonnance introuvable")
	ErrOrdonnanceExists      = errors.New("une ordonnance avec cet identifiant existe déjà")
	ErrCommandeNotFound      = errors.New("commande introuvable")
	ErrPatientNotFound       = errors.New("patient introuvable")
	ErrPatientExists         = errors.New("un patient avec cet identifiant existe déjà")
	ErrInvalidTransition     = errors.New("changement de statut non autorisé")
	ErrInvalidStatus         = errors.New("statut inconnu")
)

// TransitionError is returned when a status change is not the single next
// step of the lifecycle.
type TransitionError struct {
	From entities.Statut
	To   entities.Statut
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IsInput reports errors caused by the request itself rather than by the store.
func IsInput(err error) bool {
	return errors.Is(err, ErrPharmacieRequired) || errors.Is(err, ErrLieuLivraisonRequired) ||
		errors.Is(err, ErrInvalidStatus)
}
