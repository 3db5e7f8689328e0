package entities

// Statut is the order lifecycle status. It only moves forward:
// en_attente -> en_preparation -> prete.
type Statut string

const (
	StatutEnAttente     Statut = "en_attente"
	StatutEnPreparation Statut = "en_preparation"
	StatutPrete         Statut = "prete"
)

// Statuts lists the lifecycle in order.
func Statuts() []Statut {
	return []Statut{StatutEnAttente, StatutEnPreparation, StatutPrete}
}

// Valid reports whether s is one of the three known statuses.
func (s Statut) Valid() bool {
	switch s {
	case StatutEnAttente, StatutEnPreparation, StatutPrete:
		return true
	}
	return false
}

// Next returns the only status s may move to. prete is terminal.
func (s Statut) Next() (Statut, bool) {
	switch s {
	case StatutEnAttente:
		return StatutEnPreparation, true
	case StatutEnPreparation:
		return StatutPrete, true
	}
	return "", false
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s Statut) CanTransitionTo(target Statut) bool {
	next, ok := s.Next()
	return ok && next == target
}

// Label is the French label shown to users.
func (s Statut) Label() string {
	switch s {
	case StatutEnAttente:
		return "En attente"
	case StatutEnPreparation:
		return "En préparation"
	case StatutPrete:
		return "Prête"
	}
	return string(s)
}
