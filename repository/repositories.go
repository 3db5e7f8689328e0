package repository

import (
	"context"
	"errors"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
)

// errNoChange aborts a Mutate without saving and without reporting an error.
var errNoChange = errors.New("repository: no change")

// Repositories holds one repository per entity collection, all bound to the
// same store or transaction.
type Repositories struct {
	rw interfaces.KVReadWriter

	Users       *Repository[entities.User]
	Medicaments *Repository[entities.Medicament]
	Ordonnances *Repository[entities.Ordonnance]
	Commandes   *Repository[entities.Commande]
	Patients    *Repository[entities.Patient]
	Pharmacies  *Repository[entities.Pharmacie]
	Journal     *Repository[entities.JournalEntry]
}

// Collections used by the service
var (
	Users       = Collection[entities.User]{Key: entities.KeyUsers, IDOf: func(u entities.User) string { return u.ID }}
	Medicaments = Collection[entities.Medicament]{Key: entities.KeyMedicaments, IDOf: func(m entities.Medicament) string { return m.ID }}
	Ordonnances = Collection[entities.Ordonnance]{Key: entities.KeyOrdonnances, IDOf: func(o entities.Ordonnance) string { return o.ID }}
	Commandes   = Collection[entities.Commande]{Key: entities.KeyCommandes, IDOf: func(c entities.Commande) string { return c.ID }}
	Patients    = Collection[entities.Patient]{Key: entities.KeyPatients, IDOf: func(p entities.Patient) string { return p.ID }}
	Pharmacies  = Collection[entities.Pharmacie]{Key: entities.KeyPharmacies, IDOf: func(p entities.Pharmacie) string { return p.ID }}
	Journal     = Collection[entities.JournalEntry]{Key: entities.KeyJournal, IDOf: func(e entities.JournalEntry) string { return e.CommandeID }}
)

// New binds every collection to rw
func New(rw interfaces.KVReadWriter) *Repositories {
	return &Repositories{
		rw:          rw,
		Users:       NewRepository(Users, rw),
		Medicaments: NewRepository(Medicaments, rw),
		Ordonnances: NewRepository(Ordonnances, rw),
		Commandes:   NewRepository(Commandes, rw),
		Patients:    NewRepository(Patients, rw),
		Pharmacies:  NewRepository(Pharmacies, rw),
		Journal:     NewRepository(Journal, rw),
	}
}

// Bind returns a copy of r reading and writing through rw, typically a KVTx
func (r *Repositories) Bind(rw interfaces.KVReadWriter) *Repositories {
	return New(rw)
}

// Transactional reports whether Update commits atomically
func (r *Repositories) Transactional() bool {
	_, ok := r.rw.(interfaces.TransactionalKVStore)
	return ok
}

// Update runs fn with repositories bound to one store transaction. Every
// write fn makes commits together, or none does if fn fails. On a store
// without transactions it returns ErrNotTransactional.
func (r *Repositories) Update(ctx context.Context, fn func(tx *Repositories) error) error {
	txs, ok := r.rw.(interfaces.TransactionalKVStore)
	if !ok {
		return ErrNotTransactional
	}
	return txs.Update(ctx, func(tx interfaces.KVTx) error {
		return fn(r.Bind(tx))
	})
}

// ErrNotTransactional is returned by Update on a plain store.
var ErrNotTransactional = errors.New("repository: store does not support transactions")
