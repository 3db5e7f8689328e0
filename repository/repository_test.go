package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/kvstore"
	"github.com/giygas/pharmacie-api/kvstore/kvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func med(id, nom string, stock int) entities.Medicament {
	return entities.Medicament{ID: id, Nom: nom, Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: stock}
}

func TestLoadAbsentKeyIsEmpty(t *testing.T) {
	repos := New(kvstore.NewMemoryStore())

	items, err := repos.Medicaments.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoadCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, entities.KeyMedicaments, []byte("{not json")))

	_, err := New(store).Medicaments.List(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, entities.KeyCommandes, []byte("null")))

	items, err := New(store).Commandes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCRUD(t *testing.T) {
	for name, store := range map[string]interfaces.KVStore{
		"transactional": kvstore.NewMemoryStore(),
		"plain":         kvtest.NewPlain(kvstore.NewMemoryStore()),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := New(store).Medicaments

			require.NoError(t, repo.Create(ctx, med("m001", "Doliprane", 120)))
			require.NoError(t, repo.Create(ctx, med("m002", "Ibuprofène", 80)))

			err := repo.Create(ctx, med("m001", "Autre", 1))
			assert.ErrorIs(t, err, ErrDuplicateID)

			got, found, err := repo.Get(ctx, "m002")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "Ibuprofène", got.Nom)

			_, found, err = repo.Get(ctx, "m999")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, repo.Put(ctx, med("m001", "Doliprane", 99)))
			got, _, _ = repo.Get(ctx, "m001")
			assert.Equal(t, 99, got.QuantiteStock)

			deleted, err := repo.Delete(ctx, "m001")
			require.NoError(t, err)
			assert.True(t, deleted)

			deleted, err = repo.Delete(ctx, "m001")
			require.NoError(t, err)
			assert.False(t, deleted)

			items, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "m002", items[0].ID)
		})
	}
}

func TestDeleteMissDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	plain := kvtest.NewPlain(kvstore.NewMemoryStore())
	repo := New(plain).Patients

	_, err := repo.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, plain.Writes())
}

func TestMutateErrorSavesNothing(t *testing.T) {
	ctx := context.Background()
	repos := New(kvstore.NewMemoryStore())
	require.NoError(t, repos.Medicaments.Create(ctx, med("m001", "Doliprane", 120)))

	boom := errors.New("boom")
	err := repos.Medicaments.Mutate(ctx, func(s *Snapshot[entities.Medicament]) error {
		s.Put(med("m001", "Doliprane", 0))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _, _ := repos.Medicaments.Get(ctx, "m001")
	assert.Equal(t, 120, got.QuantiteStock)
}

func TestSnapshotDuplicateIDs(t *testing.T) {
	s := newSnapshot([]entities.Medicament{med("m1", "A", 1), med("m1", "B", 2), med("m2", "C", 3)}, Medicaments.IDOf)

	got, ok := s.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Nom, "first occurrence wins")

	assert.True(t, s.Delete("m1"))
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Has("m1"))
	got, ok = s.Get("m2")
	require.True(t, ok)
	assert.Equal(t, "C", got.Nom)
}

func TestSnapshotItemsIsACopy(t *testing.T) {
	s := newSnapshot([]entities.Medicament{med("m1", "A", 1)}, Medicaments.IDOf)
	items := s.Items()
	items[0].Nom = "changed"

	got, _ := s.Get("m1")
	assert.Equal(t, "A", got.Nom)
}

func TestUpdateCommitsAcrossCollections(t *testing.T) {
	ctx := context.Background()
	repos := New(kvstore.NewMemoryStore())
	require.True(t, repos.Transactional())
	require.NoError(t, repos.Ordonnances.Create(ctx, entities.Ordonnance{ID: "o1", PatientID: "u222"}))

	err := repos.Update(ctx, func(tx *Repositories) error {
		if err := tx.Commandes.Create(ctx, entities.Commande{ID: "c1", OrdonnanceID: "o1"}); err != nil {
			return err
		}
		_, err := tx.Ordonnances.Delete(ctx, "o1")
		return err
	})
	require.NoError(t, err)

	_, found, _ := repos.Ordonnances.Get(ctx, "o1")
	assert.False(t, found)
	_, found, _ = repos.Commandes.Get(ctx, "c1")
	assert.True(t, found)
}

func TestUpdateRollsBackAcrossCollections(t *testing.T) {
	ctx := context.Background()
	repos := New(kvstore.NewMemoryStore())
	require.NoError(t, repos.Ordonnances.Create(ctx, entities.Ordonnance{ID: "o1"}))

	boom := errors.New("boom")
	err := repos.Update(ctx, func(tx *Repositories) error {
		require.NoError(t, tx.Commandes.Create(ctx, entities.Commande{ID: "c1"}))
		_, err := tx.Ordonnances.Delete(ctx, "o1")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, _ := repos.Ordonnances.Get(ctx, "o1")
	assert.True(t, found)
	_, found, _ = repos.Commandes.Get(ctx, "c1")
	assert.False(t, found)
}

func TestUpdateOnPlainStore(t *testing.T) {
	repos := New(kvtest.NewPlain(kvstore.NewMemoryStore()))
	assert.False(t, repos.Transactional())

	err := repos.Update(context.Background(), func(*Repositories) error { return nil })
	assert.ErrorIs(t, err, ErrNotTransactional)
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	repos := New(kvstore.NewMemoryStore())
	require.NoError(t, repos.Pharmacies.Create(ctx, entities.Pharmacie{ID: "old"}))

	require.NoError(t, repos.Pharmacies.Replace(ctx, []entities.Pharmacie{{ID: "ph001"}, {ID: "ph002"}}))

	items, err := repos.Pharmacies.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ph001", items[0].ID)
}

func TestPersistedVocabulary(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, New(store).Medicaments.Create(ctx, med("m001", "Doliprane", 120)))

	raw, found, err := store.Get(ctx, entities.KeyMedicaments)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"m001","nom":"Doliprane","dosage":"500 mg","forme":"Comprimé","quantiteStock":120}]`, string(raw))
}
