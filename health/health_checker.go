// Package health reports the state of the store and the collections in it.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/repository"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

type pinger interface {
	Ping(ctx context.Context) error
}

type lastUpdater interface {
	LastUpdated() time.Time
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store      pinger
	repos      *repository.Repositories
	staleAfter time.Duration
	startedAt  time.Time
	now        func() time.Time
}

// NewHealthChecker creates a health checker. A journal entry older than
// staleAfter means recovery is not running and degrades the status.
func NewHealthChecker(store interfaces.KVStore, repos *repository.Repositories, staleAfter time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:      store,
		repos:      repos,
		staleAfter: staleAfter,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

// HealthCheck pings the store and counts the collections.
//
// unhealthy: the store does not answer, or a collection cannot be read, or
// there is no user account. degraded: the catalog is empty or a conversion
// has been waiting in the journal for longer than staleAfter.
func (h *HealthCheckerImpl) HealthCheck(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	now := h.now()
	data = map[string]any{
		"uptime_seconds": math.Round(now.Sub(h.startedAt).Seconds()),
	}
	if lu, ok := h.store.(lastUpdater); ok && !lu.LastUpdated().IsZero() {
		data["last_write"] = lu.LastUpdated().Format(time.RFC3339)
	}

	if err := h.store.Ping(ctx); err != nil {
		data["store"] = "unreachable"
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}
	data["store"] = "ok"

	c, err := countCollections(ctx, h.repos)
	if err != nil {
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}
	data["users"] = c.users
	data["medicaments"] = c.medicaments
	data["ordonnances"] = c.ordonnances
	data["commandes"] = c.commandes
	data["journal_pending"] = len(c.journal)

	var stale int
	for _, e := range c.journal {
		if now.Sub(e.CreatedAt) > h.staleAfter {
			stale++
		}
	}
	data["journal_stale"] = stale

	switch {
	case c.users == 0:
		return "unhealthy", data, http.StatusServiceUnavailable
	case c.medicaments == 0 || stale > 0:
		return "degraded", data, http.StatusServiceUnavailable
	default:
		return "healthy", data, http.StatusOK
	}
}

type counts struct {
	users, medicaments, ordonnances, commandes int
	journal                                    []entities.JournalEntry
}

func countCollections(ctx context.Context, repos *repository.Repositories) (counts, error) {
	var (
		c   counts
		err error
	)
	if c.users, err = count(ctx, repos.Users); err != nil {
		return c, err
	}
	if c.medicaments, err = count(ctx, repos.Medicaments); err != nil {
		return c, err
	}
	if c.ordonnances, err = count(ctx, repos.Ordonnances); err != nil {
		return c, err
	}
	if c.commandes, err = count(ctx, repos.Commandes); err != nil {
		return c, err
	}
	c.journal, err = repos.Journal.List(ctx)
	return c, err
}

func count[T any](ctx context.Context, r *repository.Repository[T]) (int, error) {
	s, err := r.Load(ctx)
	if err != nil {
		return 0, err
	}
	return s.Len(), nil
}
