// Package workflow turns prescriptions into pharmacy orders and moves orders
// through their lifecycle.
package workflow

import (
	"time"

	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/google/uuid"
)

// Compile-time checks
var (
	_ interfaces.WorkflowService = (*Service)(nil)
	_ interfaces.PatientService  = (*Service)(nil)
)

// Service implements prescriptions, orders and the order lifecycle on top of
// the entity repositories.
type Service struct {
	repos     *repository.Repositories
	validator interfaces.DataValidator
	now       func() time.Time
	newID     func(prefix string) string
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid based id generator. prefix is "c" for
// orders, "o" for prescriptions and "p" for patients.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates the workflow service
func NewService(repos *repository.Repositories, validator interfaces.DataValidator, opts ...Option) *Service {
	s := &Service{
		repos:     repos,
		validator: validator,
		now:       time.Now,
		newID:     func(prefix string) string { return prefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
