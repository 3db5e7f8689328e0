package health

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/repository"
)

// Report is the pharmacist's daily overview.
type Report struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Threshold   int                           `json:"threshold"`
	LowStock    []entities.Medicament         `json:"low_stock"`
	Commandes   map[entities.Statut]int       `json:"commandes"`
	Quality     *interfaces.DataQualityReport `json:"quality"`
}

// Reporter builds Reports from the catalog, the workflow and the raw collections.
type Reporter struct {
	repos     *repository.Repositories
	catalog   interfaces.CatalogService
	workflow  interfaces.WorkflowService
	validator interfaces.DataValidator
	threshold int
}

func NewReporter(repos *repository.Repositories, catalog interfaces.CatalogService,
	workflow interfaces.WorkflowService, validator interfaces.DataValidator, threshold int) *Reporter {
	return &Reporter{
		repos:     repos,
		catalog:   catalog,
		workflow:  workflow,
		validator: validator,
		threshold: threshold,
	}
}

// Quality runs the data quality checks over the stored collections.
func (r *Reporter) Quality(ctx context.Context) (*interfaces.DataQualityReport, error) {
	medicaments, err := r.repos.Medicaments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("quality report: %w", err)
	}
	ordonnances, err := r.repos.Ordonnances.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("quality report: %w", err)
	}
	commandes, err := r.repos.Commandes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("quality report: %w", err)
	}
	return r.validator.ReportDataQuality(medicaments, ordonnances, commandes), nil
}

func (r *Reporter) Build(ctx context.Context) (Report, error) {
	low, err := r.catalog.LowStock(ctx, r.threshold)
	if err != nil {
		return Report{}, fmt.Errorf("low stock: %w", err)
	}
	byStatus, err := r.workflow.CountByStatus(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("count commandes: %w", err)
	}
	quality, err := r.Quality(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		GeneratedAt: time.Now(),
		Threshold:   r.threshold,
		LowStock:    low,
		Commandes:   byStatus,
		Quality:     quality,
	}, nil
}

// Log writes the report to the application log.
func (rep Report) Log() {
	names := make([]string, 0, len(rep.LowStock))
	for _, m := range rep.LowStock {
		names = append(names, fmt.Sprintf("%s (%d)", m.Nom, m.QuantiteStock))
	}
	if len(names) > 0 {
		logging.Warn("Medicaments low on stock",
			"threshold", rep.Threshold, "count", len(names), "medicaments", names)
	}
	logging.Info("Daily report",
		"low_stock", len(rep.LowStock),
		"en_attente", rep.Commandes[entities.StatutEnAttente],
		"en_preparation", rep.Commandes[entities.StatutEnPreparation],
		"prete", rep.Commandes[entities.StatutPrete],
		"quality_issues", rep.Quality != nil && rep.Quality.HasIssues(),
	)
}
