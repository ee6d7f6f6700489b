package catalog

import (
	"context"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

// MetricsSource derives dashboard metrics from the catalog contents.
type MetricsSource struct {
	catalog       *Catalog
	monthlyGrowth float64
}

func NewMetricsSource(c *Catalog, monthlyGrowth float64) *MetricsSource {
	return &MetricsSource{catalog: c, monthlyGrowth: monthlyGrowth}
}

func (s *MetricsSource) FetchMetrics(ctx context.Context) (models.DashboardMetrics, error) {
	if err := ctx.Err(); err != nil {
		return models.DashboardMetrics{}, err
	}

	active := FilterBranches(s.catalog.Branches(), BranchFilter{ActiveOnly: true})
	stats := Stats(active)

	return models.DashboardMetrics{
		TotalPlayers:   stats.TotalPlayers,
		ActiveTeams:    stats.TotalTeams,
		ActiveBranches: stats.ActiveBranches,
		SportsOffered:  len(s.catalog.Activities()),
		MonthlyGrowth:  s.monthlyGrowth,
	}, nil
}
