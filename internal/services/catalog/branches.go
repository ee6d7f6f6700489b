package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

type BranchFilter struct {
	Category   models.BranchCategory
	Location   string
	MinPlayers int
	// MaxPlayers of zero means no upper bound.
	MaxPlayers int
	ActiveOnly bool
}

func FilterBranches(branches []models.Branch, f BranchFilter) []models.Branch {
	out := make([]models.Branch, 0, len(branches))
	for _, b := range branches {
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.Location != "" && !strings.EqualFold(b.Location, f.Location) {
			continue
		}
		if b.ActivePlayers < f.MinPlayers {
			continue
		}
		if f.MaxPlayers > 0 && b.ActivePlayers > f.MaxPlayers {
			continue
		}
		if f.ActiveOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}

	return out
}

type SortField string

const (
	SortByName     SortField = "name"
	SortByLocation SortField = "location"
	SortByPlayers  SortField = "players"
	SortByTeams    SortField = "teams"
	SortByCategory SortField = "category"
)

var SortFields = []SortField{SortByName, SortByLocation, SortByPlayers, SortByTeams, SortByCategory}

// SortBranches returns a stably sorted copy of branches.
func SortBranches(branches []models.Branch, field SortField, desc bool) ([]models.Branch, error) {
	const op = "catalog.SortBranches"

	var compare func(a, b models.Branch) int
	switch field {
	case SortByName:
		compare = func(a, b models.Branch) int { return cmp.Compare(a.Name, b.Name) }
	case SortByLocation:
		compare = func(a, b models.Branch) int { return cmp.Compare(a.Location, b.Location) }
	case SortByPlayers:
		compare = func(a, b models.Branch) int { return cmp.Compare(a.ActivePlayers, b.ActivePlayers) }
	case SortByTeams:
		compare = func(a, b models.Branch) int { return cmp.Compare(a.Teams, b.Teams) }
	case SortByCategory:
		compare = func(a, b models.Branch) int { return cmp.Compare(a.Category, b.Category) }
	default:
		return nil, fmt.Errorf("%s: unknown sort field %q", op, field)
	}

	out := slices.Clone(branches)
	slices.SortStableFunc(out, func(a, b models.Branch) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})

	return out, nil
}

func Stats(branches []models.Branch) models.BranchStats {
	stats := models.BranchStats{
		TotalBranches:   len(branches),
		CategoriesCount: make(map[models.BranchCategory]int, len(models.BranchCategories)),
	}

	for _, b := range branches {
		if b.IsActive {
			stats.ActiveBranches++
		}
		stats.TotalPlayers += b.ActivePlayers
		stats.TotalTeams += b.Teams
		stats.CategoriesCount[b.Category]++
	}

	return stats
}
