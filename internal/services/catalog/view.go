package catalog

import (
	"strings"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

// AgeGroupFilter narrows an age group list. Zero fields match everything.
type AgeGroupFilter struct {
	ActivityID string
	Status     models.AgeGroupStatus
	Search     string
}

func FilterAgeGroups(groups []models.AgeGroup, f AgeGroupFilter) []models.AgeGroup {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.AgeGroup, 0, len(groups))
	for _, g := range groups {
		if f.ActivityID != "" && g.Activity.ID != f.ActivityID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(g.Name), search) &&
			!strings.Contains(strings.ToLower(g.Description), search) &&
			!strings.Contains(strings.ToLower(g.Activity.Name), search) {
			continue
		}
		out = append(out, g)
	}

	return out
}

type Page[T any] struct {
	Items      []T
	Page       int
	Rows       int
	Total      int
	TotalPages int
}

// Paginate returns the 1-based page of items. Pages outside [1, TotalPages]
// are clamped; rows below 1 puts everything on one page.
func Paginate[T any](items []T, page, rows int) Page[T] {
	total := len(items)
	if rows < 1 {
		rows = max(total, 1)
	}

	pages := (total + rows - 1) / rows
	page = min(max(page, 1), max(pages, 1))

	start := min((page-1)*rows, total)
	end := min(start+rows, total)

	return Page[T]{
		Items:      items[start:end:end],
		Page:       page,
		Rows:       rows,
		Total:      total,
		TotalPages: pages,
	}
}
