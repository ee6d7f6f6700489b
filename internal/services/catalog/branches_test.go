package catalog_test

import (
	"testing"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/services/catalog"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var branches = []models.Branch{
	{ID: 1, Name: "Nafal", Location: "Riyadh", ActivePlayers: 52, Teams: 7, Category: models.CategoryPro, IsActive: true},
	{ID: 2, Name: "AlDammam", Location: "Dammam", ActivePlayers: 29, Teams: 4, Category: models.CategoryPlus, IsActive: true},
	{ID: 3, Name: "Jeddah Girls", Location: "Jeddah", ActivePlayers: 26, Teams: 3, Category: models.CategoryGirls, IsActive: false},
	{ID: 4, Name: "Manarat", Location: "Riyadh", ActivePlayers: 47, Teams: 6, Category: models.CategoryPro, IsActive: true},
	{ID: 5, Name: "Irqah", Location: "Riyadh", ActivePlayers: 33, Teams: 4, Category: models.CategorySchool, IsActive: true},
}

func branchIDs(bs []models.Branch) []int {
	out := make([]int, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestFilterBranches(t *testing.T) {
	tests := []struct {
		name   string
		filter catalog.BranchFilter
		want   []int
	}{
		{"no filter", catalog.BranchFilter{}, []int{1, 2, 3, 4, 5}},
		{"category", catalog.BranchFilter{Category: models.CategoryPro}, []int{1, 4}},
		{"location is case insensitive", catalog.BranchFilter{Location: "riyadh"}, []int{1, 4, 5}},
		{"player range", catalog.BranchFilter{MinPlayers: 30, MaxPlayers: 50}, []int{4, 5}},
		{"active only", catalog.BranchFilter{ActiveOnly: true}, []int{1, 2, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.FilterBranches(branches, tt.filter)
			if diff := cmp.Diff(tt.want, branchIDs(got)); diff != "" {
				t.Errorf("FilterBranches() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortBranches(t *testing.T) {
	tests := []struct {
		name  string
		field catalog.SortField
		desc  bool
		want  []int
	}{
		{"name asc", catalog.SortByName, false, []int{2, 5, 3, 4, 1}},
		{"players desc", catalog.SortByPlayers, true, []int{1, 4, 5, 2, 3}},
		{"location keeps input order for ties", catalog.SortByLocation, false, []int{2, 3, 1, 4, 5}},
		{"teams asc", catalog.SortByTeams, false, []int{3, 2, 5, 4, 1}},
		{"category asc", catalog.SortByCategory, false, []int{3, 2, 1, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.SortBranches(branches, tt.field, tt.desc)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, branchIDs(got)); diff != "" {
				t.Errorf("SortBranches() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, branchIDs(branches), "input must not be reordered")
}

func TestSortBranches_UnknownField(t *testing.T) {
	_, err := catalog.SortBranches(branches, "budget", false)
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	got := catalog.Stats(branches)

	want := models.BranchStats{
		TotalBranches:  5,
		ActiveBranches: 4,
		TotalPlayers:   187,
		TotalTeams:     24,
		CategoriesCount: map[models.BranchCategory]int{
			models.CategoryPro:    2,
			models.CategoryPlus:   1,
			models.CategoryGirls:  1,
			models.CategorySchool: 1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}
