package models

import "time"

type AgeGroupStatus string

const (
	StatusActive   AgeGroupStatus = "Active"
	StatusInactive AgeGroupStatus = "InActive"
)

type Activity struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type AgeGroup struct {
	ID               string
	Name             string
	MinAge           int
	MaxAge           int
	Activity         Activity
	Status           AgeGroupStatus
	Description      string
	ParticipantCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	IsActive         bool
}

type BranchCategory string

const (
	CategoryPlus    BranchCategory = "Plus"
	CategoryAdvance BranchCategory = "Advance"
	CategoryPro     BranchCategory = "Pro"
	CategorySchool  BranchCategory = "School"
	CategoryGirls   BranchCategory = "Girls"
)

var BranchCategories = []BranchCategory{CategoryPlus, CategoryAdvance, CategoryPro, CategorySchool, CategoryGirls}

type Branch struct {
	ID            int            `yaml:"id"`
	Name          string         `yaml:"name"`
	Location      string         `yaml:"location"`
	ActivePlayers int            `yaml:"active_players"`
	Teams         int            `yaml:"teams"`
	Category      BranchCategory `yaml:"category"`
	IsActive      bool           `yaml:"is_active"`
}

type BranchStats struct {
	TotalBranches   int
	ActiveBranches  int
	TotalPlayers    int
	TotalTeams      int
	CategoriesCount map[BranchCategory]int
}

type DashboardMetrics struct {
	TotalPlayers   int
	ActiveTeams    int
	ActiveBranches int
	SportsOffered  int
	MonthlyGrowth  float64
}
