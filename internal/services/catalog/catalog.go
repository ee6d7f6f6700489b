package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData []byte

const seedDateLayout = "2006-01-02"

var (
	ErrAgeGroupNotFound = errors.New("age group not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidAgeGroup  = errors.New("invalid age group")
)

// AgeGroupInput is the editable part of an age group.
type AgeGroupInput struct {
	Name             string                `validate:"required,max=100"`
	MinAge           int                   `validate:"gte=0,lte=99"`
	MaxAge           int                   `validate:"gte=0,lte=99,gtefield=MinAge"`
	ActivityID       string                `validate:"required"`
	Status           models.AgeGroupStatus `validate:"oneof=Active InActive"`
	Description      string                `validate:"max=500"`
	ParticipantCount int                   `validate:"gte=0"`
}

// AgeGroupPatch carries the fields an update changes; nil fields are kept.
type AgeGroupPatch struct {
	Name             *string
	MinAge           *int
	MaxAge           *int
	ActivityID       *string
	Status           *models.AgeGroupStatus
	Description      *string
	ParticipantCount *int
}

type Catalog struct {
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	mu         sync.RWMutex
	activities []models.Activity
	ageGroups  []models.AgeGroup
	branches   []models.Branch
}

type Option func(*Catalog)

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

type seedAgeGroup struct {
	ID           string                `yaml:"id"`
	Name         string                `yaml:"name"`
	MinAge       int                   `yaml:"min_age"`
	MaxAge       int                   `yaml:"max_age"`
	ActivityID   string                `yaml:"activity_id"`
	Status       models.AgeGroupStatus `yaml:"status"`
	Description  string                `yaml:"description"`
	Participants int                   `yaml:"participants"`
	Created      string                `yaml:"created"`
	Updated      string                `yaml:"updated"`
}

type seed struct {
	Activities []models.Activity `yaml:"activities"`
	AgeGroups  []seedAgeGroup    `yaml:"age_groups"`
	Branches   []models.Branch   `yaml:"branches"`
}

// New returns a catalog populated from the embedded fixture.
func New(log *slog.Logger, opts ...Option) (*Catalog, error) {
	const op = "catalog.New"

	c := &Catalog{
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.load(seedData); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("catalog loaded",
		slog.Int("activities", len(c.activities)),
		slog.Int("age_groups", len(c.ageGroups)),
		slog.Int("branches", len(c.branches)),
	)

	return c, nil
}

// MustNew is New that panics on a broken fixture.
func MustNew(log *slog.Logger, opts ...Option) *Catalog {
	c, err := New(log, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

func (c *Catalog) load(data []byte) error {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	c.activities = s.Activities
	c.branches = s.Branches
	c.ageGroups = make([]models.AgeGroup, 0, len(s.AgeGroups))

	for _, g := range s.AgeGroups {
		activity, ok := findActivity(c.activities, g.ActivityID)
		if !ok {
			return fmt.Errorf("age group %q: %w: %s", g.ID, ErrActivityNotFound, g.ActivityID)
		}

		created, err := time.Parse(seedDateLayout, g.Created)
		if err != nil {
			return fmt.Errorf("age group %q: created: %w", g.ID, err)
		}
		updated, err := time.Parse(seedDateLayout, g.Updated)
		if err != nil {
			return fmt.Errorf("age group %q: updated: %w", g.ID, err)
		}

		c.ageGroups = append(c.ageGroups, models.AgeGroup{
			ID:               g.ID,
			Name:             g.Name,
			MinAge:           g.MinAge,
			MaxAge:           g.MaxAge,
			Activity:         activity,
			Status:           g.Status,
			Description:      g.Description,
			ParticipantCount: g.Participants,
			CreatedAt:        created,
			UpdatedAt:        updated,
			IsActive:         g.Status == models.StatusActive,
		})
	}

	return nil
}

func findActivity(activities []models.Activity, id string) (models.Activity, bool) {
	for _, a := range activities {
		if a.ID == id {
			return a, true
		}
	}

	return models.Activity{}, false
}

func (c *Catalog) Activities() []models.Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.activities)
}

func (c *Catalog) List() []models.AgeGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.ageGroups)
}

func (c *Catalog) Get(id string) (models.AgeGroup, error) {
	const op = "catalog.Get"

	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.AgeGroup{}, fmt.Errorf("%s: %w", op, ErrAgeGroupNotFound)
	}

	return c.ageGroups[i], nil
}

func (c *Catalog) Create(in AgeGroupInput) (models.AgeGroup, error) {
	const op = "catalog.Create"
	log := c.log.With(slog.String("op", op))

	c.mu.Lock()
	defer c.mu.Unlock()

	activity, err := c.check(in)
	if err != nil {
		return models.AgeGroup{}, fmt.Errorf("%s: %w", op, err)
	}

	now := c.now()
	group := models.AgeGroup{ID: uuid.NewString(), CreatedAt: now}
	apply(&group, in, activity, now)

	c.ageGroups = append(c.ageGroups, group)

	log.Info("age group created", slog.String("id", group.ID), slog.String("name", group.Name))

	return group, nil
}

func (c *Catalog) Update(id string, patch AgeGroupPatch) (models.AgeGroup, error) {
	const op = "catalog.Update"
	log := c.log.With(slog.String("op", op), slog.String("id", id))

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.AgeGroup{}, fmt.Errorf("%s: %w", op, ErrAgeGroupNotFound)
	}

	in := patch.merge(c.ageGroups[i])
	activity, err := c.check(in)
	if err != nil {
		return models.AgeGroup{}, fmt.Errorf("%s: %w", op, err)
	}

	group := c.ageGroups[i]
	apply(&group, in, activity, c.now())
	c.ageGroups[i] = group

	log.Info("age group updated")

	return group, nil
}

// Delete removes the age group with the given id. Unknown ids are not an error.
func (c *Catalog) Delete(id string) bool {
	return c.DeleteMany(id) == 1
}

// DeleteMany removes every listed age group and reports how many were removed.
func (c *Catalog) DeleteMany(ids ...string) int {
	const op = "catalog.DeleteMany"

	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.ageGroups)
	c.ageGroups = slices.DeleteFunc(c.ageGroups, func(g models.AgeGroup) bool {
		return slices.Contains(ids, g.ID)
	})
	removed := before - len(c.ageGroups)

	c.log.Info("age groups deleted", slog.String("op", op), slog.Int("removed", removed))

	return removed
}

func (c *Catalog) Branches() []models.Branch {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.branches)
}

func (c *Catalog) indexOf(id string) int {
	return slices.IndexFunc(c.ageGroups, func(g models.AgeGroup) bool {
		return g.ID == id
	})
}

func (c *Catalog) check(in AgeGroupInput) (models.Activity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := c.validate.Struct(in); err != nil {
		return models.Activity{}, fmt.Errorf("%w: %w", ErrInvalidAgeGroup, err)
	}

	activity, ok := findActivity(c.activities, in.ActivityID)
	if !ok {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, in.ActivityID)
	}

	return activity, nil
}

func apply(g *models.AgeGroup, in AgeGroupInput, activity models.Activity, now time.Time) {
	g.Name = strings.TrimSpace(in.Name)
	g.MinAge = in.MinAge
	g.MaxAge = in.MaxAge
	g.Activity = activity
	g.Status = in.Status
	g.Description = in.Description
	g.ParticipantCount = in.ParticipantCount
	g.IsActive = in.Status == models.StatusActive
	g.UpdatedAt = now
}

func (p AgeGroupPatch) merge(g models.AgeGroup) AgeGroupInput {
	in := AgeGroupInput{
		Name:             g.Name,
		MinAge:           g.MinAge,
		MaxAge:           g.MaxAge,
		ActivityID:       g.Activity.ID,
		Status:           g.Status,
		Description:      g.Description,
		ParticipantCount: g.ParticipantCount,
	}

	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.MinAge != nil {
		in.MinAge = *p.MinAge
	}
	if p.MaxAge != nil {
		in.MaxAge = *p.MaxAge
	}
	if p.ActivityID != nil {
		in.ActivityID = *p.ActivityID
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ParticipantCount != nil {
		in.ParticipantCount = *p.ParticipantCount
	}

	return in
}
