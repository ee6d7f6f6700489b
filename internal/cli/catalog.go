package cli

import (
	"fmt"
	"os"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/services/catalog"
	"github.com/spf13/cobra"
)

type ageGroupFilterFlags struct {
	activity string
	status   string
	search   string
}

func (f *ageGroupFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.activity, "activity", "", "activity id")
	cmd.Flags().StringVar(&f.status, "status", "", "Active or InActive")
	cmd.Flags().StringVar(&f.search, "search", "", "match name, description or activity")
}

func (f *ageGroupFilterFlags) filter() catalog.AgeGroupFilter {
	return catalog.AgeGroupFilter{
		ActivityID: f.activity,
		Status:     models.AgeGroupStatus(f.status),
		Search:     f.search,
	}
}

func (c *CLI) ageGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agegroups",
		Aliases: []string{"age-groups", "ag"},
		Short:   "Manage age groups",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			return c.requireLogin()
		},
	}

	cmd.AddCommand(
		c.ageGroupsListCmd(),
		c.ageGroupsShowCmd(),
		c.ageGroupsCreateCmd(),
		c.ageGroupsUpdateCmd(),
		c.ageGroupsDeleteCmd(),
		c.ageGroupsExportCmd(),
		c.activitiesCmd(),
	)

	return cmd
}

func (c *CLI) ageGroupsListCmd() *cobra.Command {
	var (
		filters    ageGroupFilterFlags
		page, rows int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List age groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups := catalog.FilterAgeGroups(c.app.Catalog.List(), filters.filter())
			fmt.Fprintln(cmd.OutOrStdout(), renderAgeGroups(catalog.Paginate(groups, page, rows)))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&rows, "rows", 10, "rows per page")

	return cmd
}

func (c *CLI) ageGroupsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one age group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.app.Catalog.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAgeGroup(g))
			return nil
		},
	}
}

type ageGroupFlags struct {
	name         string
	minAge       int
	maxAge       int
	activity     string
	status       string
	description  string
	participants int
}

func (f *ageGroupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "age group name")
	cmd.Flags().IntVar(&f.minAge, "min-age", 0, "minimum age")
	cmd.Flags().IntVar(&f.maxAge, "max-age", 0, "maximum age")
	cmd.Flags().StringVar(&f.activity, "activity", "", "activity id")
	cmd.Flags().StringVar(&f.status, "status", string(models.StatusActive), "Active or InActive")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().IntVar(&f.participants, "participants", 0, "participant count")
}

func (c *CLI) ageGroupsCreateCmd() *cobra.Command {
	var f ageGroupFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an age group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.app.Catalog.Create(catalog.AgeGroupInput{
				Name:             f.name,
				MinAge:           f.minAge,
				MaxAge:           f.maxAge,
				ActivityID:       f.activity,
				Status:           models.AgeGroupStatus(f.status),
				Description:      f.description,
				ParticipantCount: f.participants,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderAgeGroup(g))
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func (c *CLI) ageGroupsUpdateCmd() *cobra.Command {
	var f ageGroupFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an age group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch catalog.AgeGroupPatch
			flags := cmd.Flags()

			if flags.Changed("name") {
				patch.Name = &f.name
			}
			if flags.Changed("min-age") {
				patch.MinAge = &f.minAge
			}
			if flags.Changed("max-age") {
				patch.MaxAge = &f.maxAge
			}
			if flags.Changed("activity") {
				patch.ActivityID = &f.activity
			}
			if flags.Changed("status") {
				status := models.AgeGroupStatus(f.status)
				patch.Status = &status
			}
			if flags.Changed("description") {
				patch.Description = &f.description
			}
			if flags.Changed("participants") {
				patch.ParticipantCount = &f.participants
			}

			g, err := c.app.Catalog.Update(args[0], patch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderAgeGroup(g))
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func (c *CLI) ageGroupsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete one or more age groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed := c.app.Catalog.DeleteMany(args...)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d of %d age groups\n", removed, len(args))
			return nil
		},
	}
}

func (c *CLI) ageGroupsExportCmd() *cobra.Command {
	var (
		filters ageGroupFilterFlags
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export age groups as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups := catalog.FilterAgeGroups(c.app.Catalog.List(), filters.filter())

			if out == "" {
				return catalog.ExportCSV(cmd.OutOrStdout(), groups)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := catalog.ExportCSV(f, groups); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d age groups to %s\n", len(groups), out)

			return f.Close()
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) activitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "List activities an age group can belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderActivities(c.app.Catalog.Activities()))
			return nil
		},
	}
}

func (c *CLI) branchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Browse academy branches",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			return c.requireLogin()
		},
	}

	var (
		filter   catalog.BranchFilter
		category string
		sortBy   string
		desc     bool
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Category = models.BranchCategory(category)
			branches := catalog.FilterBranches(c.app.Catalog.Branches(), filter)

			sorted, err := catalog.SortBranches(branches, catalog.SortField(sortBy), desc)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderBranches(sorted))
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "Plus, Advance, Pro, School or Girls")
	list.Flags().StringVar(&filter.Location, "location", "", "city")
	list.Flags().IntVar(&filter.MinPlayers, "min-players", 0, "minimum active players")
	list.Flags().IntVar(&filter.MaxPlayers, "max-players", 0, "maximum active players")
	list.Flags().BoolVar(&filter.ActiveOnly, "active", false, "only active branches")
	list.Flags().StringVar(&sortBy, "sort", string(catalog.SortByName), "name, location, players, teams or category")
	list.Flags().BoolVar(&desc, "desc", false, "sort descending")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show branch totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderBranchStats(catalog.Stats(c.app.Catalog.Branches())))
			return nil
		},
	}

	cmd.AddCommand(list, stats)

	return cmd
}

func (c *CLI) dashboardCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show academy metrics",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			return c.requireLogin()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refresh {
				c.app.Dashboard.ClearCache()
			}

			m, err := c.app.Dashboard.Metrics(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderMetrics(m))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached metrics")

	return cmd
}
