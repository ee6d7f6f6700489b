package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/services/catalog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const dateLayout = "2006-01-02"

// printNotifier renders notifications as console toasts.
type printNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printNotifier) Notify(_ context.Context, n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s %s: %s\n", severityColors(n.Severity).Sprintf("[%s]", strings.ToUpper(string(n.Severity))), n.Summary, n.Detail)
}

func severityColors(s models.Severity) text.Colors {
	switch s {
	case models.SeveritySuccess:
		return text.Colors{text.FgGreen}
	case models.SeverityWarn:
		return text.Colors{text.FgYellow}
	case models.SeverityError:
		return text.Colors{text.FgRed}
	}

	return text.Colors{text.FgCyan}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func renderAgeGroups(page catalog.Page[models.AgeGroup]) string {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Ages", "Activity", "Status", "Participants", "Created"})

	for _, g := range page.Items {
		t.AppendRow(table.Row{
			g.ID,
			g.Name,
			fmt.Sprintf("%d-%d", g.MinAge, g.MaxAge),
			g.Activity.Name,
			string(g.Status),
			g.ParticipantCount,
			g.CreatedAt.Format(dateLayout),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("page %d/%d", page.Page, max(page.TotalPages, 1)), fmt.Sprintf("%d total", page.Total)})

	return t.Render()
}

func renderAgeGroup(g models.AgeGroup) string {
	t := newTable()
	t.AppendRows([]table.Row{
		{"ID", g.ID},
		{"Name", g.Name},
		{"Ages", fmt.Sprintf("%d-%d", g.MinAge, g.MaxAge)},
		{"Activity", fmt.Sprintf("%s (%s)", g.Activity.Name, g.Activity.Category)},
		{"Status", string(g.Status)},
		{"Description", orDash(g.Description)},
		{"Participants", g.ParticipantCount},
		{"Created", g.CreatedAt.Format(dateLayout)},
		{"Updated", g.UpdatedAt.Format(dateLayout)},
	})

	return t.Render()
}

func renderActivities(activities []models.Activity) string {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Category"})
	for _, a := range activities {
		t.AppendRow(table.Row{a.ID, a.Name, a.Category})
	}

	return t.Render()
}

func renderBranches(branches []models.Branch) string {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Location", "Players", "Teams", "Category", "Active"})
	for _, b := range branches {
		t.AppendRow(table.Row{b.ID, b.Name, b.Location, b.ActivePlayers, b.Teams, string(b.Category), b.IsActive})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", fmt.Sprintf("%d branches", len(branches))})

	return t.Render()
}

func renderBranchStats(stats models.BranchStats) string {
	t := newTable()
	t.AppendRows([]table.Row{
		{"Branches", stats.TotalBranches},
		{"Active branches", stats.ActiveBranches},
		{"Players", stats.TotalPlayers},
		{"Teams", stats.TotalTeams},
	})
	t.AppendSeparator()
	for _, c := range models.BranchCategories {
		t.AppendRow(table.Row{string(c), stats.CategoriesCount[c]})
	}

	return t.Render()
}

func renderMetrics(m models.DashboardMetrics) string {
	t := newTable()
	t.AppendRows([]table.Row{
		{"Total players", m.TotalPlayers},
		{"Active teams", m.ActiveTeams},
		{"Active branches", m.ActiveBranches},
		{"Sports offered", m.SportsOffered},
		{"Monthly growth", fmt.Sprintf("%.1f%%", m.MonthlyGrowth)},
	})

	return t.Render()
}
