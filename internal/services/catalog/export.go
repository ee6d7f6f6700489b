package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

const exportDateLayout = "1/2/2006"

var exportHeader = []string{"Name", "Min Age", "Max Age", "Activity", "Status", "Participants", "Created Date"}

// ExportCSV writes groups as CSV in list order.
func ExportCSV(w io.Writer, groups []models.AgeGroup) error {
	const op = "catalog.ExportCSV"

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, g := range groups {
		row := []string{
			g.Name,
			strconv.Itoa(g.MinAge),
			strconv.Itoa(g.MaxAge),
			g.Activity.Name,
			string(g.Status),
			strconv.Itoa(g.ParticipantCount),
			g.CreatedAt.Format(exportDateLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
