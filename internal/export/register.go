// Package export renders case data into downloadable workbooks.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
)

const registerSheet = "Case Register"

var registerHeaders = []string{
	"Case ID", "Resource", "Subject", "Requester", "Business Unit",
	"Status", "Cycle", "Submitted At", "Decided At", "Approvers", "Rejection Reasons",
}

// RegisterExporter builds the case register workbook handed to HR for
// filing. Names resolve against the directory snapshot; unknown IDs are
// printed as-is rather than dropped.
type RegisterExporter struct{}

// NewRegisterExporter creates a register exporter
func NewRegisterExporter() *RegisterExporter {
	return &RegisterExporter{}
}

// Build renders the cases into a workbook. The caller owns closing the file.
func (e *RegisterExporter) Build(cases []*routing.Case, snap *directory.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(registerSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		_ = f.SetCellStyle(registerSheet, cell, cell, headerStyle)
	}

	for i, c := range cases {
		row := i + 2
		values := []interface{}{
			c.ID,
			string(c.Resource),
			e.displayName(snap, c.SubjectEmployeeID),
			e.displayName(snap, c.RequesterID),
			e.unitName(snap, c.BusinessUnitID),
			string(c.Status),
			c.Cycle,
			formatTime(c.SubmittedAt),
			formatTimePtr(c.DecidedAt),
			e.approverList(snap, c),
			strings.Join(c.RejectionReasons(), "; "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(registerSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(registerSheet, "A", "K", 20)
	return f, nil
}

func (e *RegisterExporter) displayName(snap *directory.Snapshot, userID string) string {
	if snap != nil {
		if actor, ok := snap.Actor(userID); ok {
			return actor.Name
		}
	}
	return userID
}

func (e *RegisterExporter) unitName(snap *directory.Snapshot, unitID string) string {
	if snap != nil {
		if name := snap.UnitName(unitID); name != "" {
			return name
		}
	}
	return unitID
}

func (e *RegisterExporter) approverList(snap *directory.Snapshot, c *routing.Case) string {
	parts := make([]string, 0, len(c.Steps))
	for _, step := range c.Steps {
		parts = append(parts, fmt.Sprintf("%s (%s)", e.displayName(snap, step.ApproverUserID), step.Status))
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
