/*
export.go - XLSX statistics report

PURPOSE:
  Renders the tenant's leave statistics as a downloadable Excel workbook
  with three sheets: per-employee totals, per-division aggregates, and
  the busiest days ranking. The workbook is built in memory and streamed
  to the client; nothing is written to disk.

SEE ALSO:
  - handlers.go: The sibling JSON endpoints for the same data
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/warp/vacation-tracker/analytics"
	"github.com/warp/vacation-tracker/source"
)

const exportBusiestDayLimit = 20

// ExportStats streams the statistics workbook.
// GET /api/export/stats.xlsx
func (h *Handler) ExportStats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	empStats, orphans := analytics.EmployeeLeaveStats(snap.Employees, snap.Events)
	divStats := analytics.DivisionLeaveStats(snap.Divisions, snap.Employees, empStats)
	busiest := analytics.BusiestDays(snap.Events, exportBusiestDayLimit)

	f, err := buildStatsWorkbook(empStats, orphans, divStats, busiest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stats.xlsx"`)
	if err := f.Write(w); err != nil {
		h.Log.WithError(err).Error("workbook write failed")
	}
}

func buildStatsWorkbook(empStats []analytics.EmployeeStats, orphans int,
	divStats []analytics.DivisionStats, busiest []analytics.DayStats) (*excelize.File, error) {

	f := excelize.NewFile()

	if err := writeEmployeeSheet(f, empStats, orphans); err != nil {
		return nil, err
	}
	if err := writeDivisionSheet(f, divStats); err != nil {
		return nil, err
	}
	if err := writeBusiestDaysSheet(f, busiest); err != nil {
		return nil, err
	}

	// The default sheet excelize creates is replaced by our first one.
	f.DeleteSheet("Sheet1")
	idx, err := f.GetSheetIndex("Employees")
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeEmployeeSheet(f *excelize.File, stats []analytics.EmployeeStats, orphans int) error {
	const sheet = "Employees"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Employee", "Division", "Total Days", "Vacation", "Sick", "Unpaid", "Other", "Events"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range stats {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			row.EmployeeName, string(row.DivisionID),
			row.TotalDays, row.VacationDays, row.SickDays,
			row.UnpaidDays, row.OtherDays, row.EventCount,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if orphans > 0 {
		cell := fmt.Sprintf("A%d", len(stats)+3)
		note := []any{fmt.Sprintf("%d event(s) referenced unknown employees and were excluded", orphans)}
		if err := f.SetSheetRow(sheet, cell, &note); err != nil {
			return err
		}
	}
	return nil
}

func writeDivisionSheet(f *excelize.File, stats []analytics.DivisionStats) error {
	const sheet = "Divisions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Division", "Employees", "Total Days", "Avg Days / Employee"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range stats {
		avg, _ := row.AverageDaysPerEmployee.Float64()
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{row.DivisionName, row.EmployeeCount, row.TotalDays, avg}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeBusiestDaysSheet(f *excelize.File, days []analytics.DayStats) error {
	const sheet = "Busiest Days"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Date", "Employees Away"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, day := range days {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{day.Date, day.Count}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
