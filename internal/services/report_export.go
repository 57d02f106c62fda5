package services

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	ExportXLSX = "xlsx"
	ExportText = "txt"
)

// ExportFileName is the download name of a report exported on generatedAt.
func ExportFileName(period, format string, generatedAt time.Time) string {
	return fmt.Sprintf("lifedrop-report-%s-%s.%s", period, generatedAt.Format(models.DateLayout), format)
}

// ReportText renders a report as a plain-text summary.
func ReportText(r *dto.ReportData, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("LifeDrop Blood Donation Report\n")
	fmt.Fprintf(&b, "Period: %s\n", r.Period)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "- Total Donations: %d\n", r.TotalDonations)
	fmt.Fprintf(&b, "- Total Appointments: %d\n", r.TotalAppointments)
	fmt.Fprintf(&b, "- Completion Rate: %d%%\n", r.CompletionRate)
	fmt.Fprintf(&b, "- Average Daily Donations: %.1f\n\n", r.AverageDaily)
	b.WriteString("Donations by Blood Group:\n")
	for _, g := range sortedGroups(r.DonationsByGroup) {
		fmt.Fprintf(&b, "- %s: %d\n", g, r.DonationsByGroup[g])
	}
	return b.String()
}

// ReportXLSX renders a report as a workbook with a Summary sheet and a Blood
// Groups sheet.
func ReportXLSX(r *dto.ReportData, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	const groups = "Blood Groups"

	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(groups); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Period", r.Period},
		{"From", r.StartDate.Format(models.DateLayout)},
		{"Generated", generatedAt.Format(time.RFC3339)},
		{"Total Donations", r.TotalDonations},
		{"Total Appointments", r.TotalAppointments},
		{"Completion Rate (%)", r.CompletionRate},
		{"Average Daily Donations", r.AverageDaily},
	}
	if err := writeRows(f, summary, rows); err != nil {
		return nil, err
	}

	groupRows := [][]interface{}{{"Blood Group", "Donations"}}
	for _, g := range sortedGroups(r.DonationsByGroup) {
		groupRows = append(groupRows, []interface{}{g, r.DonationsByGroup[g]})
	}
	if err := writeRows(f, groups, groupRows); err != nil {
		return nil, err
	}

	for _, sheet := range []string{summary, groups} {
		if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", "A", 26); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// sortedGroups orders blood groups as models.BloodGroups does, unknown ones
// last.
func sortedGroups(m map[string]int64) []string {
	rank := make(map[string]int, len(models.BloodGroups))
	for i, g := range models.BloodGroups {
		rank[string(g)] = i
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, okI := rank[keys[i]]
		rj, okJ := rank[keys[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
