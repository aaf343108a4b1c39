package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/xuri/excelize/v2"
)

const (
	ReportSheet = "Overtime"
	InfoSheet   = "Report"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	flaggedFill = "FFF2CC"
)

var dailyHeaders = []string{
	"Employee ID", "Employee Name", "Company", "Department", "Date", "Day",
	"Shift", "Clock In", "Clock Out", "Incomplete",
	"Expected", "Worked", "Overtime", "Overtime (min)", "Warnings",
}

var summaryHeaders = []string{
	"Employee ID", "Employee Name", "Company", "Department",
	"Days", "OT Days", "Total Expected", "Total Worked", "Total Overtime",
	"Total Overtime (min)", "Avg Overtime per OT Day", "Flagged Days", "Warnings",
}

// FileName is the attachment name of an exported report.
func FileName(report overtime.OvertimeReport) string {
	return fmt.Sprintf("overtime_%s_%s_%s.xlsx", report.Mode, report.From, report.To)
}

// WriteXLSX renders report as a workbook with the report rows and a metadata sheet.
// Rows carrying warnings are highlighted.
func WriteXLSX(w io.Writer, report overtime.OvertimeReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	flaggedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{flaggedFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create flagged style: %w", err)
	}

	var (
		headers []string
		rows    [][]any
		flagged []bool
	)
	switch overtime.Mode(report.Mode) {
	case overtime.ModeSummary:
		headers = summaryHeaders
		for _, r := range report.Summary {
			rows = append(rows, []any{
				r.EmployeeID, r.EmployeeName, r.Company, r.Department,
				r.DayCount, r.OTDayCount, r.TotalExpected, r.TotalWorked, r.TotalOvertime,
				r.TotalOvertimeMinutes, r.AvgOvertime, r.FlaggedDays, strings.Join(r.Warnings, ", "),
			})
			flagged = append(flagged, r.Flagged())
		}
	default:
		headers = dailyHeaders
		for _, r := range report.Daily {
			rows = append(rows, []any{
				r.EmployeeID, r.EmployeeName, r.Company, r.Department, r.Date, r.DayOfWeek,
				r.ShiftName, deref(r.ClockIn), deref(r.ClockOut), yesNo(r.Incomplete),
				r.Expected, r.Worked, r.Overtime, r.OvertimeMinutes, strings.Join(r.Warnings, ", "),
			})
			flagged = append(flagged, r.Flagged())
		}
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ReportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if flagged[i] {
			if err := f.SetCellStyle(ReportSheet, cell, fmt.Sprintf("%s%d", lastCol, rowNum), flaggedStyle); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(ReportSheet, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(ReportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := writeInfo(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeInfo(f *excelize.File, report overtime.OvertimeReport) error {
	if _, err := f.NewSheet(InfoSheet); err != nil {
		return err
	}
	info := [][]any{
		{"Report ID", report.ReportID},
		{"Mode", report.Mode},
		{"From", report.From},
		{"To", report.To},
		{"Generated At", report.GeneratedAt},
		{"Employees", report.TotalEmployees},
		{"Rows", report.TotalRows},
		{"Flagged Rows", report.FlaggedRows},
	}
	for i, row := range info {
		if err := f.SetSheetRow(InfoSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(InfoSheet, "A", "B", 24)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
