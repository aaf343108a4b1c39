package overtime

import "context"

// ReportService defines the attendance & overtime report entry point
type ReportService interface {
	// GenerateOvertimeReport computes daily or summary rows for the filtered employees
	GenerateOvertimeReport(ctx context.Context, req OvertimeReportRequest) (OvertimeReport, error)
}
