package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Location       *time.Location
	OvernightGrace time.Duration
	Workers        int
	MaxRangeDays   int
}

type ReportServiceImpl struct {
	source overtime.Source
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewReportService(source overtime.Source, cfg Config, logger *slog.Logger) overtime.ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportServiceImpl{
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// companyFromContext returns the company_id claim when the caller's token is company-scoped.
func companyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	companyID, _ := claims["company_id"].(string)
	return companyID, nil
}

// GenerateOvertimeReport implements overtime.ReportService.
func (s *ReportServiceImpl) GenerateOvertimeReport(ctx context.Context, req overtime.OvertimeReportRequest) (overtime.OvertimeReport, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeReport{}, err
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return overtime.OvertimeReport{}, fmt.Errorf("%w: %v", overtime.ErrInvalidDateRange, err)
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return overtime.OvertimeReport{}, fmt.Errorf("%w: %v", overtime.ErrInvalidDateRange, err)
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if s.cfg.MaxRangeDays > 0 && days > s.cfg.MaxRangeDays {
		return overtime.OvertimeReport{}, fmt.Errorf("%w: %d days requested, maximum is %d", overtime.ErrRangeTooLarge, days, s.cfg.MaxRangeDays)
	}

	company := req.Company
	scoped, err := companyFromContext(ctx)
	if err != nil {
		return overtime.OvertimeReport{}, err
	}
	if scoped != "" {
		company = scoped
	}

	reportID := uuid.Must(uuid.NewV7()).String()
	logger := s.logger.With(
		slog.String("report_id", reportID),
		slog.String("mode", req.Mode),
		slog.String("from", req.From),
		slog.String("to", req.To),
	)
	start := s.now()

	snap, err := s.fetchSnapshot(ctx, company, req.Department, req.EmployeeIDs, from, to)
	if err != nil {
		return overtime.OvertimeReport{}, err
	}

	records, err := BuildDayRecords(ctx, snap, from, to, Options{
		Location:       s.cfg.Location,
		OvernightGrace: s.cfg.OvernightGrace,
		Workers:        s.cfg.Workers,
		Strict:         req.Strict,
	})
	if err != nil {
		return overtime.OvertimeReport{}, fmt.Errorf("failed to compute day records: %w", err)
	}

	result := overtime.OvertimeReport{
		ReportID:       reportID,
		Mode:           req.Mode,
		From:           req.From,
		To:             req.To,
		GeneratedAt:    s.now().Format(time.RFC3339),
		TotalEmployees: len(snap.Employees),
	}

	switch overtime.Mode(req.Mode) {
	case overtime.ModeSummary:
		result.Summary = SummaryRows(Summarize(records))
		result.TotalRows = len(result.Summary)
		for _, row := range result.Summary {
			if row.Flagged() {
				result.FlaggedRows++
			}
		}
	default:
		result.Daily = DailyRows(records)
		result.TotalRows = len(result.Daily)
		for _, row := range result.Daily {
			if row.Flagged() {
				result.FlaggedRows++
			}
		}
	}

	logger.Info("Overtime report generated",
		"company", company,
		"employees", result.TotalEmployees,
		"rows", result.TotalRows,
		"flagged_rows", result.FlaggedRows,
		"duration", time.Since(start),
	)
	return result, nil
}

// fetchSnapshot loads employees first so an empty selection fails before anything else
// is fetched, then loads shift types, assignments and events concurrently.
func (s *ReportServiceImpl) fetchSnapshot(ctx context.Context, company, department string, employeeIDs []string, from, to time.Time) (Snapshot, error) {
	var snap Snapshot

	employees, err := s.source.FetchEmployees(ctx, company, department)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: employees: %w", overtime.ErrSourceUnavailable, err)
	}
	unique := uniqueEmployees(employees)
	if skipped := len(employees) - len(unique); skipped > 0 {
		s.logger.Debug("Skipped malformed or duplicate employee records", "count", skipped)
	}
	snap.Employees = filterEmployees(unique, employeeIDs)
	if len(snap.Employees) == 0 {
		return Snapshot{}, overtime.ErrNoQualifyingEmployees
	}

	ids := make([]string, 0, len(snap.Employees))
	for _, e := range snap.Employees {
		ids = append(ids, e.ID)
	}

	// The day before from can own early punches on from via an overnight shift, so its
	// shift and its evening punches are needed. Punches on the day after to can belong to to.
	assignFrom, assignTo := from.AddDate(0, 0, -1), to.AddDate(0, 0, 1)
	loc := s.cfg.Location
	eventsFrom := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	eventsTo := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 2)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		shiftTypes, err := s.source.FetchShiftTypes(gCtx)
		if err != nil {
			return fmt.Errorf("%w: shift types: %w", overtime.ErrSourceUnavailable, err)
		}
		snap.ShiftTypes = shiftTypes
		return nil
	})

	g.Go(func() error {
		assignments, err := s.source.FetchShiftAssignments(gCtx, ids, assignFrom, assignTo)
		if err != nil {
			return fmt.Errorf("%w: shift assignments: %w", overtime.ErrSourceUnavailable, err)
		}
		snap.Assignments = assignments
		return nil
	})

	g.Go(func() error {
		events, err := s.source.FetchCheckEvents(gCtx, ids, eventsFrom, eventsTo)
		if err != nil {
			return fmt.Errorf("%w: check events: %w", overtime.ErrSourceUnavailable, err)
		}
		snap.Events = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func filterEmployees(employees []overtime.Employee, ids []string) []overtime.Employee {
	if len(ids) == 0 {
		return employees
	}
	filtered := make([]overtime.Employee, 0, len(ids))
	for _, e := range employees {
		if slices.Contains(ids, e.ID) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func warningStrings(codes []overtime.WarningCode) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

// DailyRows maps DayRecords to daily-mode rows with display fields.
func DailyRows(records []overtime.DayRecord) []overtime.DailyRow {
	rows := make([]overtime.DailyRow, 0, len(records))
	for _, d := range records {
		rows = append(rows, overtime.DailyRow{
			EmployeeID:      d.EmployeeID,
			EmployeeName:    d.EmployeeName,
			Company:         d.Company,
			Department:      d.Department,
			Date:            d.Date.Format("2006-01-02"),
			DayOfWeek:       d.Date.Weekday().String(),
			ShiftID:         d.ShiftID,
			ShiftName:       d.ShiftName,
			ClockIn:         timePtrToString(d.In),
			ClockOut:        timePtrToString(d.Out),
			Incomplete:      d.Incomplete(),
			ExpectedMinutes: d.ExpectedMinutes,
			WorkedMinutes:   d.WorkedMinutes,
			OvertimeMinutes: d.OvertimeMinutes,
			Expected:        FormatDuration(d.ExpectedMinutes),
			Worked:          FormatDuration(d.WorkedMinutes),
			Overtime:        FormatDuration(d.OvertimeMinutes),
			Warnings:        warningStrings(d.Warnings),
		})
	}
	return rows
}

// SummaryRows maps SummaryRecords to summary-mode rows with display fields.
func SummaryRows(summaries []overtime.SummaryRecord) []overtime.SummaryRow {
	rows := make([]overtime.SummaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, overtime.SummaryRow{
			EmployeeID:           s.EmployeeID,
			EmployeeName:         s.EmployeeName,
			Company:              s.Company,
			Department:           s.Department,
			DayCount:             s.DayCount,
			OTDayCount:           s.OTDayCount,
			TotalExpectedMinutes: s.TotalExpectedMinutes,
			TotalWorkedMinutes:   s.TotalWorkedMinutes,
			TotalOvertimeMinutes: s.TotalOvertimeMinutes,
			AvgOvertimePerOTDay:  s.AvgOvertimePerOTDay,
			TotalExpected:        FormatDuration(s.TotalExpectedMinutes),
			TotalWorked:          FormatDuration(s.TotalWorkedMinutes),
			TotalOvertime:        FormatDuration(s.TotalOvertimeMinutes),
			AvgOvertime:          FormatDuration(int(math.Round(s.AvgOvertimePerOTDay))),
			FlaggedDays:          s.FlaggedDays,
			Warnings:             warningStrings(s.Warnings),
		})
	}
	return rows
}
