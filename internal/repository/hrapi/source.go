package hrapi

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"golang.org/x/sync/errgroup"
)

const (
	resourceEmployee        = "Employee"
	resourceShiftType       = "Shift Type"
	resourceShiftAssignment = "Shift Assignment"
	resourceCheckin         = "Employee Checkin"

	// employee IDs per "in" filter, keeps request URLs short
	idChunkSize = 100

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

type employeeDoc struct {
	Name         string `json:"name"`
	EmployeeName string `json:"employee_name"`
	Company      string `json:"company"`
	Department   string `json:"department"`
	DefaultShift string `json:"default_shift"`
}

type shiftTypeDoc struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type shiftAssignmentDoc struct {
	Employee  string  `json:"employee"`
	ShiftType string  `json:"shift_type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type checkinDoc struct {
	Employee string `json:"employee"`
	Time     string `json:"time"`
	LogType  string `json:"log_type"`
}

type source struct {
	client   *Client
	location *time.Location
	logger   *slog.Logger
}

// NewSource reads HR data over the REST API. location interprets the naive
// timestamps the HR system stores.
func NewSource(client *Client, location *time.Location, logger *slog.Logger) overtime.Source {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &source{client: client, location: location, logger: logger}
}

// FetchEmployees implements overtime.Source.
func (s *source) FetchEmployees(ctx context.Context, company, department string) ([]overtime.Employee, error) {
	filters := []Filter{{"status", "=", "Active"}}
	if company != "" {
		filters = append(filters, Filter{"company", "=", company})
	}
	if department != "" {
		filters = append(filters, Filter{"department", "=", department})
	}

	docs, err := list[employeeDoc](ctx, s.client, resourceEmployee,
		[]string{"name", "employee_name", "company", "department", "default_shift"}, filters)
	if err != nil {
		return nil, err
	}

	employees := make([]overtime.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, overtime.Employee{
			ID:             d.Name,
			Name:           d.EmployeeName,
			Company:        d.Company,
			Department:     d.Department,
			DefaultShiftID: d.DefaultShift,
		})
	}
	return employees, nil
}

// FetchShiftTypes implements overtime.Source.
func (s *source) FetchShiftTypes(ctx context.Context) ([]overtime.ShiftType, error) {
	docs, err := list[shiftTypeDoc](ctx, s.client, resourceShiftType,
		[]string{"name", "start_time", "end_time"}, nil)
	if err != nil {
		return nil, err
	}

	shiftTypes := make([]overtime.ShiftType, 0, len(docs))
	for _, d := range docs {
		shiftTypes = append(shiftTypes, overtime.ShiftType{
			ID:        d.Name,
			Name:      d.Name,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}
	return shiftTypes, nil
}

// FetchShiftAssignments implements overtime.Source.
func (s *source) FetchShiftAssignments(ctx context.Context, employeeIDs []string, from, to time.Time) ([]overtime.ShiftAssignment, error) {
	docs, err := fetchByEmployee(ctx, employeeIDs, func(ctx context.Context, ids []string) ([]shiftAssignmentDoc, error) {
		return list[shiftAssignmentDoc](ctx, s.client, resourceShiftAssignment,
			[]string{"employee", "shift_type", "start_date", "end_date"},
			[]Filter{
				{"employee", "in", ids},
				{"docstatus", "=", 1},
				{"status", "=", "Active"},
				{"start_date", "<=", to.Format(dateLayout)},
			})
	})
	if err != nil {
		return nil, err
	}

	from = overtime.DateOf(from)
	assignments := make([]overtime.ShiftAssignment, 0, len(docs))
	var skipped int
	for _, d := range docs {
		start, err := time.Parse(dateLayout, d.StartDate)
		if err != nil {
			skipped++
			continue
		}
		a := overtime.ShiftAssignment{EmployeeID: d.Employee, ShiftTypeID: d.ShiftType, StartDate: start}
		if d.EndDate != nil && *d.EndDate != "" {
			end, err := time.Parse(dateLayout, *d.EndDate)
			if err != nil {
				skipped++
				continue
			}
			// open-ended OR end_date >= from cannot be expressed as an AND filter
			if end.Before(from) {
				continue
			}
			a.EndDate = &end
		}
		assignments = append(assignments, a)
	}
	if skipped > 0 {
		s.logger.Warn("Skipped shift assignments with malformed dates", "count", skipped)
	}
	return assignments, nil
}

// FetchCheckEvents implements overtime.Source. The window is half-open: [from, to).
func (s *source) FetchCheckEvents(ctx context.Context, employeeIDs []string, from, to time.Time) ([]overtime.CheckEvent, error) {
	docs, err := fetchByEmployee(ctx, employeeIDs, func(ctx context.Context, ids []string) ([]checkinDoc, error) {
		return list[checkinDoc](ctx, s.client, resourceCheckin,
			[]string{"employee", "time", "log_type"},
			[]Filter{
				{"employee", "in", ids},
				{"time", ">=", from.In(s.location).Format(dateTimeLayout)},
				{"time", "<", to.In(s.location).Format(dateTimeLayout)},
			})
	})
	if err != nil {
		return nil, err
	}

	events := make([]overtime.CheckEvent, 0, len(docs))
	var skipped int
	for _, d := range docs {
		t, err := time.ParseInLocation(dateTimeLayout, d.Time, s.location)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, overtime.CheckEvent{
			EmployeeID: d.Employee,
			Time:       t,
			LogType:    overtime.LogType(d.LogType),
		})
	}
	if skipped > 0 {
		s.logger.Warn("Skipped check-ins with malformed timestamps", "count", skipped)
	}
	return events, nil
}

// fetchByEmployee splits employeeIDs into chunks and fetches them concurrently. The
// client's semaphore bounds the requests actually in flight.
func fetchByEmployee[T any](ctx context.Context, employeeIDs []string, fetch func(context.Context, []string) ([]T, error)) ([]T, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var (
		mu  sync.Mutex
		all []T
	)
	g, gCtx := errgroup.WithContext(ctx)
	for ids := range slices.Chunk(employeeIDs, idChunkSize) {
		g.Go(func() error {
			docs, err := fetch(gCtx, ids)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, docs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
