package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeSource struct {
	db *database.DB
}

// FetchEmployees implements overtime.Source.
func (o *overtimeSource) FetchEmployees(ctx context.Context, company, department string) ([]overtime.Employee, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, COALESCE(employee_name, ''), COALESCE(company, ''),
			   COALESCE(department, ''), COALESCE(default_shift, '')
		FROM employees
		WHERE status = 'Active'
		  AND ($1 = '' OR company = $1)
		  AND ($2 = '' OR department = $2)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, company, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}

	employees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (overtime.Employee, error) {
		var e overtime.Employee
		err := row.Scan(&e.ID, &e.Name, &e.Company, &e.Department, &e.DefaultShiftID)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan employees: %w", err)
	}

	return employees, nil
}

// FetchShiftTypes implements overtime.Source.
//
// Times are read as text so malformed values reach the engine and surface as row warnings.
func (o *overtimeSource) FetchShiftTypes(ctx context.Context) ([]overtime.ShiftType, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, COALESCE(name, ''), COALESCE(start_time::text, ''), COALESCE(end_time::text, '')
		FROM shift_types
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift types: %w", err)
	}

	shiftTypes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (overtime.ShiftType, error) {
		var s overtime.ShiftType
		err := row.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift types: %w", err)
	}

	return shiftTypes, nil
}

// FetchShiftAssignments implements overtime.Source. Only submitted assignments overlapping
// [from, to] are returned.
func (o *overtimeSource) FetchShiftAssignments(ctx context.Context, employeeIDs []string, from, to time.Time) ([]overtime.ShiftAssignment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT employee_id, COALESCE(shift_type, ''), start_date, end_date
		FROM shift_assignments
		WHERE docstatus = 1
		  AND status = 'Active'
		  AND employee_id = ANY($1)
		  AND start_date <= $3
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY employee_id, start_date
	`

	rows, err := q.Query(ctx, query, employeeIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift assignments: %w", err)
	}

	assignments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (overtime.ShiftAssignment, error) {
		var a overtime.ShiftAssignment
		err := row.Scan(&a.EmployeeID, &a.ShiftTypeID, &a.StartDate, &a.EndDate)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift assignments: %w", err)
	}

	return assignments, nil
}

// FetchCheckEvents implements overtime.Source. The window is half-open: [from, to).
func (o *overtimeSource) FetchCheckEvents(ctx context.Context, employeeIDs []string, from, to time.Time) ([]overtime.CheckEvent, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT employee, time, COALESCE(log_type, '')
		FROM employee_checkins
		WHERE employee = ANY($1)
		  AND time >= $2
		  AND time < $3
		ORDER BY employee, time
	`

	rows, err := q.Query(ctx, query, employeeIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query check events: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (overtime.CheckEvent, error) {
		var (
			e       overtime.CheckEvent
			logType string
		)
		err := row.Scan(&e.EmployeeID, &e.Time, &logType)
		e.LogType = overtime.LogType(logType)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan check events: %w", err)
	}

	return events, nil
}

func NewOvertimeSource(db *database.DB) overtime.Source {
	return &overtimeSource{
		db: db,
	}
}
