package overtime

import (
	"context"
	"time"
)

// Source is the read path to the HR system. Every report invocation fetches its own snapshot.
type Source interface {
	// FetchEmployees returns active employees; empty company/department means no filter.
	FetchEmployees(ctx context.Context, company, department string) ([]Employee, error)

	FetchShiftTypes(ctx context.Context) ([]ShiftType, error)

	// FetchShiftAssignments returns assignments of the given employees overlapping [from, to].
	FetchShiftAssignments(ctx context.Context, employeeIDs []string, from, to time.Time) ([]ShiftAssignment, error)

	// FetchCheckEvents returns events of the given employees with from <= time < to.
	FetchCheckEvents(ctx context.Context, employeeIDs []string, from, to time.Time) ([]CheckEvent, error)
}
