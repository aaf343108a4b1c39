package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
)

// Unresolved is returned by ResolveShift when no assignment covers the date and
// the employee has no default shift.
const Unresolved = ""

// ResolveShift picks the shift that applies to employeeID on date.
//
// Assignments covering the date (inclusive on both ends, nil end date = unbounded)
// compete on start date and the latest one wins; on equal start dates the first one
// in input order is kept. Without a covering assignment the default shift applies.
func ResolveShift(employeeID string, date time.Time, assignments []overtime.ShiftAssignment, defaultShiftID string) string {
	var best *overtime.ShiftAssignment
	for i := range assignments {
		a := &assignments[i]
		if a.EmployeeID != employeeID || a.ShiftTypeID == "" {
			continue
		}
		if !a.Covers(date) {
			continue
		}
		if best == nil || a.StartDate.After(best.StartDate) {
			best = a
		}
	}

	if best != nil {
		return best.ShiftTypeID
	}
	return defaultShiftID
}
