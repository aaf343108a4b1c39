package overtime

import "time"

// Employee is the active-employee snapshot row supplied by the HR system.
type Employee struct {
	ID             string
	Name           string
	Company        string
	Department     string
	DefaultShiftID string
}

// ShiftType holds wall-clock start/end times as "HH:MM[:SS]" strings.
// EndTime earlier than StartTime means the shift runs into the next day.
type ShiftType struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
}

type ShiftAssignment struct {
	EmployeeID  string
	ShiftTypeID string
	StartDate   time.Time
	EndDate     *time.Time // nil = open-ended
}

// Covers reports whether date falls inside the assignment, both ends inclusive.
func (a ShiftAssignment) Covers(date time.Time) bool {
	date = DateOf(date)
	if date.Before(DateOf(a.StartDate)) {
		return false
	}
	if a.EndDate != nil && date.After(DateOf(*a.EndDate)) {
		return false
	}
	return true
}

type LogType string

const (
	LogTypeIn  LogType = "IN"
	LogTypeOut LogType = "OUT"
)

type CheckEvent struct {
	EmployeeID string
	Time       time.Time
	LogType    LogType
}

type Mode string

const (
	ModeDaily   Mode = "daily"
	ModeSummary Mode = "summary"
)

var ModeValues = []string{
	string(ModeDaily),
	string(ModeSummary),
}

// WarningCode flags a non-fatal data anomaly on a report row.
type WarningCode string

const (
	WarningInvalidTimeFormat WarningCode = "INVALID_TIME_FORMAT"
	WarningNegativeDuration  WarningCode = "NEGATIVE_DURATION"
	WarningUnresolvedShift   WarningCode = "UNRESOLVED_SHIFT"
)

// DayRecord is the computed result for one employee on one calendar date.
type DayRecord struct {
	EmployeeID   string
	EmployeeName string
	Company      string
	Department   string
	Date         time.Time

	ShiftID   string
	ShiftName string

	In  *time.Time
	Out *time.Time

	ExpectedMinutes int
	WorkedMinutes   int
	OvertimeMinutes int

	Warnings []WarningCode
}

// Incomplete reports a day with a single punch.
func (d DayRecord) Incomplete() bool {
	return d.In != nil && d.Out == nil
}

// SummaryRecord folds every DayRecord of one employee over the requested period.
type SummaryRecord struct {
	EmployeeID   string
	EmployeeName string
	Company      string
	Department   string

	DayCount             int
	OTDayCount           int
	TotalExpectedMinutes int
	TotalWorkedMinutes   int
	TotalOvertimeMinutes int
	AvgOvertimePerOTDay  float64

	FlaggedDays int
	Warnings    []WarningCode
}

// DateOf truncates t to its calendar date in t's own location, returned as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
