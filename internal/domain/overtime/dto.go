package overtime

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/validator"
)

// ========================================
// OVERTIME REPORT REQUEST
// ========================================

type OvertimeReportRequest struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Mode        string   `json:"mode"`
	Company     string   `json:"company,omitempty"`
	Department  string   `json:"department,omitempty"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`

	// Strict pairs the earliest IN-tagged with the latest OUT-tagged event
	// instead of the first and last punch of the day.
	Strict bool `json:"strict"`
}

// Validate checks field presence and formats, returning validator.ValidationErrors. Once
// the fields are well formed it returns ErrInvalidMode or ErrInvalidDateRange for an
// unknown mode or a reversed range.
//
// Blank employee_ids entries are rejected for callers building the request directly;
// the HTTP handler drops them while parsing the query.
func (r *OvertimeReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.From) {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from is required",
		})
	} else if !validator.IsValidDate(r.From) {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.To) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to is required",
		})
	} else if !validator.IsValidDate(r.To) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids",
				Message: "employee_ids must not contain empty values",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Mode == "" {
		r.Mode = string(ModeDaily)
	}
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if !validator.IsInSlice(r.Mode, ModeValues) {
		return fmt.Errorf("%w: got %q", ErrInvalidMode, r.Mode)
	}

	// YYYY-MM-DD compares lexically in date order
	if r.To < r.From {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, r.To, r.From)
	}

	return nil
}

// ========================================
// OVERTIME REPORT RESPONSE
// ========================================

type OvertimeReport struct {
	ReportID    string `json:"report_id"`
	Mode        string `json:"mode"`
	From        string `json:"from"`
	To          string `json:"to"`
	GeneratedAt string `json:"generated_at"`

	TotalEmployees int `json:"total_employees"`
	TotalRows      int `json:"total_rows"`
	FlaggedRows    int `json:"flagged_rows"`

	Daily   []DailyRow   `json:"daily,omitempty"`
	Summary []SummaryRow `json:"summary,omitempty"`
}

type DailyRow struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Company      string `json:"company"`
	Department   string `json:"department"`
	Date         string `json:"date"`
	DayOfWeek    string `json:"day_of_week"`
	ShiftID      string `json:"shift_id"`
	ShiftName    string `json:"shift_name"`

	ClockIn    *string `json:"clock_in"`
	ClockOut   *string `json:"clock_out"`
	Incomplete bool    `json:"incomplete"`

	ExpectedMinutes int `json:"expected_minutes"`
	WorkedMinutes   int `json:"worked_minutes"`
	OvertimeMinutes int `json:"overtime_minutes"`

	// H:MM display values
	Expected string `json:"expected"`
	Worked   string `json:"worked"`
	Overtime string `json:"overtime"`

	Warnings []string `json:"warnings,omitempty"`
}

type SummaryRow struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Company      string `json:"company"`
	Department   string `json:"department"`

	DayCount             int     `json:"day_count"`
	OTDayCount           int     `json:"ot_day_count"`
	TotalExpectedMinutes int     `json:"total_expected_minutes"`
	TotalWorkedMinutes   int     `json:"total_worked_minutes"`
	TotalOvertimeMinutes int     `json:"total_overtime_minutes"`
	AvgOvertimePerOTDay  float64 `json:"avg_overtime_per_ot_day"`

	// H:MM display values
	TotalExpected string `json:"total_expected"`
	TotalWorked   string `json:"total_worked"`
	TotalOvertime string `json:"total_overtime"`
	AvgOvertime   string `json:"avg_overtime"`

	FlaggedDays int      `json:"flagged_days"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Flagged reports whether the row carries any data-quality warning.
func (r DailyRow) Flagged() bool { return len(r.Warnings) > 0 }

func (r SummaryRow) Flagged() bool { return r.FlaggedDays > 0 }
