package overtime

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
)

type DayMetrics struct {
	ExpectedMinutes int
	WorkedMinutes   int
	OvertimeMinutes int

	// Anomalies wraps the overtime.Err* values absorbed for this day.
	Anomalies []error
}

// ComputeDayMetrics derives expected, worked and overtime minutes for one employee-day.
// A nil shift means the shift is unresolved.
//
// Overtime is only accounted against a usable shift: when the shift is unresolved or its
// times cannot be parsed, expected and overtime are both 0 and the day keeps its worked time.
func ComputeDayMetrics(shift *overtime.ShiftType, in, out *time.Time) DayMetrics {
	var m DayMetrics

	baseline := false
	if shift == nil {
		m.Anomalies = append(m.Anomalies, overtime.ErrUnresolvedShift)
	} else {
		p := parseShift(*shift)
		if p.err != nil {
			m.Anomalies = append(m.Anomalies, fmt.Errorf("shift %s: %w", shift.ID, p.err))
		} else {
			m.ExpectedMinutes = p.expectedMinutes()
			baseline = true
		}
	}

	if in != nil && out != nil {
		worked := int(out.Sub(*in) / time.Minute)
		if worked < 0 {
			m.Anomalies = append(m.Anomalies, fmt.Errorf("%w: in %s, out %s",
				overtime.ErrNegativeDuration, in.Format(time.RFC3339), out.Format(time.RFC3339)))
			worked = 0
		}
		m.WorkedMinutes = worked
	}

	if baseline && m.WorkedMinutes > m.ExpectedMinutes {
		m.OvertimeMinutes = m.WorkedMinutes - m.ExpectedMinutes
	}

	return m
}

// Warnings converts the absorbed anomalies into row warning codes.
func (m DayMetrics) Warnings() []overtime.WarningCode {
	if len(m.Anomalies) == 0 {
		return nil
	}
	codes := make([]overtime.WarningCode, 0, len(m.Anomalies))
	for _, err := range m.Anomalies {
		if code, ok := overtime.Warning(err); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
