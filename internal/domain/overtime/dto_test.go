package overtime

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOvertimeReportRequest_Validate(t *testing.T) {
	t.Run("defaults mode to daily", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-01", To: "2024-06-30"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "daily", req.Mode)
	})

	t.Run("normalizes mode case", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-01", To: "2024-06-01", Mode: "Summary"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "summary", req.Mode)
	})

	t.Run("missing and malformed dates", func(t *testing.T) {
		req := OvertimeReportRequest{To: "06/30/2024"}
		err := req.Validate()

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.ToMap()
		assert.Equal(t, "from is required", fields["from"])
		assert.Equal(t, "to must be in YYYY-MM-DD format", fields["to"])
	})

	t.Run("empty employee id", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-01", To: "2024-06-30", EmployeeIDs: []string{"E1", " "}}
		var verrs validator.ValidationErrors
		require.ErrorAs(t, req.Validate(), &verrs)
		assert.Contains(t, verrs.ToMap(), "employee_ids")
	})

	t.Run("unknown mode", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-01", To: "2024-06-30", Mode: "weekly"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidMode)
	})

	t.Run("reversed range", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-30", To: "2024-06-01"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidDateRange)
	})

	t.Run("single day range", func(t *testing.T) {
		req := OvertimeReportRequest{From: "2024-06-01", To: "2024-06-01"}
		assert.NoError(t, req.Validate())
	})
}

func TestShiftAssignment_Covers(t *testing.T) {
	start := DateOf(mustDate(t, "2024-06-01"))
	end := DateOf(mustDate(t, "2024-06-10"))

	closed := ShiftAssignment{StartDate: start, EndDate: &end}
	assert.True(t, closed.Covers(start))
	assert.True(t, closed.Covers(end))
	assert.False(t, closed.Covers(start.AddDate(0, 0, -1)))
	assert.False(t, closed.Covers(end.AddDate(0, 0, 1)))

	open := ShiftAssignment{StartDate: start}
	assert.True(t, open.Covers(start.AddDate(1, 0, 0)))
	assert.False(t, open.Covers(start.AddDate(0, 0, -1)))
}

func TestDayRecord_Incomplete(t *testing.T) {
	in := mustDate(t, "2024-06-01")
	assert.True(t, DayRecord{In: &in}.Incomplete())
	assert.False(t, DayRecord{In: &in, Out: &in}.Incomplete())
}

func TestWarning(t *testing.T) {
	code, ok := Warning(ErrNegativeDuration)
	assert.True(t, ok)
	assert.Equal(t, WarningNegativeDuration, code)

	_, ok = Warning(ErrSourceUnavailable)
	assert.False(t, ok)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
