package overtime

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	d := date(t, s)
	return &d
}

func TestResolveShift(t *testing.T) {
	assignments := []overtime.ShiftAssignment{
		{EmployeeID: "E1", ShiftTypeID: "DAY", StartDate: date(t, "2024-01-01"), EndDate: datePtr(t, "2024-03-31")},
		{EmployeeID: "E1", ShiftTypeID: "NIGHT", StartDate: date(t, "2024-04-01"), EndDate: nil},
		{EmployeeID: "E1", ShiftTypeID: "SPECIAL", StartDate: date(t, "2024-05-10"), EndDate: datePtr(t, "2024-05-12")},
		{EmployeeID: "E2", ShiftTypeID: "OTHER", StartDate: date(t, "2024-01-01"), EndDate: nil},
	}

	cases := []struct {
		name string
		date string
		want string
	}{
		{"before any assignment falls back to default", "2023-12-31", "DEFAULT"},
		{"inclusive start", "2024-01-01", "DAY"},
		{"inclusive end", "2024-03-31", "DAY"},
		{"open-ended assignment", "2030-01-01", "NIGHT"},
		{"latest start wins on overlap", "2024-05-11", "SPECIAL"},
		{"overlap end date inclusive", "2024-05-12", "SPECIAL"},
		{"after overlap ends", "2024-05-13", "NIGHT"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ResolveShift("E1", date(t, c.date), assignments, "DEFAULT")
			assert.Equal(t, c.want, got)
		})
	}
}

func TestResolveShift_Unresolved(t *testing.T) {
	got := ResolveShift("E9", date(t, "2024-06-01"), nil, "")
	assert.Equal(t, Unresolved, got)
}

func TestResolveShift_IgnoresMalformedAssignments(t *testing.T) {
	assignments := []overtime.ShiftAssignment{
		// end before start never covers anything
		{EmployeeID: "E1", ShiftTypeID: "BROKEN", StartDate: date(t, "2024-06-10"), EndDate: datePtr(t, "2024-06-01")},
		{EmployeeID: "E1", ShiftTypeID: "", StartDate: date(t, "2024-06-01"), EndDate: nil},
	}
	got := ResolveShift("E1", date(t, "2024-06-05"), assignments, "DEFAULT")
	assert.Equal(t, "DEFAULT", got)
}

func TestResolveShift_EqualStartKeepsFirst(t *testing.T) {
	assignments := []overtime.ShiftAssignment{
		{EmployeeID: "E1", ShiftTypeID: "A", StartDate: date(t, "2024-06-01")},
		{EmployeeID: "E1", ShiftTypeID: "B", StartDate: date(t, "2024-06-01")},
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, "A", ResolveShift("E1", date(t, "2024-06-02"), assignments, ""))
	}
}
