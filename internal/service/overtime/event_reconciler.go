package overtime

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
)

// Reconciled is the observed in/out pair of one employee-day. Out is nil when
// only one punch exists.
type Reconciled struct {
	In  *time.Time
	Out *time.Time
}

func sortedByTime(events []overtime.CheckEvent) []overtime.CheckEvent {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b overtime.CheckEvent) int {
		return a.Time.Compare(b.Time)
	})
	return sorted
}

// ReconcileDay takes the first punch as "in" and the last as "out", ignoring log types.
// events must already be restricted to one employee and one work date.
func ReconcileDay(events []overtime.CheckEvent) Reconciled {
	if len(events) == 0 {
		return Reconciled{}
	}

	sorted := sortedByTime(events)
	in := sorted[0].Time
	r := Reconciled{In: &in}
	if len(sorted) >= 2 {
		out := sorted[len(sorted)-1].Time
		r.Out = &out
	}
	return r
}

// ReconcileDayStrict pairs the earliest IN-tagged punch with the latest OUT-tagged punch.
// Missing tags fall back to the ReconcileDay choice for that side.
func ReconcileDayStrict(events []overtime.CheckEvent) Reconciled {
	if len(events) == 0 {
		return Reconciled{}
	}

	sorted := sortedByTime(events)
	inIdx := 0
	for i, e := range sorted {
		if e.LogType == overtime.LogTypeIn {
			inIdx = i
			break
		}
	}

	outIdx := -1
	for i := len(sorted) - 1; i > inIdx; i-- {
		if sorted[i].LogType == overtime.LogTypeOut {
			outIdx = i
			break
		}
	}
	if outIdx < 0 && len(sorted) >= 2 && len(sorted)-1 != inIdx {
		outIdx = len(sorted) - 1
	}

	in := sorted[inIdx].Time
	r := Reconciled{In: &in}
	if outIdx >= 0 {
		out := sorted[outIdx].Time
		r.Out = &out
	}
	return r
}
