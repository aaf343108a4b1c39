package overtime

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the master and event data fetched once per report invocation.
type Snapshot struct {
	Employees   []overtime.Employee
	ShiftTypes  []overtime.ShiftType
	Assignments []overtime.ShiftAssignment
	Events      []overtime.CheckEvent
}

type Options struct {
	// Location interprets event timestamps into calendar dates. Defaults to UTC.
	Location *time.Location

	// OvernightGrace is how long after an overnight shift's end a next-day punch
	// still belongs to the shift's start date. Capped at half the off-duty gap.
	OvernightGrace time.Duration

	// Workers bounds the number of employees computed concurrently.
	Workers int

	// Strict selects ReconcileDayStrict instead of ReconcileDay.
	Strict bool
}

const defaultWorkers = 8

// index holds the per-invocation lookup maps built once from a Snapshot.
type index struct {
	shifts      map[string]parsedShift
	assignments map[string][]overtime.ShiftAssignment
	events      map[string][]overtime.CheckEvent
}

func buildIndex(snap Snapshot) *index {
	idx := &index{
		shifts:      make(map[string]parsedShift, len(snap.ShiftTypes)),
		assignments: make(map[string][]overtime.ShiftAssignment),
		events:      make(map[string][]overtime.CheckEvent),
	}
	for _, s := range snap.ShiftTypes {
		if s.ID == "" {
			continue
		}
		if _, dup := idx.shifts[s.ID]; !dup {
			idx.shifts[s.ID] = parseShift(s)
		}
	}
	for _, a := range snap.Assignments {
		idx.assignments[a.EmployeeID] = append(idx.assignments[a.EmployeeID], a)
	}
	for _, e := range snap.Events {
		idx.events[e.EmployeeID] = append(idx.events[e.EmployeeID], e)
	}
	return idx
}

// uniqueEmployees drops records without an ID and repeated IDs, keeping the first.
func uniqueEmployees(employees []overtime.Employee) []overtime.Employee {
	seen := make(map[string]struct{}, len(employees))
	out := make([]overtime.Employee, 0, len(employees))
	for _, e := range employees {
		if e.ID == "" {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// employeeDays computes the DayRecords of a single employee. Not safe for concurrent use.
type employeeDays struct {
	emp      overtime.Employee
	idx      *index
	opts     Options
	resolved map[time.Time]string
}

func newEmployeeDays(emp overtime.Employee, idx *index, opts Options) *employeeDays {
	return &employeeDays{
		emp:      emp,
		idx:      idx,
		opts:     opts,
		resolved: make(map[time.Time]string),
	}
}

func (e *employeeDays) shiftID(date time.Time) string {
	id, ok := e.resolved[date]
	if !ok {
		id = ResolveShift(e.emp.ID, date, e.idx.assignments[e.emp.ID], e.emp.DefaultShiftID)
		e.resolved[date] = id
	}
	return id
}

// shiftOn returns the shift applying on date; false when unresolved or missing from master data.
func (e *employeeDays) shiftOn(date time.Time) (parsedShift, bool) {
	id := e.shiftID(date)
	if id == Unresolved {
		return parsedShift{}, false
	}
	s, ok := e.idx.shifts[id]
	return s, ok
}

// workDate attributes a punch to a calendar date. An early punch on the day after an
// overnight shift belongs to the shift's start date, but only when that night was
// started, i.e. nightStarts holds the start date.
func (e *employeeDays) workDate(t time.Time, nightStarts map[time.Time]bool) time.Time {
	local := t.In(e.opts.Location)
	date := overtime.DateOf(local)

	prev := date.AddDate(0, 0, -1)
	if !nightStarts[prev] {
		return date
	}
	if s, ok := e.shiftOn(prev); ok && s.overnight() {
		if minuteOfDay(local) < s.end+overnightGraceMinutes(s, e.opts.OvernightGrace) {
			return prev
		}
	}
	return date
}

// nightStarts returns the calendar dates on which an overnight shift has a punch
// inside its opening window, at or after start minus the grace.
func (e *employeeDays) nightStarts(events []overtime.CheckEvent) map[time.Time]bool {
	started := make(map[time.Time]bool)
	for _, ev := range events {
		local := ev.Time.In(e.opts.Location)
		date := overtime.DateOf(local)
		if started[date] {
			continue
		}
		s, ok := e.shiftOn(date)
		if !ok || !s.overnight() {
			continue
		}
		if minuteOfDay(local) >= s.start-overnightGraceMinutes(s, e.opts.OvernightGrace) {
			started[date] = true
		}
	}
	return started
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func overnightGraceMinutes(s parsedShift, grace time.Duration) int {
	g := int(grace / time.Minute)
	if half := (s.start - s.end) / 2; half < g {
		g = half
	}
	return max(g, 0)
}

func (e *employeeDays) compute(ctx context.Context, from, to time.Time) ([]overtime.DayRecord, error) {
	events := e.idx.events[e.emp.ID]
	nightStarts := e.nightStarts(events)

	byDate := make(map[time.Time][]overtime.CheckEvent)
	for _, ev := range events {
		d := e.workDate(ev.Time, nightStarts)
		if d.Before(from) || d.After(to) {
			continue
		}
		byDate[d] = append(byDate[d], ev)
	}

	dates := slices.SortedFunc(maps.Keys(byDate), func(a, b time.Time) int { return a.Compare(b) })
	records := make([]overtime.DayRecord, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, e.day(date, byDate[date]))
	}
	return records, nil
}

func (e *employeeDays) day(date time.Time, events []overtime.CheckEvent) overtime.DayRecord {
	var pair Reconciled
	if e.opts.Strict {
		pair = ReconcileDayStrict(events)
	} else {
		pair = ReconcileDay(events)
	}

	rec := overtime.DayRecord{
		EmployeeID:   e.emp.ID,
		EmployeeName: e.emp.Name,
		Company:      e.emp.Company,
		Department:   e.emp.Department,
		Date:         date,
		ShiftID:      e.shiftID(date),
	}
	if pair.In != nil {
		in := pair.In.In(e.opts.Location)
		rec.In = &in
	}
	if pair.Out != nil {
		out := pair.Out.In(e.opts.Location)
		rec.Out = &out
	}

	var shift *overtime.ShiftType
	if s, ok := e.shiftOn(date); ok {
		shift = &s.ShiftType
		rec.ShiftName = s.Name
	}

	m := ComputeDayMetrics(shift, rec.In, rec.Out)
	rec.ExpectedMinutes = m.ExpectedMinutes
	rec.WorkedMinutes = m.WorkedMinutes
	rec.OvertimeMinutes = m.OvertimeMinutes
	rec.Warnings = m.Warnings()
	return rec
}

// BuildDayRecords runs the per-day pipeline over every employee and every date in
// [from, to] that has at least one punch. Rows are ordered by date, then employee ID.
func BuildDayRecords(ctx context.Context, snap Snapshot, from, to time.Time, opts Options) ([]overtime.DayRecord, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	from, to = overtime.DateOf(from), overtime.DateOf(to)

	idx := buildIndex(snap)
	employees := uniqueEmployees(snap.Employees)
	results := make([][]overtime.DayRecord, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, emp := range employees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			records, err := newEmployeeDays(emp, idx, opts).compute(gCtx, from, to)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	records := make([]overtime.DayRecord, 0, total)
	for _, r := range results {
		records = append(records, r...)
	}
	SortDaily(records)
	return records, nil
}

// SortDaily orders records by date ascending, then employee ID ascending.
func SortDaily(records []overtime.DayRecord) {
	slices.SortStableFunc(records, func(a, b overtime.DayRecord) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
}

// Summarize folds DayRecords into one SummaryRecord per employee, ordered by total
// overtime descending, then employee ID ascending.
func Summarize(records []overtime.DayRecord) []overtime.SummaryRecord {
	byEmployee := make(map[string]*overtime.SummaryRecord)
	warnings := make(map[string]map[overtime.WarningCode]struct{})

	for _, d := range records {
		s, ok := byEmployee[d.EmployeeID]
		if !ok {
			s = &overtime.SummaryRecord{
				EmployeeID:   d.EmployeeID,
				EmployeeName: d.EmployeeName,
				Company:      d.Company,
				Department:   d.Department,
			}
			byEmployee[d.EmployeeID] = s
			warnings[d.EmployeeID] = make(map[overtime.WarningCode]struct{})
		}

		s.DayCount++
		if d.OvertimeMinutes > 0 {
			s.OTDayCount++
		}
		s.TotalExpectedMinutes += d.ExpectedMinutes
		s.TotalWorkedMinutes += d.WorkedMinutes
		s.TotalOvertimeMinutes += d.OvertimeMinutes

		if len(d.Warnings) > 0 {
			s.FlaggedDays++
			for _, w := range d.Warnings {
				warnings[d.EmployeeID][w] = struct{}{}
			}
		}
	}

	summaries := make([]overtime.SummaryRecord, 0, len(byEmployee))
	for id, s := range byEmployee {
		if s.OTDayCount > 0 {
			s.AvgOvertimePerOTDay = float64(s.TotalOvertimeMinutes) / float64(s.OTDayCount)
		}
		if len(warnings[id]) > 0 {
			s.Warnings = slices.Sorted(maps.Keys(warnings[id]))
		}
		summaries = append(summaries, *s)
	}

	slices.SortFunc(summaries, func(a, b overtime.SummaryRecord) int {
		if c := cmp.Compare(b.TotalOvertimeMinutes, a.TotalOvertimeMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	return summaries
}
