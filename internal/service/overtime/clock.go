package overtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
)

const minutesPerDay = 24 * 60

// ParseClockTime converts "HH:MM[:SS]" into minutes since midnight. Seconds are accepted and ignored.
func ParseClockTime(text string) (int, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", overtime.ErrInvalidTimeFormat, text)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", overtime.ErrInvalidTimeFormat, text)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", overtime.ErrInvalidTimeFormat, text)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", overtime.ErrInvalidTimeFormat, text)
	}

	return hour*60 + minute, nil
}

// ShiftExpectedMinutes returns the shift length, wrapping overnight shifts into the next day.
// Equal start and end yield 0.
func ShiftExpectedMinutes(start, end int) int {
	d := end - start
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// FormatDuration renders minutes as H:MM, keeping the sign.
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

// parsedShift is a ShiftType with its clock times resolved to minutes.
type parsedShift struct {
	overtime.ShiftType
	start int
	end   int
	err   error
}

func parseShift(s overtime.ShiftType) parsedShift {
	p := parsedShift{ShiftType: s}
	if p.start, p.err = ParseClockTime(s.StartTime); p.err != nil {
		return p
	}
	p.end, p.err = ParseClockTime(s.EndTime)
	return p
}

func (p parsedShift) overnight() bool {
	return p.err == nil && p.end < p.start
}

func (p parsedShift) expectedMinutes() int {
	if p.err != nil {
		return 0
	}
	return ShiftExpectedMinutes(p.start, p.end)
}
