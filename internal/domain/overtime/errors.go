package overtime

import "errors"

var (
	// Input validation errors (fatal for the invocation)
	ErrNoQualifyingEmployees = errors.New("no employees match the report filter")
	ErrInvalidDateRange      = errors.New("to date must not be before from date")
	ErrRangeTooLarge         = errors.New("date range exceeds the allowed maximum")
	ErrInvalidMode           = errors.New("mode must be 'daily' or 'summary'")

	// Per-row anomalies (absorbed and attached to rows as warnings)
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM[:SS]")
	ErrNegativeDuration  = errors.New("clock-out precedes clock-in")
	ErrUnresolvedShift   = errors.New("no shift assignment and no default shift")

	// Data source errors
	ErrSourceUnavailable = errors.New("hr data source unavailable")
)

// Warning maps a per-row anomaly error to its row warning code.
func Warning(err error) (WarningCode, bool) {
	switch {
	case errors.Is(err, ErrInvalidTimeFormat):
		return WarningInvalidTimeFormat, true
	case errors.Is(err, ErrNegativeDuration):
		return WarningNegativeDuration, true
	case errors.Is(err, ErrUnresolvedShift):
		return WarningUnresolvedShift, true
	}
	return "", false
}
