package analytics

import (
	"fmt"
	"time"

	"timeslice/models"
)

const (
	Range1Day    = "1d"
	Range7Days   = "7d"
	Range30Days  = "30d"
	Range90Days  = "90d"
	Range1Year   = "1y"
	DefaultRange = Range30Days
)

const day = 24 * time.Hour

var rangeDurations = map[string]time.Duration{
	Range1Day:   day,
	Range7Days:  7 * day,
	Range30Days: 30 * day,
	Range90Days: 90 * day,
	Range1Year:  365 * day,
}

var bucketWidths = map[string]time.Duration{
	Range1Day:   2 * time.Hour,
	Range7Days:  day,
	Range30Days: day,
	Range90Days: 7 * day,
	Range1Year:  30 * day,
}

// ValidTimeRange reports whether token is a supported time range.
func ValidTimeRange(token string) bool {
	_, ok := rangeDurations[token]
	return ok
}

// ResolvePeriod turns a relative time range token into an absolute window ending at now.
func ResolvePeriod(token string, now time.Time) (models.Period, error) {
	d, ok := rangeDurations[token]
	if !ok {
		return models.Period{}, &InvalidRangeError{Reason: fmt.Sprintf("unsupported time range %q", token)}
	}
	return models.Period{StartDate: now.Add(-d), EndDate: now}, nil
}

// PreviousPeriod returns the window of equal length immediately before p.
func PreviousPeriod(p models.Period) models.Period {
	return models.Period{
		StartDate: p.StartDate.Add(-p.EndDate.Sub(p.StartDate)),
		EndDate:   p.StartDate,
	}
}

func validatePeriod(start, end time.Time) error {
	if end.Before(start) {
		return &InvalidRangeError{Reason: fmt.Sprintf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))}
	}
	return nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
