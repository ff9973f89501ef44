package ledger

import (
	"math"
	"time"
)

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// DaysUntil returns whole days from now until due, rounded up. Negative once expired.
func DaysUntil(now, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// Severity classifies an expiry by the days remaining.
func Severity(daysRemaining int) string {
	switch {
	case daysRemaining <= 7:
		return SeverityCritical
	case daysRemaining <= 15:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// StudentCapacity is how many students a bus may carry for its seat count.
func StudentCapacity(seatingCapacity int) int {
	if seatingCapacity <= 0 {
		return 0
	}
	return int(math.Ceil(float64(seatingCapacity) * 1.5))
}

// PromoteClass moves a class number up by one, capped at the final class.
func PromoteClass(class int) int {
	const finalClass = 12
	if class >= finalClass {
		return finalClass
	}
	return class + 1
}
