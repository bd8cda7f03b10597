package models

// Level is the normalized operational status of a monitored service.
type Level string

/*
Levels and how they map onto the rest of the pipeline:

  - Only the boolean IsUp of a check drives transition detection.
  - The level feeds incident severity and notification text.
  - Operational and Degraded count as up; the outage levels and Unknown count as down.
  - Unknown is what an unreachable or unparseable source produces.
*/

const (
	Operational   Level = "operational"
	Degraded      Level = "degraded"
	PartialOutage Level = "partial_outage"
	MajorOutage   Level = "major_outage"
	Unknown       Level = "unknown"
)

// IsUp reports whether a level counts as available.
func (l Level) IsUp() bool {
	return l == Operational || l == Degraded
}

// Severity of an incident.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityMajor       Severity = "major"
	SeverityMinor       Severity = "minor"
	SeverityMaintenance Severity = "maintenance"
	SeverityNone        Severity = "none"
)

// SeverityForLevel derives an incident severity from the level reported at degrade time.
func SeverityForLevel(l Level) Severity {
	switch l {
	case MajorOutage:
		return SeverityCritical
	case PartialOutage:
		return SeverityMajor
	case Degraded:
		return SeverityMinor
	default:
		return SeverityNone
	}
}
