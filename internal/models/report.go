package models

// RiskLevel classifies an author's undocumented-intensity score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// TimeframeSixMonths is the fixed trailing window every scan covers.
const TimeframeSixMonths = "last_6_months"

// IntensityReport summarizes one author's knowledge-loss risk over the
// trailing window. Recomputed on every scan, never cached across calls.
type IntensityReport struct {
	UserID                     string
	Timeframe                  string
	CriticalTickets            []ActivityRecord
	HighComplexityChanges      []ActivityRecord
	DocumentationLinkCount     int
	UndocumentedIntensityScore float64
	SpecificArtifacts          []string
	RiskLevel                  RiskLevel
}
