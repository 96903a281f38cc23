package activity

// ScanConfig holds the tunable thresholds for activity scoring.
// Defaults reproduce the documented behavior samples; the risk cutoffs are
// illustrative and should be tuned per organization.
type ScanConfig struct {
	// WindowMonths is the trailing window size. Records with an update
	// older than this never contribute to a report.
	WindowMonths int

	// LowDocThreshold is the max doc signal (comment count) for a ticket
	// to still count as undocumented.
	LowDocThreshold int

	// SummaryLengthThreshold is the min title length marking a ticket as
	// substantial work.
	SummaryLengthThreshold int

	// ComplexityThreshold is the min 0-10 score marking a change request
	// as high-complexity.
	ComplexityThreshold int

	// LowRiskThreshold and HighRiskThreshold are the intensity-score
	// cutoffs for the LOW/MEDIUM/HIGH classification.
	LowRiskThreshold  float64
	HighRiskThreshold float64

	// Workers bounds the per-author scoring fan-out.
	Workers int
}

// DefaultConfig returns the standard scan configuration.
func DefaultConfig() ScanConfig {
	return ScanConfig{
		WindowMonths:           6,
		LowDocThreshold:        3,
		SummaryLengthThreshold: 50,
		ComplexityThreshold:    6,
		LowRiskThreshold:       2.0,
		HighRiskThreshold:      5.0,
		Workers:                4,
	}
}
