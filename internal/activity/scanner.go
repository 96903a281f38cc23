package activity

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// complexityKeywords bump a change request's score when present in its title.
var complexityKeywords = []string{"refactor", "architecture", "migration", "breaking", "major"}

// Scanner computes undocumented-intensity reports from normalized activity.
type Scanner struct {
	cfg ScanConfig
}

// NewScanner returns a Scanner with the given configuration.
func NewScanner(cfg ScanConfig) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Scanner{cfg: cfg}
}

// Config returns the scanner's effective configuration.
func (s *Scanner) Config() ScanConfig { return s.cfg }

// Scan produces one IntensityReport per distinct author found in records,
// after dropping everything updated before the trailing window. Result
// order is not significant.
func (s *Scanner) Scan(records []models.ActivityRecord, now time.Time) []models.IntensityReport {
	cutoff := now.AddDate(0, -s.cfg.WindowMonths, 0)

	byAuthor := make(map[string][]models.ActivityRecord)
	for _, r := range records {
		if r.UpdatedAt.Before(cutoff) {
			continue
		}
		byAuthor[r.Author] = append(byAuthor[r.Author], r)
	}
	if len(byAuthor) == 0 {
		return nil
	}

	authors := make([]string, 0, len(byAuthor))
	for a := range byAuthor {
		authors = append(authors, a)
	}

	// Per-author scoring shares no mutable state, fan out bounded by Workers.
	reports := make([]models.IntensityReport, len(authors))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.Workers)
	for i, author := range authors {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, author string) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[i] = s.scanAuthor(author, byAuthor[author])
		}(i, author)
	}
	wg.Wait()

	return reports
}

// ScanUser is Scan restricted to a single author's records.
func (s *Scanner) ScanUser(userID string, records []models.ActivityRecord, now time.Time) models.IntensityReport {
	cutoff := now.AddDate(0, -s.cfg.WindowMonths, 0)
	var window []models.ActivityRecord
	for _, r := range records {
		if r.Author != userID || r.UpdatedAt.Before(cutoff) {
			continue
		}
		window = append(window, r)
	}
	return s.scanAuthor(userID, window)
}

func (s *Scanner) scanAuthor(author string, window []models.ActivityRecord) models.IntensityReport {
	report := models.IntensityReport{
		UserID:    author,
		Timeframe: models.TimeframeSixMonths,
	}

	for _, r := range window {
		report.DocumentationLinkCount += r.DocLinks
		switch r.Kind {
		case models.RecordKindTicket:
			if s.criticalTicket(r) {
				report.CriticalTickets = append(report.CriticalTickets, r)
			}
		case models.RecordKindChangeRequest:
			if s.ComplexityScore(r) >= s.cfg.ComplexityThreshold {
				report.HighComplexityChanges = append(report.HighComplexityChanges, r)
			}
		}
	}

	for _, r := range report.CriticalTickets {
		report.SpecificArtifacts = append(report.SpecificArtifacts, r.Ref())
	}
	for _, r := range report.HighComplexityChanges {
		report.SpecificArtifacts = append(report.SpecificArtifacts, r.Ref())
	}
	sort.Strings(report.SpecificArtifacts)

	numerator := float64(len(report.CriticalTickets) + len(report.HighComplexityChanges))
	denom := report.DocumentationLinkCount
	if denom < 1 {
		denom = 1
	}
	report.UndocumentedIntensityScore = numerator / float64(denom)
	report.RiskLevel = s.riskLevel(report.UndocumentedIntensityScore)

	return report
}

// criticalTicket reports whether a ticket carries substantial undocumented
// context: low documentation signal and a long summary.
func (s *Scanner) criticalTicket(r models.ActivityRecord) bool {
	return r.DocSignal <= s.cfg.LowDocThreshold && len(r.Title) > s.cfg.SummaryLengthThreshold
}

// ComplexityScore rates a change request 0-10 from its size, review load,
// and title keywords.
func (s *Scanner) ComplexityScore(r models.ActivityRecord) int {
	score := 0

	switch lines := r.Additions + r.Deletions; {
	case lines > 1000:
		score += 4
	case lines > 500:
		score += 3
	case lines > 200:
		score += 2
	case lines > 50:
		score++
	}

	switch {
	case r.FilesChanged > 20:
		score += 3
	case r.FilesChanged > 10:
		score += 2
	case r.FilesChanged > 5:
		score++
	}

	switch {
	case r.ReviewComments > 20:
		score += 2
	case r.ReviewComments > 10:
		score++
	}

	title := strings.ToLower(r.Title)
	for _, kw := range complexityKeywords {
		if strings.Contains(title, kw) {
			score++
			break
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// ComplexityIndicators names the factors that made a change complex,
// used when projecting scan findings into interview context.
func (s *Scanner) ComplexityIndicators(r models.ActivityRecord) []string {
	var tags []string
	if lines := r.Additions + r.Deletions; lines > 500 {
		tags = append(tags, "large_change")
	} else if lines > 200 {
		tags = append(tags, "sizable_change")
	}
	if r.FilesChanged > 10 {
		tags = append(tags, "many_files")
	}
	if r.ReviewComments > 10 {
		tags = append(tags, "heavy_review")
	}
	title := strings.ToLower(r.Title)
	for _, kw := range complexityKeywords {
		if strings.Contains(title, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}

// DocumentationLevel grades a record's documentation signal.
func DocumentationLevel(r models.ActivityRecord) models.DocumentationLevel {
	total := r.DocSignal + r.DocLinks
	switch {
	case total == 0:
		return models.DocLevelNone
	case total <= 3:
		return models.DocLevelMinimal
	case total <= 8:
		return models.DocLevelAdequate
	default:
		return models.DocLevelComprehensive
	}
}

func (s *Scanner) riskLevel(score float64) models.RiskLevel {
	switch {
	case score < s.cfg.LowRiskThreshold:
		return models.RiskLevelLow
	case score < s.cfg.HighRiskThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelHigh
	}
}
