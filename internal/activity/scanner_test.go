package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debriefhq/debrief/internal/models"
)

var scanNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ticket(id, author string, docSignal int, titleLen int, age time.Duration) models.ActivityRecord {
	return models.ActivityRecord{
		Kind:      models.RecordKindTicket,
		ID:        id,
		Author:    author,
		Title:     strings.Repeat("x", titleLen),
		CreatedAt: scanNow.Add(-age),
		UpdatedAt: scanNow.Add(-age),
		DocSignal: docSignal,
	}
}

func change(id, author, title string, lines, files, comments int, age time.Duration) models.ActivityRecord {
	return models.ActivityRecord{
		Kind:           models.RecordKindChangeRequest,
		ID:             id,
		Author:         author,
		Title:          title,
		CreatedAt:      scanNow.Add(-age),
		UpdatedAt:      scanNow.Add(-age),
		Additions:      lines,
		FilesChanged:   files,
		ReviewComments: comments,
	}
}

func TestScanUser_HighRisk(t *testing.T) {
	s := NewScanner(DefaultConfig())

	// 8 critical tickets and 6 complex changes with almost no documentation.
	var records []models.ActivityRecord
	for i := 0; i < 8; i++ {
		records = append(records, ticket("OPS-10"+string(rune('0'+i)), "alice", 1, 60, 30*24*time.Hour))
	}
	for i := 0; i < 6; i++ {
		records = append(records, change("40"+string(rune('0'+i)), "alice", "major refactor of the billing pipeline", 1200, 25, 15, 20*24*time.Hour))
	}

	report := s.ScanUser("alice", records, scanNow)

	assert.Len(t, report.CriticalTickets, 8)
	assert.Len(t, report.HighComplexityChanges, 6)
	assert.Equal(t, 0, report.DocumentationLinkCount)
	assert.InDelta(t, 14.0, report.UndocumentedIntensityScore, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, report.RiskLevel)
	assert.Equal(t, models.TimeframeSixMonths, report.Timeframe)
	assert.Len(t, report.SpecificArtifacts, 14)
}

func TestScanUser_OldActivityExcluded(t *testing.T) {
	s := NewScanner(DefaultConfig())

	// Heavy work, but all of it 7-8 months old.
	records := []models.ActivityRecord{
		ticket("OPS-1", "bob", 0, 80, 7*30*24*time.Hour),
		ticket("OPS-2", "bob", 0, 80, 8*30*24*time.Hour),
		change("9", "bob", "architecture migration", 2000, 30, 25, 7*30*24*time.Hour),
	}

	report := s.ScanUser("bob", records, scanNow)

	assert.Empty(t, report.CriticalTickets)
	assert.Empty(t, report.HighComplexityChanges)
	assert.Zero(t, report.UndocumentedIntensityScore)
	assert.Equal(t, models.RiskLevelLow, report.RiskLevel)
}

func TestScanUser_DocLinksSuppressScore(t *testing.T) {
	s := NewScanner(DefaultConfig())

	records := []models.ActivityRecord{
		ticket("OPS-1", "carol", 1, 60, 24*time.Hour),
		ticket("OPS-2", "carol", 1, 60, 24*time.Hour),
	}
	// Same work, second author documented everything.
	records[1].DocLinks = 10

	undocumented := s.ScanUser("carol", records[:1], scanNow)
	documented := s.ScanUser("carol", records, scanNow)

	assert.Greater(t, undocumented.UndocumentedIntensityScore, documented.UndocumentedIntensityScore)
	assert.InDelta(t, 0.2, documented.UndocumentedIntensityScore, 1e-9)
	assert.Equal(t, models.RiskLevelLow, documented.RiskLevel)
}

func TestScanUser_EmptyWindow(t *testing.T) {
	s := NewScanner(DefaultConfig())

	report := s.ScanUser("dave", nil, scanNow)

	assert.Equal(t, "dave", report.UserID)
	assert.Zero(t, report.UndocumentedIntensityScore)
	assert.Equal(t, models.RiskLevelLow, report.RiskLevel)
	assert.Empty(t, report.SpecificArtifacts)
}

func TestScan_GroupsByAuthor(t *testing.T) {
	s := NewScanner(DefaultConfig())

	records := []models.ActivityRecord{
		ticket("OPS-1", "alice", 0, 60, 24*time.Hour),
		ticket("OPS-2", "bob", 0, 60, 24*time.Hour),
		change("3", "alice", "refactor", 600, 12, 12, 24*time.Hour),
	}

	reports := s.Scan(records, scanNow)
	require.Len(t, reports, 2)

	byUser := map[string]models.IntensityReport{}
	for _, r := range reports {
		byUser[r.UserID] = r
	}
	assert.Len(t, byUser["alice"].CriticalTickets, 1)
	assert.Len(t, byUser["alice"].HighComplexityChanges, 1)
	assert.Len(t, byUser["bob"].CriticalTickets, 1)
	assert.Empty(t, byUser["bob"].HighComplexityChanges)
}

func TestScan_NoRecords(t *testing.T) {
	s := NewScanner(DefaultConfig())
	assert.Nil(t, s.Scan(nil, scanNow))
}

func TestCriticalTicket_Boundaries(t *testing.T) {
	s := NewScanner(DefaultConfig())

	// Exactly at the doc threshold still counts; exactly at the title
	// length does not.
	atThreshold := ticket("OPS-1", "a", 3, 51, 0)
	assert.True(t, s.criticalTicket(atThreshold))

	tooDocumented := ticket("OPS-2", "a", 4, 51, 0)
	assert.False(t, s.criticalTicket(tooDocumented))

	shortTitle := ticket("OPS-3", "a", 0, 50, 0)
	assert.False(t, s.criticalTicket(shortTitle))
}

func TestComplexityScore(t *testing.T) {
	s := NewScanner(DefaultConfig())

	tests := []struct {
		name   string
		record models.ActivityRecord
		want   int
	}{
		{"trivial", change("1", "a", "fix typo", 10, 1, 0, 0), 0},
		{"lines only", change("2", "a", "update handler", 300, 2, 0, 0), 2},
		{"keyword only", change("3", "a", "refactor config", 0, 0, 0, 0), 1},
		{"one keyword bump even with two keywords", change("4", "a", "major refactor", 0, 0, 0, 0), 1},
		{"everything", change("5", "a", "breaking migration", 1500, 25, 25, 0), 10},
		{"capped at ten", change("6", "a", "major architecture migration breaking refactor", 99999, 999, 999, 0), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ComplexityScore(tt.record))
		})
	}
}

func TestComplexityIndicators(t *testing.T) {
	s := NewScanner(DefaultConfig())

	r := change("1", "a", "migration to the new schema", 800, 15, 12, 0)
	tags := s.ComplexityIndicators(r)

	assert.Contains(t, tags, "large_change")
	assert.Contains(t, tags, "many_files")
	assert.Contains(t, tags, "heavy_review")
	assert.Contains(t, tags, "migration")
	assert.NotContains(t, tags, "sizable_change")
}

func TestDocumentationLevel(t *testing.T) {
	assert.Equal(t, models.DocLevelNone, DocumentationLevel(models.ActivityRecord{}))
	assert.Equal(t, models.DocLevelMinimal, DocumentationLevel(models.ActivityRecord{DocSignal: 2, DocLinks: 1}))
	assert.Equal(t, models.DocLevelAdequate, DocumentationLevel(models.ActivityRecord{DocSignal: 4, DocLinks: 4}))
	assert.Equal(t, models.DocLevelComprehensive, DocumentationLevel(models.ActivityRecord{DocSignal: 5, DocLinks: 4}))
}

func TestRiskLevel_Thresholds(t *testing.T) {
	s := NewScanner(DefaultConfig())

	assert.Equal(t, models.RiskLevelLow, s.riskLevel(1.99))
	assert.Equal(t, models.RiskLevelMedium, s.riskLevel(2.0))
	assert.Equal(t, models.RiskLevelMedium, s.riskLevel(4.99))
	assert.Equal(t, models.RiskLevelHigh, s.riskLevel(5.0))
}

func TestRiskLevel_CustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LowRiskThreshold = 1.0
	cfg.HighRiskThreshold = 10.0
	s := NewScanner(cfg)

	assert.Equal(t, models.RiskLevelMedium, s.riskLevel(2.0))
	assert.Equal(t, models.RiskLevelMedium, s.riskLevel(9.0))
	assert.Equal(t, models.RiskLevelHigh, s.riskLevel(10.0))
}
