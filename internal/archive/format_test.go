package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/debriefhq/debrief/internal/models"
)

func TestFormat(t *testing.T) {
	artifact := &models.KnowledgeArtifact{
		ID:          "art-1",
		EmployeeID:  "alice",
		Title:       "Knowledge archive for alice",
		Content:     "Q: Why?\nA: Because the replica lags.",
		Tags:        []string{"replica", "ledger"},
		ExtractedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Confidence:  0.8,
		SourceArtifacts: []models.CodeArtifact{
			{ID: "OPS-1", Type: models.ArtifactTypeTicket, Title: "rework replication"},
		},
	}
	tacit := &models.TacitCategorization{
		Categories: map[models.KnowledgeCategory][]models.Insight{
			models.CategoryRiskFactors: {
				{Content: "the nightly job breaks if the replica lags", Confidence: 0.7, Critical: true},
			},
		},
		CriticalInsights: []models.Insight{{Content: "x"}},
	}
	session := &models.WorkflowSession{ID: "sess-1"}

	doc := Format(artifact, tacit, session)

	assert.Equal(t, "alice", doc.EmployeeID)
	assert.Equal(t, "sess-1", doc.SessionID)
	assert.Equal(t, "art-1", doc.ArtifactID)
	assert.Equal(t, 0.8, doc.Confidence)

	assert.Contains(t, doc.Body, "# Knowledge archive for alice")
	assert.Contains(t, doc.Body, "Tags: replica, ledger")
	assert.Contains(t, doc.Body, "## Interview transcript")
	assert.Contains(t, doc.Body, "A: Because the replica lags.")
	assert.Contains(t, doc.Body, "### Risk Factors")
	assert.Contains(t, doc.Body, "**(critical)**")
	assert.Contains(t, doc.Body, "1 insight(s) were flagged critical")
	assert.Contains(t, doc.Body, "[ticket] OPS-1: rework replication")
}

func TestFormat_EmptyArtifact(t *testing.T) {
	doc := Format(&models.KnowledgeArtifact{EmployeeID: "bob"}, nil, nil)

	assert.Contains(t, doc.Body, "No answers were recorded.")
	assert.NotContains(t, doc.Body, "## Tacit knowledge")
	assert.NotContains(t, doc.Body, "## Source artifacts")
	assert.Empty(t, doc.SessionID)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "a b c", summarize("a\n b\t c"))

	long := summarize(strings.Repeat("x", 200))
	assert.Len(t, long, 160)
	assert.Equal(t, "...", long[157:])
}
