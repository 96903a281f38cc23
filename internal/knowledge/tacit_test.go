package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debriefhq/debrief/internal/models"
)

func TestKeywordClassifier(t *testing.T) {
	c := KeywordClassifier{}

	tests := []struct {
		name     string
		text     string
		want     models.KnowledgeCategory
		critical bool
	}{
		{"architectural", "We chose the event bus instead of direct calls", models.CategoryArchitecturalDecisions, false},
		{"business", "A compliance deadline forced the cutover date", models.CategoryBusinessConstraints, false},
		{"debt", "There is a workaround in the export job", models.CategoryTechnicalDebt, true},
		{"process", "The release steps live in a runbook", models.CategoryProcessKnowledge, false},
		{"risk", "The importer is fragile around daylight saving", models.CategoryRiskFactors, true},
		{"dependency", "Billing relies on the ledger being replayed first", models.CategoryUndocumentedDependencies, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := c.Classify(tt.text)
			require.NotEmpty(t, matches)
			found := false
			for _, m := range matches {
				if m.Category == tt.want {
					found = true
					assert.Equal(t, tt.critical, m.Critical)
				}
			}
			assert.True(t, found, "expected category %s", tt.want)
		})
	}
}

func TestKeywordClassifier_NoMatch(t *testing.T) {
	assert.Empty(t, KeywordClassifier{}.Classify("the weather was nice"))
}

func TestExtractTacit_EmptyResponses(t *testing.T) {
	cat, err := ExtractTacit(nil, Context{SessionID: "s1", EmployeeID: "alice"}, nil)
	require.NoError(t, err)

	assert.Zero(t, cat.OverallConfidence)
	assert.Len(t, cat.Categories, len(models.Categories()), "every category is present even when empty")
	for _, insights := range cat.Categories {
		assert.NotNil(t, insights)
		assert.Empty(t, insights)
	}
	assert.Empty(t, cat.CriticalInsights)
}

func TestExtractTacit_CategorizesAndLinks(t *testing.T) {
	ctx := Context{
		SessionID:  "s1",
		EmployeeID: "alice",
		Questions: []models.Question{
			{Text: "Any shortcuts?", ArtifactID: "OPS-9"},
		},
	}
	responses := []models.InterviewResponse{
		{Question: "Any shortcuts?", Answer: "There is a temporary workaround in the nightly export, it breaks if the feed is late."},
	}

	cat, err := ExtractTacit(responses, ctx, nil)
	require.NoError(t, err)

	debt := cat.Categories[models.CategoryTechnicalDebt]
	require.Len(t, debt, 1)
	assert.Equal(t, "OPS-9", debt[0].SourceArtifactID)
	assert.True(t, debt[0].Critical)

	risk := cat.Categories[models.CategoryRiskFactors]
	require.Len(t, risk, 1)

	assert.NotEmpty(t, cat.CriticalInsights)
	assert.Greater(t, cat.OverallConfidence, 0.0)
	assert.LessOrEqual(t, cat.OverallConfidence, 1.0)
}

func TestExtractTacit_ConfidenceRewardsSubstance(t *testing.T) {
	terse := []models.InterviewResponse{{Question: "q", Answer: "it depends"}}
	substantial := []models.InterviewResponse{{
		Question: "q",
		Answer: "We decided on a temporary workaround because the vendor API was unstable. " +
			"For example, the nightly sync retries three times and then falls back to the cached feed. " +
			"That fallback is fragile and depends on the cache being warm.",
	}}

	terseCat, err := ExtractTacit(terse, Context{}, nil)
	require.NoError(t, err)
	richCat, err := ExtractTacit(substantial, Context{}, nil)
	require.NoError(t, err)

	assert.Greater(t, richCat.OverallConfidence, terseCat.OverallConfidence)
}

func TestExtractTacit_HighConfidenceInsightIsCritical(t *testing.T) {
	// A long, example-laden answer with several category matches clears the
	// 0.8 confidence bar even for non-critical categories.
	responses := []models.InterviewResponse{{
		Question: "q",
		Answer: "We chose the queue over direct writes because a stakeholder requirement demanded replay. " +
			"For example, the month-end close process depends on replaying the ledger, and the runbook " +
			"assumes the replica is caught up before the workflow starts.",
	}}

	cat, err := ExtractTacit(responses, Context{}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, cat.CriticalInsights)
}

type stubClassifier struct {
	matches []CategoryMatch
}

func (s stubClassifier) Classify(string) []CategoryMatch { return s.matches }

func TestExtractTacit_SwappableClassifier(t *testing.T) {
	stub := stubClassifier{matches: []CategoryMatch{
		{Category: models.CategoryProcessKnowledge, Critical: false},
	}}

	cat, err := ExtractTacit(
		[]models.InterviewResponse{{Question: "q", Answer: "completely neutral text"}},
		Context{}, stub,
	)
	require.NoError(t, err)

	assert.Len(t, cat.Categories[models.CategoryProcessKnowledge], 1)
	assert.Empty(t, cat.Categories[models.CategoryRiskFactors])
}
