// Package knowledge turns free-text interview answers into tagged,
// confidence-scored knowledge artifacts and categorized tacit knowledge.
package knowledge

import (
	"strings"

	"github.com/debriefhq/debrief/internal/models"
)

// CategoryMatch is one category a piece of text was classified into.
type CategoryMatch struct {
	Category models.KnowledgeCategory
	Critical bool
}

// Classifier maps free text to knowledge categories. The keyword
// implementation is deliberately approximate; swap it for a stronger
// technique without touching the orchestrator.
type Classifier interface {
	Classify(text string) []CategoryMatch
}

// categoryKeywords drives the default classifier. Technical-debt and
// risk-factor matches are flagged critical.
var categoryKeywords = []struct {
	category models.KnowledgeCategory
	critical bool
	words    []string
}{
	{models.CategoryArchitecturalDecisions, false, []string{
		"decided", "decision", "chose", "chosen", "opted", "went with", "instead of", "trade-off", "tradeoff",
	}},
	{models.CategoryBusinessConstraints, false, []string{
		"requirement", "stakeholder", "compliance", "deadline", "business", "customer", "contract", "regulation",
	}},
	{models.CategoryTechnicalDebt, true, []string{
		"workaround", "hack", "shortcut", "compromise", "temporary", "quick fix", "tech debt", "technical debt", "cleanup later",
	}},
	{models.CategoryProcessKnowledge, false, []string{
		"process", "workflow", "procedure", "runbook", "checklist", "release steps", "on-call", "handoff",
	}},
	{models.CategoryRiskFactors, true, []string{
		"break", "breaks", "fails", "failure", "danger", "risky", "fragile", "careful", "outage", "corrupt",
	}},
	{models.CategoryUndocumentedDependencies, false, []string{
		"depends", "depends on", "relies", "assumes", "requires", "coupled", "tied to",
	}},
}

// KeywordClassifier is the default keyword-group classifier.
type KeywordClassifier struct{}

// Classify returns every category whose keyword group matches the text.
func (KeywordClassifier) Classify(text string) []CategoryMatch {
	lower := strings.ToLower(text)
	var matches []CategoryMatch
	for _, group := range categoryKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				matches = append(matches, CategoryMatch{Category: group.category, Critical: group.critical})
				break
			}
		}
	}
	return matches
}
