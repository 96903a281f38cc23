// Package interview generates forensic, artifact-grounded interview questions.
package interview

import (
	"fmt"
	"strings"

	"github.com/debriefhq/debrief/internal/models"
)

// Generate maps typed code artifacts to interview questions. Every question
// references a concrete artifact id or title when one is associated; only
// the empty-input fallbacks are generic.
func Generate(artifacts []models.CodeArtifact) []models.Question {
	if len(artifacts) == 0 {
		return fallbackQuestions()
	}

	var questions []models.Question
	for _, a := range artifacts {
		switch a.Type {
		case models.ArtifactTypePR:
			questions = append(questions, prQuestions(a)...)
		case models.ArtifactTypeCommit:
			questions = append(questions, commitQuestions(a)...)
		case models.ArtifactTypeTicket:
			questions = append(questions, ticketQuestions(a)...)
		default:
			questions = append(questions, models.Question{
				Text:       fmt.Sprintf("What context about %q would be lost if nobody could ask you about it?", a.Title),
				Type:       models.QuestionContextLoss,
				ArtifactID: a.ID,
				Focus:      "context preservation",
			})
		}
	}

	if len(artifacts) > 1 {
		questions = append(questions, integrationQuestion(artifacts))
	}

	return questions
}

func fallbackQuestions() []models.Question {
	return []models.Question{
		{
			Text:  "What knowledge about your recent work exists only in your head and nowhere in writing?",
			Type:  models.QuestionGeneral,
			Focus: "tacit knowledge",
		},
		{
			Text:  "If you left tomorrow, which part of the system would your team struggle with first, and why?",
			Type:  models.QuestionRiskAssessment,
			Focus: "knowledge-loss risk",
		},
	}
}

func prQuestions(a models.CodeArtifact) []models.Question {
	qs := []models.Question{
		{
			Text:       fmt.Sprintf("Walk me through PR #%s (%q). Why did you implement it the way you did, and what alternatives did you reject?", a.ID, a.Title),
			Type:       models.QuestionImplementationRationale,
			ArtifactID: a.ID,
			Focus:      "implementation rationale",
			FollowUp:   "Were any of those alternatives rejected for reasons that no longer hold?",
		},
		{
			Text:       fmt.Sprintf("What is most likely to break when someone else maintains the code from PR #%s?", a.ID),
			Type:       models.QuestionMaintenanceRisk,
			ArtifactID: a.ID,
			Focus:      "maintenance risk",
		},
	}
	if len(a.ComplexityIndicators) > 0 {
		qs = append(qs, models.Question{
			Text:       fmt.Sprintf("PR #%s was flagged for %s. What made it that involved, and is any of that complexity accidental?", a.ID, strings.Join(a.ComplexityIndicators, ", ")),
			Type:       models.QuestionComplexityRationale,
			ArtifactID: a.ID,
			Focus:      "complexity rationale",
		})
	}
	return qs
}

func commitQuestions(a models.CodeArtifact) []models.Question {
	short := a.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return []models.Question{
		{
			Text:       fmt.Sprintf("Commit %s touches an architecturally significant area. What decision does it encode, and what constraints forced it?", short),
			Type:       models.QuestionArchitecturalDecision,
			ArtifactID: a.ID,
			Focus:      "architectural decisions",
		},
		{
			Text:       fmt.Sprintf("Which edge cases does commit %s handle that are not obvious from the code?", short),
			Type:       models.QuestionEdgeCases,
			ArtifactID: a.ID,
			Focus:      "edge cases",
		},
	}
}

func ticketQuestions(a models.CodeArtifact) []models.Question {
	qs := []models.Question{
		{
			Text:       fmt.Sprintf("Ticket %s (%q): which business constraints or stakeholder requirements shaped the solution?", a.ID, a.Title),
			Type:       models.QuestionBusinessConstraints,
			ArtifactID: a.ID,
			Focus:      "business constraints",
		},
		{
			Text:       fmt.Sprintf("Did resolving ticket %s introduce any shortcuts or technical debt the team should know about?", a.ID),
			Type:       models.QuestionTechnicalDebt,
			ArtifactID: a.ID,
			Focus:      "technical debt",
		},
	}
	if a.Documentation == models.DocLevelNone || a.Documentation == models.DocLevelMinimal {
		qs = append(qs, models.Question{
			Text:       fmt.Sprintf("Ticket %s has little written documentation. What would you tell a new engineer before they touch that area?", a.ID),
			Type:       models.QuestionUndocumentedKnowledge,
			ArtifactID: a.ID,
			Focus:      "undocumented knowledge",
		})
	}
	return qs
}

func integrationQuestion(artifacts []models.CodeArtifact) models.Question {
	ids := make([]string, 0, 3)
	for _, a := range artifacts {
		ids = append(ids, a.ID)
		if len(ids) == 3 {
			break
		}
	}
	return models.Question{
		Text:  fmt.Sprintf("How do %s interact? Are there ordering or deployment dependencies between them that aren't written down?", strings.Join(ids, ", ")),
		Type:  models.QuestionIntegration,
		Focus: "cross-artifact integration",
	}
}
