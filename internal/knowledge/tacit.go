package knowledge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"
)

// exampleMarkers signal concrete, illustrated answers.
var exampleMarkers = []string{"for example", "for instance", "e.g.", "such as"}

// ExtractTacit runs the deep categorization: each response is classified
// into the six fixed categories with a per-response confidence. Never fails
// on malformed input; an internal failure is recovered as an extraction
// error, the single exception to the degrade policy.
func ExtractTacit(responses []models.InterviewResponse, ctx Context, classifier Classifier) (cat *models.TacitCategorization, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tacit categorization panicked", "session_id", ctx.SessionID, "panic", r)
			cat = nil
			err = fmt.Errorf("%w: %v", errs.ErrExtraction, r)
		}
	}()

	if classifier == nil {
		classifier = KeywordClassifier{}
	}

	cat = &models.TacitCategorization{
		SessionID:  ctx.SessionID,
		EmployeeID: ctx.EmployeeID,
		Categories: make(map[models.KnowledgeCategory][]models.Insight),
	}
	for _, c := range models.Categories() {
		cat.Categories[c] = []models.Insight{}
	}

	questionArtifact := make(map[string]string, len(ctx.Questions))
	for _, q := range ctx.Questions {
		questionArtifact[q.Text] = q.ArtifactID
	}

	totalWeight := 0.0
	weightedConfidence := 0.0

	for _, r := range responses {
		answer := strings.TrimSpace(r.Answer)
		if answer == "" {
			continue
		}

		matches := classifier.Classify(answer)
		conf := tacitConfidence(answer, len(matches))

		weight := float64(len(answer))
		if weight > 500 {
			weight = 500
		}
		totalWeight += weight
		weightedConfidence += conf * weight

		for _, m := range matches {
			insight := models.Insight{
				Content:          answer,
				SourceArtifactID: questionArtifact[r.Question],
				Confidence:       conf,
				Critical:         m.Critical,
			}
			cat.Categories[m.Category] = append(cat.Categories[m.Category], insight)
			if insight.Critical || insight.Confidence > 0.8 {
				cat.CriticalInsights = append(cat.CriticalInsights, insight)
			}
		}
	}

	if totalWeight == 0 {
		cat.OverallConfidence = 0
		return cat, nil
	}

	overall := weightedConfidence / totalWeight
	overall += 0.02 * float64(populatedCategories(cat))
	overall += 0.02 * float64(len(cat.CriticalInsights))
	if overall > 1.0 {
		overall = 1.0
	}
	cat.OverallConfidence = overall

	return cat, nil
}

// tacitConfidence starts from a 0.5 baseline and adds bonuses for category
// matches, length, and concrete examples, capped at 1.0.
func tacitConfidence(answer string, matchCount int) float64 {
	c := 0.5
	c += 0.1 * float64(matchCount)

	if len(answer) > 200 {
		c += 0.1
	}

	lower := strings.ToLower(answer)
	for _, marker := range exampleMarkers {
		if strings.Contains(lower, marker) {
			c += 0.1
			break
		}
	}

	if c > 1.0 {
		c = 1.0
	}
	return c
}

func populatedCategories(cat *models.TacitCategorization) int {
	n := 0
	for _, insights := range cat.Categories {
		if len(insights) > 0 {
			n++
		}
	}
	return n
}
