package knowledge

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"
)

// Context carries the session metadata extraction grounds its output in.
type Context struct {
	SessionID  string
	EmployeeID string
	Artifacts  []models.CodeArtifact
	Questions  []models.Question
}

// maxTags caps the tag list on an extracted artifact.
const maxTags = 10

// technicalVocabulary is the fixed term set used for tagging and
// technical-density scoring.
var technicalVocabulary = []string{
	"api", "database", "schema", "migration", "cache", "queue", "index",
	"deploy", "deployment", "pipeline", "config", "configuration",
	"authentication", "authorization", "encryption", "kubernetes", "docker",
	"latency", "timeout", "retry", "concurrency", "transaction", "replica",
	"monitoring", "rollback", "feature flag", "cron", "webhook",
}

var (
	ticketIDPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)
	quotedPattern   = regexp.MustCompile(`"([^"]{2,40})"`)
	allCapsPattern  = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

// reasoningMarkers signal that an answer explains "why", not just "what".
var reasoningMarkers = []string{"because", "since", "in order to", "the reason", "so that", "otherwise"}

// Extract builds a knowledge artifact from interview responses. Malformed or
// empty input degrades to an empty, zero-confidence artifact; an internal
// failure is recovered and surfaced as a single extraction error.
func Extract(responses []models.InterviewResponse, ctx Context) (artifact *models.KnowledgeArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("knowledge extraction panicked", "session_id", ctx.SessionID, "panic", r)
			artifact = nil
			err = fmt.Errorf("%w: %v", errs.ErrExtraction, r)
		}
	}()

	artifact = &models.KnowledgeArtifact{
		ID:          ulid.Make().String(),
		EmployeeID:  ctx.EmployeeID,
		Title:       fmt.Sprintf("Knowledge archive for %s", ctx.EmployeeID),
		ExtractedAt: time.Now().UTC(),
		Confidence:  extractionConfidence(responses),
		Tags:        deriveTags(responses),
	}

	var sb strings.Builder
	for _, r := range responses {
		if strings.TrimSpace(r.Answer) == "" {
			continue
		}
		sb.WriteString("Q: ")
		sb.WriteString(r.Question)
		sb.WriteString("\nA: ")
		sb.WriteString(r.Answer)
		sb.WriteString("\n\n")
	}
	artifact.Content = strings.TrimSpace(sb.String())
	artifact.SourceArtifacts = ctx.Artifacts

	return artifact, nil
}

// deriveTags matches the technical vocabulary, ticket-like identifiers, and
// quoted or all-caps tokens across all answers, capped at maxTags.
func deriveTags(responses []models.InterviewResponse) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] || len(tags) >= maxTags {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, r := range responses {
		lower := strings.ToLower(r.Answer)
		for _, term := range technicalVocabulary {
			if strings.Contains(lower, term) {
				add(term)
			}
		}
		for _, id := range ticketIDPattern.FindAllString(r.Answer, -1) {
			add(id)
		}
		for _, m := range quotedPattern.FindAllStringSubmatch(r.Answer, -1) {
			add(m[1])
		}
		for _, tok := range allCapsPattern.FindAllString(r.Answer, -1) {
			add(tok)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// extractionConfidence averages per-response confidence. Empty input or
// all-empty answers score exactly 0.
func extractionConfidence(responses []models.InterviewResponse) float64 {
	if len(responses) == 0 {
		return 0
	}

	total := 0.0
	answered := 0
	for _, r := range responses {
		answer := strings.TrimSpace(r.Answer)
		if answer == "" {
			continue
		}
		answered++
		total += responseConfidence(answer)
	}
	if answered == 0 {
		return 0
	}

	avg := total / float64(answered)
	if avg > 1.0 {
		avg = 1.0
	}
	return avg
}

// responseConfidence scores one answer: length tiers, reasoning markers,
// and technical-term density.
func responseConfidence(answer string) float64 {
	c := 0.3

	switch n := len(answer); {
	case n > 300:
		c += 0.4
	case n > 100:
		c += 0.2
	case n > 30:
		c += 0.1
	}

	lower := strings.ToLower(answer)
	for _, marker := range reasoningMarkers {
		if strings.Contains(lower, marker) {
			c += 0.2
			break
		}
	}

	terms := 0
	for _, term := range technicalVocabulary {
		if strings.Contains(lower, term) {
			terms++
		}
	}
	words := len(strings.Fields(answer))
	if words > 0 && float64(terms)/float64(words) > 0.03 {
		c += 0.1
	}

	if c > 1.0 {
		c = 1.0
	}
	return c
}
