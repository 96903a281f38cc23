package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/debriefhq/debrief/internal/models"
)

func TestExtract_EmptyResponses(t *testing.T) {
	artifact, err := Extract(nil, Context{SessionID: "s1", EmployeeID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "alice", artifact.EmployeeID)
	assert.Zero(t, artifact.Confidence, "empty input scores exactly zero")
	assert.Empty(t, artifact.Content)
	assert.NotNil(t, artifact.Tags, "tags are an empty list, never nil")
	assert.NotEmpty(t, artifact.ID)
}

func TestExtract_AllBlankAnswers(t *testing.T) {
	responses := []models.InterviewResponse{
		{Question: "Why?", Answer: "   "},
		{Question: "How?", Answer: "\n\t"},
	}

	artifact, err := Extract(responses, Context{EmployeeID: "alice"})
	require.NoError(t, err)

	assert.Zero(t, artifact.Confidence)
	assert.Empty(t, artifact.Content)
}

func TestExtract_BuildsTranscript(t *testing.T) {
	responses := []models.InterviewResponse{
		{Question: "Why the cache?", Answer: "Because the database could not keep up with read load."},
		{Question: "Anything else?", Answer: ""},
	}

	artifact, err := Extract(responses, Context{EmployeeID: "alice"})
	require.NoError(t, err)

	assert.Contains(t, artifact.Content, "Q: Why the cache?")
	assert.Contains(t, artifact.Content, "A: Because the database could not keep up")
	assert.NotContains(t, artifact.Content, "Anything else", "blank answers are dropped from the transcript")
	assert.Greater(t, artifact.Confidence, 0.0)
	assert.LessOrEqual(t, artifact.Confidence, 1.0)
}

func TestExtract_CarriesSourceArtifacts(t *testing.T) {
	ctx := Context{
		EmployeeID: "alice",
		Artifacts:  []models.CodeArtifact{{ID: "412", Type: models.ArtifactTypePR}},
	}

	artifact, err := Extract([]models.InterviewResponse{{Question: "q", Answer: "a real answer"}}, ctx)
	require.NoError(t, err)

	require.Len(t, artifact.SourceArtifacts, 1)
	assert.Equal(t, "412", artifact.SourceArtifacts[0].ID)
}

func TestDeriveTags(t *testing.T) {
	responses := []models.InterviewResponse{
		{Answer: `The migration touched the schema and OPS-1234. We call it the "shadow table" trick. Watch the TTL config.`},
	}

	tags := deriveTags(responses)

	assert.Contains(t, tags, "migration")
	assert.Contains(t, tags, "schema")
	assert.Contains(t, tags, "ops-1234")
	assert.Contains(t, tags, "shadow table")
	assert.Contains(t, tags, "ttl")
	assert.LessOrEqual(t, len(tags), maxTags)
}

func TestDeriveTags_Capped(t *testing.T) {
	long := strings.Join(technicalVocabulary, " and the ")
	tags := deriveTags([]models.InterviewResponse{{Answer: long}})
	assert.Len(t, tags, maxTags)
}

func TestResponseConfidence(t *testing.T) {
	short := responseConfidence("ok")
	reasoned := responseConfidence("We did it this way because the queue kept timing out under load and the retry logic made it worse.")

	assert.InDelta(t, 0.3, short, 1e-9)
	assert.Greater(t, reasoned, short)
	assert.LessOrEqual(t, reasoned, 1.0)
}

// Confidence always lands in [0,1], and is exactly 0 only for empty input.
func TestExtractionConfidenceBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(rt, "num_responses")
		responses := make([]models.InterviewResponse, n)
		allBlank := true
		for i := range responses {
			answer := rapid.StringMatching(`[ a-zA-Z0-9.,]{0,400}`).Draw(rt, "answer")
			responses[i] = models.InterviewResponse{Question: "q", Answer: answer}
			if strings.TrimSpace(answer) != "" {
				allBlank = false
			}
		}

		c := extractionConfidence(responses)
		if c < 0 || c > 1 {
			rt.Fatalf("confidence %f out of range", c)
		}
		if (n == 0 || allBlank) && c != 0 {
			rt.Fatalf("confidence %f for empty input, want 0", c)
		}
		if n > 0 && !allBlank && c <= 0 {
			rt.Fatalf("confidence %f for non-empty input, want > 0", c)
		}
	})
}
