package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// Format renders a knowledge artifact and its tacit categorization into a
// markdown document.
func Format(artifact *models.KnowledgeArtifact, tacit *models.TacitCategorization, session *models.WorkflowSession) Document {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", artifact.Title)
	fmt.Fprintf(&sb, "- Employee: %s\n", artifact.EmployeeID)
	fmt.Fprintf(&sb, "- Extracted: %s\n", artifact.ExtractedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Confidence: %.2f\n", artifact.Confidence)
	if len(artifact.Tags) > 0 {
		fmt.Fprintf(&sb, "- Tags: %s\n", strings.Join(artifact.Tags, ", "))
	}
	sb.WriteString("\n## Interview transcript\n\n")
	if artifact.Content != "" {
		sb.WriteString(artifact.Content)
		sb.WriteString("\n")
	} else {
		sb.WriteString("No answers were recorded.\n")
	}

	if tacit != nil {
		sb.WriteString("\n## Tacit knowledge\n")
		for _, category := range models.Categories() {
			insights := tacit.Categories[category]
			if len(insights) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n### %s\n\n", categoryHeading(category))
			for _, in := range insights {
				marker := ""
				if in.Critical {
					marker = " **(critical)**"
				}
				fmt.Fprintf(&sb, "- %s (confidence %.2f)%s\n", summarize(in.Content), in.Confidence, marker)
			}
		}
		if len(tacit.CriticalInsights) > 0 {
			fmt.Fprintf(&sb, "\n%d insight(s) were flagged critical.\n", len(tacit.CriticalInsights))
		}
	}

	if len(artifact.SourceArtifacts) > 0 {
		sb.WriteString("\n## Source artifacts\n\n")
		for _, a := range artifact.SourceArtifacts {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", a.Type, a.ID, a.Title)
		}
	}

	sessionID := ""
	if session != nil {
		sessionID = session.ID
	}

	return Document{
		Title:      artifact.Title,
		EmployeeID: artifact.EmployeeID,
		SessionID:  sessionID,
		ArtifactID: artifact.ID,
		Body:       sb.String(),
		Confidence: artifact.Confidence,
		Tags:       artifact.Tags,
		CreatedAt:  artifact.ExtractedAt,
	}
}

func categoryHeading(c models.KnowledgeCategory) string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// summarize truncates long insight content for the bullet list.
func summarize(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) > 160 {
		return content[:157] + "..."
	}
	return content
}
