package models

import "time"

// ArtifactType identifies the kind of code artifact behind an interview.
type ArtifactType string

const (
	ArtifactTypePR     ArtifactType = "pr"
	ArtifactTypeCommit ArtifactType = "commit"
	ArtifactTypeTicket ArtifactType = "ticket"
)

// DocumentationLevel grades how well an artifact is documented.
type DocumentationLevel string

const (
	DocLevelNone          DocumentationLevel = "none"
	DocLevelMinimal       DocumentationLevel = "minimal"
	DocLevelAdequate      DocumentationLevel = "adequate"
	DocLevelComprehensive DocumentationLevel = "comprehensive"
)

// CodeArtifact is a scan finding projected into interview context.
// Owned by the workflow session that created it.
type CodeArtifact struct {
	ID                   string
	Type                 ArtifactType
	Title                string
	Author               string
	Date                 time.Time
	ComplexityIndicators []string
	Documentation        DocumentationLevel
}

// KnowledgeArtifact is the structured output of the archive phase: extracted
// tacit knowledge plus links back to its source artifacts. Immutable after
// creation.
type KnowledgeArtifact struct {
	ID              string
	EmployeeID      string
	Title           string
	Content         string
	Tags            []string
	ExtractedAt     time.Time
	Confidence      float64
	RelatedTickets  []string
	RelatedPRs      []string
	RelatedCommits  []string
	SourceArtifacts []CodeArtifact
}

// ArchiveLocation identifies where a formatted artifact was stored.
type ArchiveLocation struct {
	ID  string
	URL string
}
