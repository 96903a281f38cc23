package models

// QuestionType identifies the forensic angle a question takes.
type QuestionType string

const (
	QuestionImplementationRationale QuestionType = "implementation_rationale"
	QuestionMaintenanceRisk         QuestionType = "maintenance_risk"
	QuestionComplexityRationale     QuestionType = "complexity_rationale"
	QuestionArchitecturalDecision   QuestionType = "architectural_decision"
	QuestionEdgeCases               QuestionType = "edge_cases"
	QuestionBusinessConstraints     QuestionType = "business_constraints"
	QuestionTechnicalDebt           QuestionType = "technical_debt"
	QuestionUndocumentedKnowledge   QuestionType = "undocumented_knowledge"
	QuestionContextLoss             QuestionType = "context_loss"
	QuestionIntegration             QuestionType = "integration"
	QuestionGeneral                 QuestionType = "general"
	QuestionRiskAssessment          QuestionType = "risk_assessment"
)

// Question is one artifact-grounded interview prompt.
type Question struct {
	Text       string
	Type       QuestionType
	ArtifactID string // empty for generic questions
	Focus      string
	FollowUp   string
}

// KnowledgeCategory is one of the six fixed tacit-knowledge buckets.
type KnowledgeCategory string

const (
	CategoryArchitecturalDecisions   KnowledgeCategory = "architectural_decisions"
	CategoryBusinessConstraints      KnowledgeCategory = "business_constraints"
	CategoryTechnicalDebt            KnowledgeCategory = "technical_debt"
	CategoryProcessKnowledge         KnowledgeCategory = "process_knowledge"
	CategoryRiskFactors              KnowledgeCategory = "risk_factors"
	CategoryUndocumentedDependencies KnowledgeCategory = "undocumented_dependencies"
)

// Categories lists every bucket in a stable order.
func Categories() []KnowledgeCategory {
	return []KnowledgeCategory{
		CategoryArchitecturalDecisions,
		CategoryBusinessConstraints,
		CategoryTechnicalDebt,
		CategoryProcessKnowledge,
		CategoryRiskFactors,
		CategoryUndocumentedDependencies,
	}
}

// Insight is one classified piece of tacit knowledge.
type Insight struct {
	Content          string
	SourceArtifactID string
	Confidence       float64
	Critical         bool
}

// TacitCategorization is the deep analysis produced during archive
// preparation. Derived transiently; embedded into the archived document.
type TacitCategorization struct {
	SessionID         string
	EmployeeID        string
	Categories        map[KnowledgeCategory][]Insight
	CriticalInsights  []Insight
	OverallConfidence float64
}
