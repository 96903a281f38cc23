package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debriefhq/debrief/internal/models"
)

func session(id string, state models.SessionState, at time.Time) *models.WorkflowSession {
	return &models.WorkflowSession{
		ID:          id,
		EmployeeID:  "alice",
		TriggeredBy: "hr",
		TriggeredAt: at,
		State:       state,
		Progress:    state.Progress(),
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	store.Put(session("s1", models.StateTriggered, time.Now()))

	first, ok := store.Get("s1")
	require.True(t, ok)
	first.State = models.StateFailed
	first.Errors = append(first.Errors, models.SessionError{Code: "x"})

	second, ok := store.Get("s1")
	require.True(t, ok)
	assert.Equal(t, models.StateTriggered, second.State, "caller mutations must not leak into the store")
	assert.Empty(t, second.Errors)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestMemoryStore_CompareAndSwap(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	store.Put(session("s1", models.StateTriggered, time.Now()))

	updated, ok := store.CompareAndSwap("s1", models.StateTriggered, func(s *models.WorkflowSession) {
		s.State = models.StateScanning
	})
	require.True(t, ok)
	assert.Equal(t, models.StateScanning, updated.State)
	assert.Equal(t, models.StateScanning.Progress(), updated.Progress, "progress tracks the new state")

	// Same expectation again must lose: the state already moved on.
	_, ok = store.CompareAndSwap("s1", models.StateTriggered, func(s *models.WorkflowSession) {
		s.State = models.StateScanning
	})
	assert.False(t, ok)
}

func TestMemoryStore_CompareAndSwapMissing(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	_, ok := store.CompareAndSwap("nope", models.StateTriggered, func(*models.WorkflowSession) {})
	assert.False(t, ok)
}

func TestMemoryStore_UpdateIgnoresState(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	store.Put(session("s1", models.StateFailed, time.Now()))

	updated, ok := store.Update("s1", func(s *models.WorkflowSession) {
		s.Errors = append(s.Errors, models.SessionError{Code: "network_error"})
	})
	require.True(t, ok)
	assert.Len(t, updated.Errors, 1)
}

func TestMemoryStore_ListSortedByTriggerTime(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{})
	base := time.Now()
	store.Put(session("s2", models.StateTriggered, base.Add(time.Hour)))
	store.Put(session("s1", models.StateTriggered, base))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "s1", list[0].ID)
	assert.Equal(t, "s2", list[1].ID)
}

func TestMemoryStore_EvictsOldestTerminal(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{MaxSessions: 2})
	base := time.Now()
	store.Put(session("old", models.StateArchived, base.Add(-2*time.Hour)))
	store.Put(session("mid", models.StateFailed, base.Add(-time.Hour)))
	store.Put(session("new", models.StateTriggered, base))

	_, ok := store.Get("old")
	assert.False(t, ok, "oldest terminal session is evicted past the cap")
	_, ok = store.Get("mid")
	assert.True(t, ok)
	_, ok = store.Get("new")
	assert.True(t, ok)
}

func TestMemoryStore_NeverEvictsInFlight(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{MaxSessions: 1})
	base := time.Now()
	store.Put(session("a", models.StateScanning, base.Add(-2*time.Hour)))
	store.Put(session("b", models.StateInterviewing, base))

	// Over the cap, but both in flight.
	assert.Len(t, store.List(), 2)
}

func TestMemoryStore_TTLEviction(t *testing.T) {
	store := NewMemoryStore(RetentionPolicy{TTL: time.Minute})
	store.Put(session("stale", models.StateArchived, time.Now().Add(-time.Hour)))
	store.Put(session("fresh", models.StateArchived, time.Now()))

	_, ok := store.Get("stale")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}

func TestCloneSession_DeepCopiesResults(t *testing.T) {
	s := session("s1", models.StateArchived, time.Now())
	s.ScanResults = &models.IntensityReport{SpecificArtifacts: []string{"OPS-1"}}
	s.InterviewResults = &models.InterviewResult{Questions: []models.Question{{Text: "q"}}}
	s.ArchiveResults = &models.ArchiveResult{Artifact: &models.KnowledgeArtifact{Tags: []string{"cache"}}}

	c := cloneSession(s)
	c.ScanResults.SpecificArtifacts[0] = "changed"
	c.InterviewResults.Questions[0].Text = "changed"
	c.ArchiveResults.Artifact.Tags[0] = "changed"

	assert.Equal(t, "OPS-1", s.ScanResults.SpecificArtifacts[0])
	assert.Equal(t, "q", s.InterviewResults.Questions[0].Text)
	assert.Equal(t, "cache", s.ArchiveResults.Artifact.Tags[0])
}
