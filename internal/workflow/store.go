// Package workflow sequences scan -> interview -> archive for one employee
// and guards illegal phase ordering.
package workflow

import (
	"sort"
	"sync"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// SessionStore is the keyed, concurrency-safe session container. All
// mutation goes through the orchestrator; reads observe snapshots.
type SessionStore interface {
	// Get returns a copy of the session, or false if absent.
	Get(id string) (*models.WorkflowSession, bool)

	// Put inserts or replaces a session.
	Put(session *models.WorkflowSession)

	// CompareAndSwap applies mutate to the stored session only if its
	// current state equals expect. Returns the updated copy and whether
	// the swap happened. Two concurrent transitions from the same state
	// cannot both succeed.
	CompareAndSwap(id string, expect models.SessionState, mutate func(*models.WorkflowSession)) (*models.WorkflowSession, bool)

	// Update applies mutate regardless of state, returning false if the
	// session is absent. Used for error-log appends.
	Update(id string, mutate func(*models.WorkflowSession)) (*models.WorkflowSession, bool)

	// List returns copies of all sessions.
	List() []*models.WorkflowSession
}

// RetentionPolicy bounds how long finished sessions are kept. Zero values
// disable the corresponding limit.
type RetentionPolicy struct {
	MaxSessions int
	TTL         time.Duration
}

// MemoryStore is the default in-process SessionStore.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*models.WorkflowSession
	retention RetentionPolicy
}

// NewMemoryStore returns an empty store with the given retention policy.
func NewMemoryStore(retention RetentionPolicy) *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*models.WorkflowSession),
		retention: retention,
	}
}

func (m *MemoryStore) Get(id string) (*models.WorkflowSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return cloneSession(s), true
}

func (m *MemoryStore) Put(session *models.WorkflowSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = cloneSession(session)
	m.evictLocked()
}

func (m *MemoryStore) CompareAndSwap(id string, expect models.SessionState, mutate func(*models.WorkflowSession)) (*models.WorkflowSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.State != expect {
		return nil, false
	}
	mutate(s)
	s.Progress = s.State.Progress()
	return cloneSession(s), true
}

func (m *MemoryStore) Update(id string, mutate func(*models.WorkflowSession)) (*models.WorkflowSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	mutate(s)
	s.Progress = s.State.Progress()
	return cloneSession(s), true
}

func (m *MemoryStore) List() []*models.WorkflowSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.WorkflowSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.Before(out[j].TriggeredAt) })
	return out
}

// evictLocked drops terminal sessions past the retention limits. Sessions
// still in flight are never evicted.
func (m *MemoryStore) evictLocked() {
	if m.retention.TTL > 0 {
		cutoff := time.Now().Add(-m.retention.TTL)
		for id, s := range m.sessions {
			if s.State.Terminal() && s.TriggeredAt.Before(cutoff) {
				delete(m.sessions, id)
			}
		}
	}

	if m.retention.MaxSessions > 0 && len(m.sessions) > m.retention.MaxSessions {
		var terminal []*models.WorkflowSession
		for _, s := range m.sessions {
			if s.State.Terminal() {
				terminal = append(terminal, s)
			}
		}
		sort.Slice(terminal, func(i, j int) bool { return terminal[i].TriggeredAt.Before(terminal[j].TriggeredAt) })
		for _, s := range terminal {
			if len(m.sessions) <= m.retention.MaxSessions {
				break
			}
			delete(m.sessions, s.ID)
		}
	}
}

// cloneSession deep-copies a session so readers never share mutable state
// with the store.
func cloneSession(s *models.WorkflowSession) *models.WorkflowSession {
	c := *s

	c.Errors = append([]models.SessionError(nil), s.Errors...)

	if s.ScanResults != nil {
		r := *s.ScanResults
		r.CriticalTickets = append([]models.ActivityRecord(nil), s.ScanResults.CriticalTickets...)
		r.HighComplexityChanges = append([]models.ActivityRecord(nil), s.ScanResults.HighComplexityChanges...)
		r.SpecificArtifacts = append([]string(nil), s.ScanResults.SpecificArtifacts...)
		c.ScanResults = &r
	}

	if s.InterviewResults != nil {
		ir := *s.InterviewResults
		ir.Questions = append([]models.Question(nil), s.InterviewResults.Questions...)
		ir.Artifacts = append([]models.CodeArtifact(nil), s.InterviewResults.Artifacts...)
		c.InterviewResults = &ir
	}

	if s.ArchiveResults != nil {
		ar := *s.ArchiveResults
		if s.ArchiveResults.Artifact != nil {
			a := *s.ArchiveResults.Artifact
			a.Tags = append([]string(nil), s.ArchiveResults.Artifact.Tags...)
			a.RelatedTickets = append([]string(nil), s.ArchiveResults.Artifact.RelatedTickets...)
			a.RelatedPRs = append([]string(nil), s.ArchiveResults.Artifact.RelatedPRs...)
			a.RelatedCommits = append([]string(nil), s.ArchiveResults.Artifact.RelatedCommits...)
			a.SourceArtifacts = append([]models.CodeArtifact(nil), s.ArchiveResults.Artifact.SourceArtifacts...)
			ar.Artifact = &a
		}
		c.ArchiveResults = &ar
	}

	return &c
}
