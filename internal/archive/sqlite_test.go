package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debriefhq/debrief/internal/errs"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archives.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDoc(employee string) Document {
	return Document{
		Title:      "Knowledge archive for " + employee,
		EmployeeID: employee,
		SessionID:  "sess-1",
		ArtifactID: "art-1",
		Body:       "# archive\n\nsome content",
		Confidence: 0.75,
		Tags:       []string{"cache", "ledger"},
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteSink_StoreAndGet(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	loc, err := s.Store(ctx, testDoc("alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, loc.ID)
	assert.Equal(t, "debrief://archives/"+loc.ID, loc.URL)

	rec, err := s.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.EmployeeID)
	assert.Equal(t, "sess-1", rec.SessionID)
	assert.Equal(t, 0.75, rec.Confidence)
	assert.Equal(t, []string{"cache", "ledger"}, rec.Tags)
	assert.Contains(t, rec.Body, "some content")
}

func TestSQLiteSink_GetMissing(t *testing.T) {
	s := newTestSink(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSQLiteSink_List(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	first := testDoc("alice")
	first.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := testDoc("bob")
	second.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Store(ctx, first)
	require.NoError(t, err)
	_, err = s.Store(ctx, second)
	require.NoError(t, err)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].EmployeeID, "newest first")

	alice, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "alice", alice[0].EmployeeID)
}

func TestSQLiteSink_ListEmpty(t *testing.T) {
	s := newTestSink(t)

	records, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteSink_MigrateIdempotent(t *testing.T) {
	s := newTestSink(t)

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))

	_, err := s.Store(context.Background(), testDoc("alice"))
	assert.NoError(t, err)
}
