package caseload

import (
	"fmt"
	"testing"

	"caseburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newTestStore(t *testing.T, recs ...model.ClientRecord) *Store {
	t.Helper()
	s, err := NewStore(recs, seqIDs())
	require.NoError(t, err)
	return s
}

func TestStore_AddAssignsIDsInOrder(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Add(model.ClientRecord{Name: "Alice"})
	require.NoError(t, err)
	b, err := s.Add(model.ClientRecord{Name: "Bob"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "id-2", b.ID)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Alice", "Bob"}, names(s.Records()))
}

func TestStore_DeletedIDsAreNeverReused(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "keep"}, model.ClientRecord{ID: "gone"})

	require.NoError(t, s.Delete("gone"))
	_, err := s.Add(model.ClientRecord{ID: "gone"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = s.Add(model.ClientRecord{ID: "keep"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	assert.ErrorIs(t, s.Delete("gone"), ErrNotFound)
}

func TestStore_DeleteKeepsOrderAndIndex(t *testing.T) {
	s := newTestStore(t,
		model.ClientRecord{ID: "a", Name: "A"},
		model.ClientRecord{ID: "b", Name: "B"},
		model.ClientRecord{ID: "c", Name: "C"},
	)
	require.NoError(t, s.Delete("b"))

	assert.Equal(t, []string{"A", "C"}, names(s.Records()))
	got, ok := s.Get("c")
	require.True(t, ok)
	assert.Equal(t, "C", got.Name)
}

func TestStore_UpdateAndSetNotes(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "a", Name: "A", Balance: 10})

	require.NoError(t, s.Update(model.ClientRecord{ID: "a", Name: "A2", Balance: 20}))
	require.NoError(t, s.SetNotes("a", "call plan manager"))

	got, _ := s.Get("a")
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, 20.0, got.Balance)
	assert.Equal(t, "call plan manager", got.Notes)

	assert.ErrorIs(t, s.Update(model.ClientRecord{ID: "zzz"}), ErrNotFound)
	assert.ErrorIs(t, s.SetNotes("zzz", "x"), ErrNotFound)
}

func TestStore_RecordsIsACopy(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "a", Name: "A"})
	recs := s.Records()
	recs[0].Name = "mutated"

	got, _ := s.Get("a")
	assert.Equal(t, "A", got.Name)
}

func TestStore_AppendIsAllOrNothing(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "a"})

	err := s.Append([]model.ClientRecord{{Name: "new"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Append([]model.ClientRecord{{Name: "x"}, {Name: "y"}}))
	assert.Equal(t, 3, s.Len())
}

func TestStore_ReplaceRejectsDuplicates(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "a", Name: "A"})

	err := s.Replace([]model.ClientRecord{{ID: "x"}, {ID: "x"}})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"A"}, names(s.Records()), "store unchanged on error")

	require.NoError(t, s.Replace([]model.ClientRecord{{ID: "x", Name: "X"}, {Name: "no id"}}))
	recs := s.Records()
	require.Len(t, recs, 2)
	assert.NotEmpty(t, recs[1].ID)

	_, err = s.Add(model.ClientRecord{ID: "a"})
	assert.ErrorIs(t, err, ErrDuplicateID, "replaced-away id is retired")
}

func TestStore_ReplaceKeepsDeletedIDsRetired(t *testing.T) {
	s := newTestStore(t,
		model.ClientRecord{ID: "a", Name: "A"},
		model.ClientRecord{ID: "b", Name: "B"},
	)
	require.NoError(t, s.Delete("a"))

	require.NoError(t, s.Replace([]model.ClientRecord{
		{ID: "a", Name: "A restored"},
		{ID: "b", Name: "B restored"},
	}))

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.NotEqual(t, "a", recs[0].ID, "deleted id is not revived")
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, "A restored", recs[0].Name)
	assert.Equal(t, "b", recs[1].ID)

	_, ok := s.Get("a")
	assert.False(t, ok)
	_, err := s.Add(model.ClientRecord{ID: "a"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestStore_WithRetiredCarriesHistory(t *testing.T) {
	s, err := NewStore([]model.ClientRecord{{ID: "old"}}, seqIDs(), WithRetired([]string{"gone", "id-1"}))
	require.NoError(t, err)

	_, err = s.Add(model.ClientRecord{ID: "gone"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	added, err := s.Add(model.ClientRecord{Name: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "id-2", added.ID, "generator skips retired ids")

	require.NoError(t, s.Delete("old"))
	assert.Equal(t, []string{"gone", "id-1", "old"}, s.Retired())
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t, model.ClientRecord{ID: "a"})
	s.Reset()
	assert.Zero(t, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func names(recs []model.ClientRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}
