package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemStoreRejectsBadSeed(t *testing.T) {
	_, err := NewMemStore(placeSchema, []place{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = NewMemStore(placeSchema, []place{{ID: " ", Name: "a"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewMemStore(placeSchema, []place{{ID: "1"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemStoreReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newMem(t)

	all, err := s.All(ctx)
	require.NoError(t, err)
	all[0].Name = "changed"
	all[1].Tags[0] = "changed"
	all = append(all[:0], all[2:]...)

	got, ok, err := s.Get(ctx, "2")
	require.NoError(t, err)
	require.True(t, ok)
	got.Tags = append(got.Tags, "extra")

	again, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixture(), again)
}

func TestMemStoreAddAssignsNextID(t *testing.T) {
	ctx := context.Background()
	s := newMem(t)

	added, err := s.Add(ctx, place{ID: "ignored", Name: "Agadir"})
	require.NoError(t, err)
	assert.Equal(t, "4", added.ID)

	got, ok, err := s.Get(ctx, "4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, added, got)
	assert.Equal(t, 4, s.Len())
}

func TestMemStoreSequenceStartsAfterLargestNumericID(t *testing.T) {
	s, err := NewMemStore(placeSchema, []place{{ID: "7", Name: "a"}, {ID: "x", Name: "b"}})
	require.NoError(t, err)

	added, err := s.Add(context.Background(), place{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, "8", added.ID)
}

func TestMemStoreDeleteNeverReusesIDs(t *testing.T) {
	ctx := context.Background()
	s := newMem(t)

	require.NoError(t, s.Delete(ctx, "3"))
	assert.ErrorIs(t, s.Delete(ctx, "3"), ErrNotFound)

	added, err := s.Add(ctx, place{Name: "Tanger"})
	require.NoError(t, err)
	assert.Equal(t, "4", added.ID)

	// index stays correct after removing from the middle
	require.NoError(t, s.Delete(ctx, "1"))
	got, ok, err := s.Get(ctx, "4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Tanger", got.Name)
}

func TestMemStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := newMem(t)

	got, err := s.Update(ctx, "3", func(p place) (place, error) {
		p.Name = "Fez"
		return p, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Fez", got.Name)

	found, err := s.Search(ctx, "fez")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fez"}, names(found))

	_, err = s.Update(ctx, "3", func(p place) (place, error) {
		p.ID = "33"
		return p, nil
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Update(ctx, "3", func(p place) (place, error) {
		p.Rank = -1
		return p, nil
	})
	assert.ErrorIs(t, err, ErrValidation)

	boom := errors.New("boom")
	_, err = s.Update(ctx, "3", func(p place) (place, error) { return p, boom })
	assert.ErrorIs(t, err, boom)

	_, err = s.Update(ctx, "999", func(p place) (place, error) { return p, nil })
	assert.ErrorIs(t, err, ErrNotFound)

	cur, _, err := s.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Fez", cur.Name)
	assert.Equal(t, 2, cur.Rank)
}

func TestMemStoreUUIDs(t *testing.T) {
	s := newMem(t, WithIDs(UUIDs("p_")))
	added, err := s.Add(context.Background(), place{Name: "Ifrane"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added.ID, "p_"), added.ID)
	assert.Len(t, added.ID, len("p_")+36)
}

func TestMemStoreConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := newMem(t)

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, place{Name: fmt.Sprintf("p%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3+n)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}
