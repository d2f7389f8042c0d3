package sports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SportHub/internal/catalog"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := NewMemStore()
	require.NoError(t, err)
	return NewService(store)
}

func TestSelected(t *testing.T) {
	ctx := context.Background()
	got, err := newService(t).Selected(ctx).Await(ctx)
	require.NoError(t, err)

	var names []string
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Running", "Football", "Padel", "Hiking"}, names)
}

func TestSetPreference(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	sp, err := svc.SetPreference(ctx, "2", Preference{Selected: true}).Await(ctx)
	require.NoError(t, err)
	assert.True(t, sp.Selected)
	assert.Equal(t, Beginner, sp.Level)

	sp, err = svc.SetPreference(ctx, "8", Preference{Selected: false, Level: Advanced}).Await(ctx)
	require.NoError(t, err)
	assert.False(t, sp.Selected)
	assert.Empty(t, sp.Level)

	_, err = svc.SetPreference(ctx, "1", Preference{Selected: true, Level: "pro"}).Await(ctx)
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "level", ve.Field)

	got, err := svc.Selected(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestFilterByCategory(t *testing.T) {
	ctx := context.Background()
	got, err := newService(t).FilterBy(ctx, "category", "Racket").Await(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
