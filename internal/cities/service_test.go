package cities

import (
	"context"
	"errors"
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

func TestSeedHas49UniqueCities(t *testing.T) {
	seed := Seed()
	require.Len(t, seed, 49)

	seen := map[string]bool{}
	for _, c := range seed {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
		assert.Equal(t, "Morocco", c.Country)
		assert.NoError(t, validate(c), c.Name)
	}
}

func TestAddAfterSeedGetsNextID(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	added, err := svc.Add(ctx, City{
		Name:        "Essaouira",
		State:       "Marrakech-Safi",
		Country:     "Morocco",
		Coordinates: Coordinates{Latitude: 31.5085, Longitude: -9.7595},
		Population:  77966,
	}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50", added.ID)

	all, err := svc.All(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	assert.Equal(t, added, all[49])
}

func TestGetUnknownCity(t *testing.T) {
	ctx := context.Background()
	_, err := newService(t).Get(ctx, "999").Await(ctx)
	assert.True(t, errors.Is(err, catalog.ErrNotFound), "got %v", err)
}

func TestSearchMatchesNameOrRegion(t *testing.T) {
	ctx := context.Background()
	store, err := catalog.NewMemStore(Schema, []City{
		{ID: "1", Name: "Casablanca", State: "Grand Casablanca", Country: "Morocco"},
		{ID: "2", Name: "Rabat", State: "Rabat-Salé", Country: "Morocco"},
		{ID: "3", Name: "Fès", State: "Fès-Meknès", Country: "Morocco"},
	})
	require.NoError(t, err)
	svc := NewService(store)

	got, err := svc.Search(ctx, "ca").Await(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Casablanca", got[0].Name)

	got, err = svc.Search(ctx, "MEKN").Await(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got, err = svc.Search(ctx, "  ").Await(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestPopularKeepsAllowListOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	got, err := svc.Popular(ctx, 3).Await(ctx)
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Casablanca", "Marrakech", "Rabat"}, names)

	all, err := svc.Popular(ctx, 0).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(PopularNames))
}

func TestPopularMatchesLikeFilter(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	// U+017F LONG S folds to "s".
	_, err := svc.UpdateFields(ctx, "1", map[string]any{"name": "CAſABLANCA"}).Await(ctx)
	require.NoError(t, err)

	byName, err := svc.FilterBy(ctx, "name", "casablanca").Await(ctx)
	require.NoError(t, err)
	require.Len(t, byName, 1)

	got, err := svc.Popular(ctx, 1).Await(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestByCountryIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	got, err := svc.ByCountry(ctx, "morocco").Await(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 49)

	got, err = svc.ByCountry(ctx, "Spain").Await(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidateRejectsBadCoordinates(t *testing.T) {
	ctx := context.Background()
	_, err := newService(t).Add(ctx, City{Name: "Nowhere", Country: "Morocco", Coordinates: Coordinates{Latitude: 120}}).Await(ctx)

	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "coordinates.latitude", ve.Field)
	assert.Equal(t, "city", ve.Kind)
}
