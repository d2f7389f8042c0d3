package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SportHub/internal/activities"
	"SportHub/internal/async"
	"SportHub/internal/catalog"
	"SportHub/internal/friends"
	"SportHub/internal/notifications"
	"SportHub/internal/sports"
)

func newSources(t *testing.T, opts ...catalog.Option) Sources {
	t.Helper()
	fs, err := friends.NewMemStore()
	require.NoError(t, err)
	ns, err := notifications.NewMemStore()
	require.NoError(t, err)
	as, err := activities.NewMemStore()
	require.NoError(t, err)
	ss, err := sports.NewMemStore()
	require.NoError(t, err)

	return Sources{
		Friends:       friends.NewService(fs, opts...),
		Notifications: notifications.NewService(ns, opts...),
		Activities:    activities.NewService(as, opts...),
		Sports:        sports.NewService(ss, opts...),
	}
}

func newService(t *testing.T, opts ...catalog.Option) *Service {
	t.Helper()
	store, err := NewMemStore()
	require.NoError(t, err)
	return NewService(store, newSources(t, opts...), opts...)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	ov, err := newService(t).Overview(ctx, "1").Await(ctx)
	require.NoError(t, err)

	assert.Equal(t, "amine.moves", ov.Profile.Username)
	assert.Equal(t, 3, ov.Friends)
	assert.Equal(t, 1, ov.PendingRequests)
	assert.Equal(t, 3, ov.UnreadNotifications)
	assert.Equal(t, 3, ov.Activities.Completed)
	require.NotNil(t, ov.NextActivity)
	assert.Equal(t, "4", ov.NextActivity.ID)
	assert.Len(t, ov.Sports, 4)
}

func TestOverviewUnknownProfile(t *testing.T) {
	ctx := context.Background()
	_, err := newService(t).Overview(ctx, "999").Await(ctx)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestOverviewRunsInParallel(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, catalog.WithLatency(async.Fixed(40*time.Millisecond)))

	start := time.Now()
	_, err := svc.Overview(ctx, "1").Await(ctx)
	require.NoError(t, err)
	// seven lookups at 40ms each would take 280ms back to back
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.UpdateProfile(ctx, "1", map[string]any{"bio": "Now into trail running.", "city": "Rabat"}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rabat", p.City)
	assert.Equal(t, "Now into trail running.", p.Bio)
	assert.Equal(t, "amine@sporthub.ma", p.Email)
}

func TestUpdateProfileRejects(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tests := []struct {
		name   string
		fields map[string]any
		field  string
	}{
		{"read-only field", map[string]any{"joinedAt": "2020-01-01T00:00:00Z"}, "joinedAt"},
		{"id", map[string]any{"id": "2"}, "id"},
		{"bad email", map[string]any{"email": "not-an-email"}, "email"},
		{"blank name", map[string]any{"name": "  "}, "name"},
		{"wrong type", map[string]any{"city": 12}, "city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, "1", tt.fields).Await(ctx)
			var ve *catalog.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	p, err := svc.Get(ctx, "1").Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amine Benjelloun", p.Name)
}
