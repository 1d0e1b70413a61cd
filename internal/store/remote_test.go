package store

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemoteStore(t *testing.T) *RemoteStore {
	t.Helper()
	return NewRemoteStore(testutil.OpenRemoteSQLite(t), WithClock(fixedClock))
}

func TestRemoteFavoritesProvisioning(t *testing.T) {
	ctx := context.Background()
	repo := newTestRemoteStore(t).ForUser("alice")

	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Initialize(ctx))

	collections, err := repo.GetCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, models.FavoritesName, collections[0].Name)
	assert.Equal(t, models.FavoritesIcon, collections[0].Icon)
	assert.Len(t, collections[0].ID, 36)
}

func TestRemoteInitializeRequiresUser(t *testing.T) {
	err := newTestRemoteStore(t).ForUser("").Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestRemoteUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestRemoteStore(t)
	alice, bob := s.ForUser("alice"), s.ForUser("bob")

	_, err := alice.SaveScan(ctx, sampleScan("abc", testNow))
	require.NoError(t, err)
	// the same scan id may exist for another user
	_, err = bob.SaveScan(ctx, sampleScan("abc", testNow))
	require.NoError(t, err)

	changed, err := alice.ToggleSavedScan(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, changed)

	aliceSaved, err := alice.GetSavedCollection(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, aliceSaved, 1)

	bobSaved, err := bob.GetSavedCollection(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, bobSaved)

	require.NoError(t, bob.ClearAllData(ctx))

	aliceRecent, err := alice.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, aliceRecent, 1)

	id, err := alice.CreateCollection(ctx, "Track Days", "")
	require.NoError(t, err)
	assert.ErrorIs(t, bob.AddToCollection(ctx, id, sampleScan("abc", testNow)), ErrCollectionNotFound)
	require.NoError(t, bob.DeleteCollection(ctx, id))

	aliceCollections, err := alice.GetCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, aliceCollections, 2)
}

func TestRemoteScansRoundTripAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRemoteStore(t).ForUser("alice")

	scan := sampleScan("abc", testNow)
	_, err := repo.SaveScan(ctx, scan)
	require.NoError(t, err)

	scan.Name = "Porsche 911 GT3 RS"
	_, err = repo.SaveScan(ctx, scan)
	require.NoError(t, err)

	recent, err := repo.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, scan, recent[0])

	found, err := repo.SearchScans(ctx, "gt3 rs")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, ids(found))

	found, err = repo.SearchScans(ctx, "ferrari")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRemoteCollectionSnapshots(t *testing.T) {
	ctx := context.Background()
	now := testNow
	s := NewRemoteStore(testutil.OpenRemoteSQLite(t), WithClock(func() time.Time { return now }))
	repo := s.ForUser("alice")

	id, err := repo.CreateCollection(ctx, "Track Days", "🏁")
	require.NoError(t, err)

	car := sampleScan("abc", testNow)
	require.NoError(t, repo.AddToCollection(ctx, id, car))
	now = now.Add(time.Second)
	require.NoError(t, repo.AddToCollection(ctx, id, sampleScan("def", testNow)))

	car.Name = "Renamed"
	require.NoError(t, repo.AddToCollection(ctx, id, car))

	collections, err := repo.GetCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, models.FavoritesName, collections[0].Name)
	track := collections[1]
	assert.Equal(t, "🏁", track.Icon)
	assert.Equal(t, []string{"abc", "def"}, ids(track.Cars))
	assert.Equal(t, "Renamed", track.Cars[0].Name)

	require.NoError(t, repo.RemoveFromCollection(ctx, id, "abc"))
	require.NoError(t, repo.RemoveFromCollection(ctx, id, "abc"))
	require.NoError(t, repo.RemoveFromCollection(ctx, "missing", "abc"))

	collections, err = repo.GetCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"def"}, ids(collections[1].Cars))

	assert.ErrorIs(t, repo.AddToCollection(ctx, "missing", car), ErrCollectionNotFound)
	assert.ErrorIs(t, repo.AddToCollection(ctx, id, models.Scan{}), ErrMissingCarID)
}

func TestRemoteDeleteCollection(t *testing.T) {
	ctx := context.Background()
	repo := newTestRemoteStore(t).ForUser("alice")

	collections, err := repo.GetCollections(ctx)
	require.NoError(t, err)
	favoritesID := collections[0].ID

	assert.ErrorIs(t, repo.DeleteCollection(ctx, favoritesID), ErrProtectedCollection)
	assert.ErrorIs(t, repo.DeleteCollection(ctx, models.FavoritesID), ErrProtectedCollection)

	id, err := repo.CreateCollection(ctx, "Track Days", "")
	require.NoError(t, err)
	require.NoError(t, repo.DeleteCollection(ctx, id))
	require.NoError(t, repo.DeleteCollection(ctx, id))

	collections, err = repo.GetCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, favoritesID, collections[0].ID)
}

func TestRemoteGetStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRemoteStore(t).ForUser("alice")

	for id, at := range map[string]time.Time{
		"now":  testNow,
		"hour": testNow.Add(-time.Hour),
		"old":  testNow.Add(-8 * 24 * time.Hour),
	} {
		_, err := repo.SaveScan(ctx, sampleScan(id, at))
		require.NoError(t, err)
	}

	collections, err := repo.GetCollections(ctx)
	require.NoError(t, err)
	id, err := repo.CreateCollection(ctx, "Track Days", "")
	require.NoError(t, err)
	require.NoError(t, repo.AddToCollection(ctx, collections[0].ID, sampleScan("now", testNow)))
	require.NoError(t, repo.AddToCollection(ctx, id, sampleScan("now", testNow)))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalScans: 3, WeeklyScans: 2, TotalSaved: 1, NewSaves: 1}, stats)

	require.NoError(t, repo.ClearAllData(ctx))

	stats, err = repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)

	collections, err = repo.GetCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, collections, 2)
}

func TestRemoteWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestRemoteStore(t)
	repo := s.ForUser("alice")

	updates, err := s.Watch(ctx, "alice")
	require.NoError(t, err)

	initial := receive(t, updates)
	require.Len(t, initial, 1)
	assert.Equal(t, models.FavoritesName, initial[0].Name)

	id, err := repo.CreateCollection(ctx, "Track Days", "")
	require.NoError(t, err)
	assert.Len(t, receive(t, updates), 2)

	require.NoError(t, repo.AddToCollection(ctx, id, sampleScan("abc", testNow)))
	latest := receive(t, updates)
	require.Len(t, latest, 2)
	assert.Equal(t, []string{"abc"}, ids(latest[1].Cars))

	// another user's changes are not delivered
	_, err = s.ForUser("bob").CreateCollection(ctx, "Other", "")
	require.NoError(t, err)
	select {
	case snapshot := <-updates:
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
	assert.False(t, s.watch.has("alice"))
}

func TestRemoteWatchRequiresUser(t *testing.T) {
	_, err := newTestRemoteStore(t).Watch(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoUser)
}

func receive(t *testing.T, ch <-chan []models.Collection) []models.Collection {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
