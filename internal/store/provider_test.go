package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	source, op string
	err        error
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingRecorder) ObserveOperation(source, op string, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{source, op, err})
}

func (r *recordingRecorder) last() observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.obs[len(r.obs)-1]
}

func TestProviderSelectsRepositoryBySignIn(t *testing.T) {
	ctx := context.Background()
	local := newTestLocalStore(t)
	remote := newTestRemoteStore(t)
	rec := &recordingRecorder{}
	p := NewProvider(local, remote, zerolog.Nop(), rec)

	_, err := p.For("").SaveScan(ctx, sampleScan("local-scan", testNow))
	require.NoError(t, err)
	assert.Equal(t, observation{SourceLocal, "saveScan", nil}, rec.last())

	_, err = p.For("alice").SaveScan(ctx, sampleScan("remote-scan", testNow))
	require.NoError(t, err)
	assert.Equal(t, observation{SourceRemote, "saveScan", nil}, rec.last())

	localScans, err := local.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-scan"}, ids(localScans))

	remoteScans, err := remote.ForUser("alice").GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"remote-scan"}, ids(remoteScans))

	assert.Same(t, remote, p.Remote())
}

func TestProviderFallsBackToLocalWithoutRemote(t *testing.T) {
	ctx := context.Background()
	local := newTestLocalStore(t)
	p := NewProvider(local, nil, zerolog.Nop(), nil)

	_, err := p.For("alice").SaveScan(ctx, sampleScan("abc", testNow))
	require.NoError(t, err)

	scans, err := local.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, scans, 1)
	assert.Nil(t, p.Remote())
}

func TestInstrumentRecordsFailures(t *testing.T) {
	ctx := context.Background()
	rec := &recordingRecorder{}
	repo := Instrument(newTestLocalStore(t), SourceLocal, rec)

	err := repo.DeleteCollection(ctx, "1")
	require.ErrorIs(t, err, ErrProtectedCollection)
	got := rec.last()
	assert.Equal(t, "deleteCollection", got.op)
	assert.True(t, errors.Is(got.err, ErrProtectedCollection))

	_, err = repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, observation{SourceLocal, "getStats", nil}, rec.last())
}

func TestInstrumentWithoutRecorderIsPassThrough(t *testing.T) {
	local := newTestLocalStore(t)
	assert.Same(t, Repository(local), Instrument(local, SourceLocal, nil))
}
