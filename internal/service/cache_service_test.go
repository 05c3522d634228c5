package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type memoryCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func TestCacheServiceHitMissAndMetrics(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCache()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out models.Snapshot
	hit, err := svc.Get(ctx, "snapshot:fixedData", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "snapshot:fixedData", models.Snapshot{Collection: models.CollectionFixed, Version: 3}, 0))
	assert.Equal(t, time.Minute, repo.ttls["snapshot:fixedData"])

	hit, err = svc.Get(ctx, "snapshot:fixedData", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, uint64(3), out.Version)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))

	require.NoError(t, svc.Invalidate(ctx, "snapshot:fixedData"))
	hit, _ = svc.Get(ctx, "snapshot:fixedData", &out)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCache()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var out models.Snapshot
	hit, err := svc.Get(context.Background(), "snapshot:extraRes", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	svc := NewCacheService(repo, nil, 0, nil, false)
	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(context.Background(), "k", new(string))
	assert.False(t, hit)
	assert.NoError(t, err)
}

func TestSubscriptionServesCachedSnapshotWithLocalVersion(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, cache.Set(context.Background(), cacheKey(models.CollectionSubjects), models.Snapshot{
		Collection: models.CollectionSubjects,
		Cells:      map[string]string{"2-1-thu-4": "수학"},
		Version:    900,
	}, 0))

	store := newMemoryStore()
	booking, _ := newTestBookingService(store)
	hub := NewSubscriptionService(booking, cache, nil, nil, nil, SubscriptionConfig{})

	snap, err := hub.Current(context.Background(), models.CollectionSubjects)
	require.NoError(t, err)
	assert.Equal(t, "수학", snap.Cells["2-1-thu-4"])
	assert.Equal(t, uint64(1), snap.Version)
}
