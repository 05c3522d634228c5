package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/jobs"
)

type snapshotLoader interface {
	Snapshot(ctx context.Context, collection models.Collection) (*models.Snapshot, error)
}

type changeFeed interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
	Listen(ctx context.Context, handle func(models.ChangeEvent)) error
}

// SubscriptionConfig tunes the refresh workers and subscriber buffers.
type SubscriptionConfig struct {
	Workers  int
	Buffer   int
	CacheTTL time.Duration
}

type refreshOrigin struct {
	remote bool
}

type subscriber struct {
	ch chan *models.Snapshot
}

// SubscriptionService keeps live subscribers of each collection supplied with full snapshots.
// A write schedules one refresh per collection; the refresh reloads the collection, pushes it
// to local subscribers and announces the change to other instances.
type SubscriptionService struct {
	loader   snapshotLoader
	cache    *CacheService
	feed     changeFeed
	metrics  *MetricsService
	logger   *zap.Logger
	queue    *jobs.Queue
	origin   string
	buffer   int
	cacheTTL time.Duration
	version  uint64

	refreshMu map[models.Collection]*sync.Mutex

	mu      sync.Mutex
	subs    map[models.Collection]map[*subscriber]struct{}
	latest  map[models.Collection]*models.Snapshot
	pending map[models.Collection]bool
}

// NewSubscriptionService constructs the hub. feed and cache may be nil.
func NewSubscriptionService(loader snapshotLoader, cache *CacheService, feed changeFeed, metrics *MetricsService, logger *zap.Logger, cfg SubscriptionConfig) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	s := &SubscriptionService{
		loader:    loader,
		cache:     cache,
		feed:      feed,
		metrics:   metrics,
		logger:    logger,
		origin:    uuid.NewString(),
		buffer:    cfg.Buffer,
		cacheTTL:  cfg.CacheTTL,
		refreshMu: make(map[models.Collection]*sync.Mutex),
		subs:      make(map[models.Collection]map[*subscriber]struct{}),
		latest:    make(map[models.Collection]*models.Snapshot),
		pending:   make(map[models.Collection]bool),
	}
	for _, c := range models.Collections() {
		s.refreshMu[c] = &sync.Mutex{}
		s.subs[c] = make(map[*subscriber]struct{})
	}
	s.queue = jobs.NewQueue("snapshot-refresh", s.handleRefresh, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: len(models.Collections()) * 2,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	return s
}

// Run starts the refresh workers and follows the cross-instance change feed until ctx ends.
func (s *SubscriptionService) Run(ctx context.Context) {
	s.queue.Start(ctx)
	defer s.queue.Stop()

	if s.feed == nil {
		<-ctx.Done()
		return
	}
	for {
		err := s.feed.Listen(ctx, s.handleRemote)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("change feed interrupted", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// Notify schedules a refresh of the collection. Refreshes already pending are coalesced.
func (s *SubscriptionService) Notify(collection models.Collection) {
	s.schedule(collection, false)
}

// Current returns the latest snapshot known to this instance, loading it when none is held.
func (s *SubscriptionService) Current(ctx context.Context, collection models.Collection) (*models.Snapshot, error) {
	if _, ok := s.refreshMu[collection]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown collection "+string(collection))
	}
	s.mu.Lock()
	latest := s.latest[collection]
	s.mu.Unlock()
	if latest != nil {
		return latest, nil
	}

	var cached models.Snapshot
	if hit, _ := s.cache.Get(ctx, cacheKey(collection), &cached); hit {
		cached.Version = atomic.AddUint64(&s.version, 1)
		return s.remember(&cached), nil
	}

	snapshot, err := s.loader.Snapshot(ctx, collection)
	if err != nil {
		return nil, err
	}
	snapshot.Version = atomic.AddUint64(&s.version, 1)
	_ = s.cache.Set(ctx, cacheKey(collection), snapshot, s.cacheTTL)
	return s.remember(snapshot), nil
}

// Subscribe yields the current snapshot followed by every later snapshot of the collection.
// The channel is closed when ctx ends. A slow reader only ever misses intermediate snapshots.
func (s *SubscriptionService) Subscribe(ctx context.Context, collection models.Collection) (<-chan *models.Snapshot, error) {
	initial, err := s.Current(ctx, collection)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{ch: make(chan *models.Snapshot, s.buffer)}
	s.mu.Lock()
	if latest := s.latest[collection]; latest != nil && latest.Version > initial.Version {
		initial = latest
	}
	sub.ch <- initial
	s.subs[collection][sub] = struct{}{}
	s.mu.Unlock()
	s.metrics.AddSubscribers(collection, 1)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs[collection], sub)
		close(sub.ch)
		s.mu.Unlock()
		s.metrics.AddSubscribers(collection, -1)
	}()
	return sub.ch, nil
}

// Subscribers reports the number of open subscriptions for a collection.
func (s *SubscriptionService) Subscribers(collection models.Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[collection])
}

func (s *SubscriptionService) handleRemote(event models.ChangeEvent) {
	if event.Origin == s.origin {
		return
	}
	s.schedule(event.Collection, true)
}

func (s *SubscriptionService) schedule(collection models.Collection, remote bool) {
	if _, ok := s.refreshMu[collection]; !ok {
		return
	}
	s.mu.Lock()
	if s.pending[collection] {
		s.mu.Unlock()
		return
	}
	s.pending[collection] = true
	s.mu.Unlock()

	err := s.queue.TryEnqueue(jobs.Job{ID: uuid.NewString(), Type: string(collection), Payload: refreshOrigin{remote: remote}})
	if err == nil {
		return
	}

	s.mu.Lock()
	s.pending[collection] = false
	s.mu.Unlock()
	if errors.Is(err, jobs.ErrQueueFull) {
		s.logger.Warn("snapshot refresh dropped", zap.String("collection", string(collection)))
		return
	}
	// no workers in this process, so only other instances can react
	if !remote {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.Invalidate(ctx, cacheKey(collection)); err != nil {
			s.logger.Warn("failed to drop cached snapshot", zap.String("collection", string(collection)), zap.Error(err))
		}
		s.publish(ctx, collection)
	}
}

func (s *SubscriptionService) handleRefresh(ctx context.Context, job jobs.Job) error {
	collection := models.Collection(job.Type)
	s.mu.Lock()
	s.pending[collection] = false
	s.mu.Unlock()

	lock := s.refreshMu[collection]
	lock.Lock()
	defer lock.Unlock()

	snapshot, err := s.loader.Snapshot(ctx, collection)
	if err != nil {
		return err
	}
	snapshot.Version = atomic.AddUint64(&s.version, 1)
	if err := s.cache.Set(ctx, cacheKey(collection), snapshot, s.cacheTTL); err != nil {
		_ = s.cache.Invalidate(ctx, cacheKey(collection))
	}
	s.broadcast(snapshot)

	if origin, ok := job.Payload.(refreshOrigin); !ok || !origin.remote {
		s.publish(ctx, collection)
	}
	return nil
}

func (s *SubscriptionService) broadcast(snapshot *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if latest := s.latest[snapshot.Collection]; latest != nil && latest.Version > snapshot.Version {
		return
	}
	s.latest[snapshot.Collection] = snapshot
	subs := s.subs[snapshot.Collection]
	for sub := range subs {
		deliverLatest(sub.ch, snapshot)
	}
	s.metrics.RecordBroadcast(snapshot.Collection, len(subs))
}

func (s *SubscriptionService) publish(ctx context.Context, collection models.Collection) {
	if s.feed == nil {
		return
	}
	event := models.ChangeEvent{Collection: collection, Origin: s.origin, At: time.Now().UTC()}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change event", zap.String("collection", string(collection)), zap.Error(err))
	}
}

func (s *SubscriptionService) remember(snapshot *models.Snapshot) *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if latest := s.latest[snapshot.Collection]; latest != nil {
		return latest
	}
	s.latest[snapshot.Collection] = snapshot
	return snapshot
}

// deliverLatest sends without blocking, evicting the oldest queued snapshot when the buffer is full.
func deliverLatest(ch chan *models.Snapshot, snapshot *models.Snapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func cacheKey(collection models.Collection) string {
	return "snapshot:" + string(collection)
}
