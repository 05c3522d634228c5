package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

// memoryStore is an in-memory recordStore. Batch and clear are applied to a copy and swapped in
// only on success, mirroring a transactional commit.
type memoryStore struct {
	mu       sync.Mutex
	data     map[models.Collection]map[string][]byte
	putErr   error
	listErr  error
	batchErr error
	// clearFailAfter makes Clear fail after emptying that many collections of the working copy.
	clearFailAfter int
	deletes        int
}

func newMemoryStore() *memoryStore {
	m := &memoryStore{data: make(map[models.Collection]map[string][]byte), clearFailAfter: -1}
	for _, c := range models.Collections() {
		m.data[c] = make(map[string][]byte)
	}
	return m
}

func (m *memoryStore) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	keys := make([]string, 0, len(m.data[c]))
	for k := range m.data[c] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.Record{Collection: c, Key: k, Payload: m.data[c][k], UpdatedAt: time.Now()})
	}
	return out, nil
}

func (m *memoryStore) Exists(ctx context.Context, c models.Collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[c][key]
	return ok, nil
}

func (m *memoryStore) Put(ctx context.Context, c models.Collection, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[c][key] = payload
	return nil
}

func (m *memoryStore) PutIfAbsent(ctx context.Context, c models.Collection, key string, payload []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return false, m.putErr
	}
	if _, ok := m.data[c][key]; ok {
		return false, nil
	}
	m.data[c][key] = payload
	return true, nil
}

func (m *memoryStore) Delete(ctx context.Context, c models.Collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	_, ok := m.data[c][key]
	delete(m.data[c], key)
	return ok, nil
}

func (m *memoryStore) PutBatch(ctx context.Context, writes []models.RecordWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, w := range writes {
		m.data[w.Collection][w.Key] = w.Payload
	}
	return nil
}

func (m *memoryStore) Clear(ctx context.Context, collections []models.Collection) (map[models.Collection]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	working := make(map[models.Collection]map[string][]byte, len(m.data))
	for c, records := range m.data {
		working[c] = records
	}
	removed := make(map[models.Collection]int64)
	for i, c := range collections {
		if m.clearFailAfter >= 0 && i == m.clearFailAfter {
			return nil, errors.New("commit interrupted")
		}
		removed[c] = int64(len(working[c]))
		working[c] = make(map[string][]byte)
	}
	m.data = working
	return removed, nil
}

func (m *memoryStore) count(c models.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[c])
}

type recordingNotifier struct {
	mu      sync.Mutex
	touched []models.Collection
}

func (n *recordingNotifier) Notify(c models.Collection) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.touched = append(n.touched, c)
}

func newTestBookingService(store *memoryStore) (*BookingService, *recordingNotifier) {
	svc := NewBookingService(store, nil, zap.NewNop())
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	return svc, notifier
}

func TestBookingServiceUpsertAndRead(t *testing.T) {
	store := newMemoryStore()
	svc, notifier := newTestBookingService(store)
	ctx := context.Background()

	key := slotkey.SlotKey{Resource: "science", Day: "mon", Period: "1"}
	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionFixed, key, "3-1"))
	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionFixed, key, "3-1"))

	cells, err := svc.Cells(ctx, models.CollectionFixed)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"science-mon-1": "3-1"}, cells)
	assert.Equal(t, []models.Collection{models.CollectionFixed, models.CollectionFixed}, notifier.touched)
}

func TestBookingServiceEmptyValueEqualsDelete(t *testing.T) {
	ctx := context.Background()
	key := slotkey.SlotKey{Resource: "1-1", Day: "tue", Period: "lunch"}

	cleared := newMemoryStore()
	clearedSvc, _ := newTestBookingService(cleared)
	require.NoError(t, clearedSvc.UpsertOrClear(ctx, models.CollectionSubjects, key, "국어"))
	require.NoError(t, clearedSvc.UpsertOrClear(ctx, models.CollectionSubjects, key, "   "))

	deleted := newMemoryStore()
	deletedSvc, _ := newTestBookingService(deleted)
	require.NoError(t, deletedSvc.UpsertOrClear(ctx, models.CollectionSubjects, key, "국어"))
	require.NoError(t, deletedSvc.DeleteCell(ctx, models.CollectionSubjects, key))

	a, err := clearedSvc.Cells(ctx, models.CollectionSubjects)
	require.NoError(t, err)
	b, err := deletedSvc.Cells(ctx, models.CollectionSubjects)
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Equal(t, a, b)
}

func TestBookingServiceDeleteTwiceSucceeds(t *testing.T) {
	store := newMemoryStore()
	svc, notifier := newTestBookingService(store)
	ctx := context.Background()
	key := slotkey.SlotKey{Resource: "교무", Day: "fri", Period: "6"}

	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionTeacherSchedules, key, "6-3"))
	require.NoError(t, svc.DeleteCell(ctx, models.CollectionTeacherSchedules, key))
	require.NoError(t, svc.DeleteCell(ctx, models.CollectionTeacherSchedules, key))

	assert.Equal(t, 0, store.count(models.CollectionTeacherSchedules))
	assert.Equal(t, 2, store.deletes)
	// the no-op second delete does not announce a change
	assert.Len(t, notifier.touched, 2)
}

func TestBookingServiceRejectsResourceOfWrongKind(t *testing.T) {
	svc, _ := newTestBookingService(newMemoryStore())
	ctx := context.Background()

	err := svc.UpsertOrClear(ctx, models.CollectionSubjects, slotkey.SlotKey{Resource: "science", Day: "mon", Period: "1"}, "과학")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.UpsertOrClear(ctx, models.CollectionReservations, slotkey.SlotKey{Resource: "science", Day: "mon", Period: "1"}, "x")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.UpsertOrClear(ctx, models.CollectionFixed, slotkey.SlotKey{Resource: "스포츠강사", Day: "sat", Period: "1"}, "3-1")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBookingServiceWrapsStoreFailures(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("connection refused")
	svc, notifier := newTestBookingService(store)

	err := svc.UpsertOrClear(context.Background(), models.CollectionFixed, slotkey.SlotKey{Resource: "library", Day: "wed", Period: "2"}, "2-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	assert.Empty(t, notifier.touched)
}

func TestBookingServiceCreateReservationOverwritesSilently(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, models.ReservationPayload{Room: "과학실", Date: "2026-03-02", Period: "3", ClassName: "4-1"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02-과학실-3", first.ID)

	_, err = svc.CreateReservation(ctx, models.ReservationPayload{Room: "과학실", Date: "2026-03-02", Period: "3", ClassName: "5-2"})
	require.NoError(t, err)

	list, err := svc.Reservations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "5-2", list[0].ClassName)
}

func TestBookingServiceClearAllEmptiesEveryCollection(t *testing.T) {
	store := newMemoryStore()
	svc, notifier := newTestBookingService(store)
	ctx := context.Background()
	seedAllCollections(t, svc)

	removed, err := svc.ClearAll(ctx)
	require.NoError(t, err)
	for _, c := range models.Collections() {
		assert.Equal(t, 0, store.count(c), string(c))
		assert.Equal(t, int64(1), removed[c], string(c))
	}
	assert.Subset(t, notifier.touched, models.Collections())
}

func TestBookingServiceClearAllIsAllOrNothing(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newTestBookingService(store)
	seedAllCollections(t, svc)
	store.clearFailAfter = 2

	_, err := svc.ClearAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	for _, c := range models.Collections() {
		assert.Equal(t, 1, store.count(c), "collection %s was partially cleared", c)
	}
}

func TestBookingServiceBatchUpsertFailureWritesNothing(t *testing.T) {
	store := newMemoryStore()
	store.batchErr = errors.New("quota exceeded")
	svc, notifier := newTestBookingService(store)

	err := svc.BatchUpsert(context.Background(), []CellWrite{
		{Collection: models.CollectionFixed, Key: slotkey.SlotKey{Resource: "gangdang", Day: "mon", Period: "1"}, Value: "1-1"},
		{Collection: models.CollectionTeacherSchedules, Key: slotkey.SlotKey{Resource: "연구", Day: "mon", Period: "2"}, Value: "2-1"},
	})
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	assert.Equal(t, 0, store.count(models.CollectionFixed))
	assert.Empty(t, notifier.touched)
}

func TestBookingServiceSnapshot(t *testing.T) {
	svc, _ := newTestBookingService(newMemoryStore())
	seedAllCollections(t, svc)
	ctx := context.Background()

	fixed, err := svc.Snapshot(ctx, models.CollectionFixed)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed.Len())
	assert.Nil(t, fixed.Reservations)

	reservations, err := svc.Snapshot(ctx, models.CollectionReservations)
	require.NoError(t, err)
	require.Len(t, reservations.Reservations, 1)
	assert.Equal(t, "2026-03-02-과학실-3", reservations.Reservations[0].ID)
}

func seedAllCollections(t *testing.T, svc *BookingService) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionFixed, slotkey.SlotKey{Resource: "playground", Day: "mon", Period: "1"}, "3-1"))
	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionSubjects, slotkey.SlotKey{Resource: "3-1", Day: "mon", Period: "1"}, "체육"))
	require.NoError(t, svc.UpsertOrClear(ctx, models.CollectionTeacherSchedules, slotkey.SlotKey{Resource: "스포츠강사", Day: "mon", Period: "1"}, "3-1"))
	_, err := svc.CreateReservation(ctx, models.ReservationPayload{Room: "과학실", Date: "2026-03-02", Period: "3", ClassName: "4-1"})
	require.NoError(t, err)
}
