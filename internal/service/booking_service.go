package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type recordStore interface {
	List(ctx context.Context, collection models.Collection) ([]models.Record, error)
	Exists(ctx context.Context, collection models.Collection, key string) (bool, error)
	Put(ctx context.Context, collection models.Collection, key string, payload []byte) error
	PutIfAbsent(ctx context.Context, collection models.Collection, key string, payload []byte) (bool, error)
	Delete(ctx context.Context, collection models.Collection, key string) (bool, error)
	PutBatch(ctx context.Context, writes []models.RecordWrite) error
	Clear(ctx context.Context, collections []models.Collection) (map[models.Collection]int64, error)
}

// ChangeNotifier is told about every collection a successful write touched.
type ChangeNotifier interface {
	Notify(collection models.Collection)
}

// CellWrite is one weekly cell assignment inside a batch.
type CellWrite struct {
	Collection models.Collection
	Key        slotkey.SlotKey
	Value      string
}

// BookingService is the persistence facade over the four shared collections.
type BookingService struct {
	store    recordStore
	notifier ChangeNotifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(store recordStore, metrics *MetricsService, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{store: store, metrics: metrics, logger: logger}
}

// SetNotifier registers the listener for successful writes.
func (s *BookingService) SetNotifier(n ChangeNotifier) {
	s.notifier = n
}

// UpsertOrClear writes value at key, or removes the record when value is blank.
func (s *BookingService) UpsertOrClear(ctx context.Context, collection models.Collection, key slotkey.SlotKey, value string) error {
	if err := validateCell(collection, key); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return s.remove(ctx, collection, key.String())
	}

	payload, err := json.Marshal(models.CellValue{Val: value})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode cell")
	}

	start := time.Now()
	err = s.store.Put(ctx, collection, key.String(), payload)
	s.metrics.ObserveStoreOperation("put", collection, time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to save cell", zap.String("collection", string(collection)), zap.String("key", key.String()), zap.Error(err))
		return appErrors.Persistence(err, "failed to save timetable cell")
	}
	s.notify(collection)
	return nil
}

// DeleteCell removes a weekly cell. Removing an absent cell succeeds.
func (s *BookingService) DeleteCell(ctx context.Context, collection models.Collection, key slotkey.SlotKey) error {
	if err := validateCell(collection, key); err != nil {
		return err
	}
	return s.remove(ctx, collection, key.String())
}

// DeleteReservation removes an extra reservation. Removing an absent reservation succeeds.
func (s *BookingService) DeleteReservation(ctx context.Context, key slotkey.ReservationKey) error {
	return s.remove(ctx, models.CollectionReservations, key.String())
}

// CreateReservation stores a reservation under its derived key, overwriting any record already there.
func (s *BookingService) CreateReservation(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, error) {
	key, raw, err := encodeReservation(payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.store.Put(ctx, models.CollectionReservations, key, raw)
	s.metrics.ObserveStoreOperation("put", models.CollectionReservations, time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to save reservation", zap.String("key", key), zap.Error(err))
		return nil, appErrors.Persistence(err, "failed to save reservation")
	}
	s.notify(models.CollectionReservations)
	return toReservation(key, payload), nil
}

// CreateReservationIfAbsent stores a reservation only when its derived key is free.
// The boolean is false when another reservation already holds the slot.
func (s *BookingService) CreateReservationIfAbsent(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, bool, error) {
	key, raw, err := encodeReservation(payload)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	inserted, err := s.store.PutIfAbsent(ctx, models.CollectionReservations, key, raw)
	s.metrics.ObserveStoreOperation("put_if_absent", models.CollectionReservations, time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to save reservation", zap.String("key", key), zap.Error(err))
		return nil, false, appErrors.Persistence(err, "failed to save reservation")
	}
	if !inserted {
		return nil, false, nil
	}
	s.notify(models.CollectionReservations)
	return toReservation(key, payload), true, nil
}

// Reservations lists every extra reservation ordered by date, period and room.
func (s *BookingService) Reservations(ctx context.Context) ([]models.Reservation, error) {
	records, err := s.list(ctx, models.CollectionReservations)
	if err != nil {
		return nil, err
	}
	return decodeReservations(records, s.logger), nil
}

// Cells returns the key to value map of a weekly collection.
func (s *BookingService) Cells(ctx context.Context, collection models.Collection) (map[string]string, error) {
	records, err := s.list(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeCells(records, s.logger), nil
}

// Snapshot loads the full current content of a collection.
func (s *BookingService) Snapshot(ctx context.Context, collection models.Collection) (*models.Snapshot, error) {
	records, err := s.list(ctx, collection)
	if err != nil {
		return nil, err
	}
	snapshot := &models.Snapshot{Collection: collection, At: time.Now().UTC()}
	if collection == models.CollectionReservations {
		snapshot.Reservations = decodeReservations(records, s.logger)
	} else {
		snapshot.Cells = decodeCells(records, s.logger)
	}
	return snapshot, nil
}

// BatchUpsert commits all cell writes in one transaction. Blank values are not allowed in a batch.
func (s *BookingService) BatchUpsert(ctx context.Context, writes []CellWrite) error {
	if len(writes) == 0 {
		return nil
	}

	records := make([]models.RecordWrite, 0, len(writes))
	touched := make(map[models.Collection]struct{})
	for _, w := range writes {
		if err := validateCell(w.Collection, w.Key); err != nil {
			return err
		}
		value := strings.TrimSpace(w.Value)
		if value == "" {
			return appErrors.Clone(appErrors.ErrValidation, "batch writes require a value")
		}
		payload, err := json.Marshal(models.CellValue{Val: value})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode cell")
		}
		records = append(records, models.RecordWrite{Collection: w.Collection, Key: w.Key.String(), Payload: payload})
		touched[w.Collection] = struct{}{}
	}

	start := time.Now()
	err := s.store.PutBatch(ctx, records)
	s.metrics.ObserveStoreOperation("batch", "", time.Since(start), err)
	if err != nil {
		s.logger.Error("batch commit failed", zap.Int("writes", len(records)), zap.Error(err))
		return appErrors.Persistence(err, "failed to commit batch")
	}
	for _, c := range models.Collections() {
		if _, ok := touched[c]; ok {
			s.notify(c)
		}
	}
	return nil
}

// ClearAll empties every collection in one transaction. Nothing is removed when it fails.
func (s *BookingService) ClearAll(ctx context.Context) (map[models.Collection]int64, error) {
	start := time.Now()
	removed, err := s.store.Clear(ctx, models.Collections())
	s.metrics.ObserveStoreOperation("clear", "", time.Since(start), err)
	if err != nil {
		s.logger.Error("clear all failed", zap.Error(err))
		return nil, appErrors.Persistence(err, "failed to clear timetable data")
	}
	for _, c := range models.Collections() {
		s.notify(c)
	}
	return removed, nil
}

func (s *BookingService) remove(ctx context.Context, collection models.Collection, key string) error {
	if exists, err := s.store.Exists(ctx, collection, key); err != nil {
		s.logger.Debug("existence probe failed", zap.String("collection", string(collection)), zap.String("key", key), zap.Error(err))
	} else if !exists {
		s.logger.Debug("deleting absent record", zap.String("collection", string(collection)), zap.String("key", key))
	}

	start := time.Now()
	removed, err := s.store.Delete(ctx, collection, key)
	s.metrics.ObserveStoreOperation("delete", collection, time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to delete record", zap.String("collection", string(collection)), zap.String("key", key), zap.Error(err))
		return appErrors.Persistence(err, "failed to delete record")
	}
	if removed {
		s.notify(collection)
	}
	return nil
}

func (s *BookingService) list(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	start := time.Now()
	records, err := s.store.List(ctx, collection)
	s.metrics.ObserveStoreOperation("list", collection, time.Since(start), err)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load "+string(collection))
	}
	return records, nil
}

func (s *BookingService) notify(collection models.Collection) {
	if s.notifier != nil {
		s.notifier.Notify(collection)
	}
}

func validateCell(collection models.Collection, key slotkey.SlotKey) error {
	if !catalog.IsDay(key.Day) || !catalog.IsPeriod(key.Period) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown day or period")
	}
	var ok bool
	switch collection {
	case models.CollectionFixed:
		ok = catalog.IsRoom(key.Resource) || catalog.IsTeacher(key.Resource)
	case models.CollectionSubjects:
		ok = catalog.IsClass(key.Resource)
	case models.CollectionTeacherSchedules:
		ok = catalog.IsTeacher(key.Resource)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "collection does not hold weekly cells")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown resource "+key.Resource+" for "+string(collection))
	}
	return nil
}

func encodeReservation(payload models.ReservationPayload) (string, []byte, error) {
	key := slotkey.ReservationKey{Date: payload.Date, Room: payload.Room, Period: payload.Period}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode reservation")
	}
	return key.String(), raw, nil
}

func toReservation(id string, p models.ReservationPayload) *models.Reservation {
	return &models.Reservation{ID: id, Room: p.Room, Date: p.Date, Period: p.Period, ClassName: p.ClassName}
}

func decodeCells(records []models.Record, logger *zap.Logger) map[string]string {
	cells := make(map[string]string, len(records))
	for _, r := range records {
		var cell models.CellValue
		if err := json.Unmarshal(r.Payload, &cell); err != nil {
			logger.Warn("skipping unreadable cell", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		if cell.Val == "" {
			continue
		}
		cells[r.Key] = cell.Val
	}
	return cells
}

func decodeReservations(records []models.Record, logger *zap.Logger) []models.Reservation {
	out := make([]models.Reservation, 0, len(records))
	for _, r := range records {
		var p models.ReservationPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			logger.Warn("skipping unreadable reservation", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		out = append(out, *toReservation(r.Key, p))
	}
	catalog.SortByDateAndPeriod(out)
	return out
}
