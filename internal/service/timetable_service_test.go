package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

func newSeededTimetable(t *testing.T) (*TimetableService, *BookingService) {
	t.Helper()
	booking, _ := newTestBookingService(newMemoryStore())
	ctx := context.Background()
	cells := []struct {
		c     models.Collection
		key   slotkey.SlotKey
		value string
	}{
		{models.CollectionFixed, slotkey.SlotKey{Resource: "playground", Day: "mon", Period: "1"}, "3-1"},
		{models.CollectionFixed, slotkey.SlotKey{Resource: "science", Day: "tue", Period: "3"}, "3-1"},
		{models.CollectionSubjects, slotkey.SlotKey{Resource: "3-1", Day: "mon", Period: "1"}, "체육"},
		{models.CollectionSubjects, slotkey.SlotKey{Resource: "3-1", Day: "tue", Period: "3"}, "과학"},
		{models.CollectionTeacherSchedules, slotkey.SlotKey{Resource: "스포츠강사", Day: "mon", Period: "1"}, "3-1"},
		{models.CollectionTeacherSchedules, slotkey.SlotKey{Resource: "스포츠강사", Day: "mon", Period: "2"}, "4-1"},
	}
	for _, c := range cells {
		require.NoError(t, booking.UpsertOrClear(ctx, c.c, c.key, c.value))
	}
	for _, r := range []models.ReservationPayload{
		{Room: "과학실", Date: "2026-03-04", Period: "5", ClassName: "6-1"},
		{Room: "과학실", Date: "2026-03-02", Period: "2", ClassName: "5-1"},
		{Room: "과학실", Date: "2026-03-10", Period: "1", ClassName: "5-2"},
		{Room: "강당", Date: "2026-03-02", Period: "1", ClassName: "1-1"},
	} {
		_, err := booking.CreateReservation(ctx, r)
		require.NoError(t, err)
	}
	return NewTimetableService(booking), booking
}

func cellAt(rows []models.GridRow, day, period string) models.Cell {
	for _, row := range rows {
		if row.Period != period {
			continue
		}
		for _, c := range row.Cells {
			if c.Day == day {
				return c
			}
		}
	}
	return models.Cell{}
}

func TestRoomWeekView(t *testing.T) {
	svc, _ := newSeededTimetable(t)

	view, err := svc.RoomWeek(context.Background(), "과학실", "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, "science", view.RoomID)
	assert.Equal(t, "2026-03-02", view.WeekStart)
	assert.Equal(t, []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}, view.Dates)
	require.Len(t, view.Reservations, 2)
	assert.Equal(t, "5-1", view.Reservations[0].ClassName)

	assert.Equal(t, "3-1", cellAt(view.Rows, "tue", "3").Value)
	assert.Equal(t, "6-1", cellAt(view.Rows, "wed", "5").Note)
	assert.Len(t, view.Rows, 7)
}

func TestRoomWeekLeavesOutWeekendReservations(t *testing.T) {
	svc, booking := newSeededTimetable(t)
	_, err := booking.CreateReservation(context.Background(), models.ReservationPayload{Room: "과학실", Date: "2026-03-07", Period: "5", ClassName: "6-2"})
	require.NoError(t, err)

	view, err := svc.RoomWeek(context.Background(), "science", "2026-03-03")
	require.NoError(t, err)
	require.Len(t, view.Reservations, 2)
	assert.Equal(t, "5-1", cellAt(view.Rows, "mon", "2").Note)
	assert.Empty(t, cellAt(view.Rows, "fri", "5").Note)
}

func TestRoomWeekSundayBelongsToPreviousWeek(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	view, err := svc.RoomWeek(context.Background(), "science", "2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", view.WeekStart)
}

func TestRoomWeekDefaultsToCurrentWeek(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC) }
	view, err := svc.RoomWeek(context.Background(), "science", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", view.WeekStart)
	require.Len(t, view.Reservations, 1)
	assert.Equal(t, "5-2", view.Reservations[0].ClassName)
}

func TestRoomWeekUnknownRoom(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	_, err := svc.RoomWeek(context.Background(), "pool", "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassTimetableShowsRoomAndSubject(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	view, err := svc.ClassTimetable(context.Background(), "3-1")
	require.NoError(t, err)

	mon := cellAt(view.Rows, "mon", "1")
	assert.Equal(t, "체육", mon.Value)
	assert.Equal(t, "운동장", mon.Room)
	tue := cellAt(view.Rows, "tue", "3")
	assert.Equal(t, "과학실", tue.Room)
	assert.Empty(t, cellAt(view.Rows, "wed", "1").Value)
}

func TestTeacherTimetableHighlightsPlaygroundMatches(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	view, err := svc.TeacherTimetable(context.Background(), "스포츠강사")
	require.NoError(t, err)

	assert.True(t, cellAt(view.Rows, "mon", "1").Highlight)
	assert.False(t, cellAt(view.Rows, "mon", "2").Highlight)
	assert.Equal(t, "4-1", cellAt(view.Rows, "mon", "2").Value)
}

func TestReservationStatusGroupsByRoom(t *testing.T) {
	svc, _ := newSeededTimetable(t)
	status, err := svc.ReservationStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 6)

	assert.Equal(t, "강당", status[0].Room)
	assert.Equal(t, 1, status[0].Count)
	science := status[2]
	assert.Equal(t, "과학실", science.Room)
	require.Equal(t, 3, science.Count)
	assert.Equal(t, []string{"2026-03-02", "2026-03-04", "2026-03-10"},
		[]string{science.Reservations[0].Date, science.Reservations[1].Date, science.Reservations[2].Date})
	assert.NotNil(t, status[5].Reservations)
}
