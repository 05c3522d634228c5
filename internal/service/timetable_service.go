package service

import (
	"context"
	"strings"
	"time"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type timetableSource interface {
	Cells(ctx context.Context, collection models.Collection) (map[string]string, error)
	Reservations(ctx context.Context) ([]models.Reservation, error)
}

// TimetableService derives the room, class, teacher and reservation views from the stored collections.
type TimetableService struct {
	source timetableSource
	now    func() time.Time
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(source timetableSource) *TimetableService {
	return &TimetableService{source: source, now: time.Now}
}

// RoomWeek returns a room's fixed bookings together with the reservations of the week containing date.
// An empty date selects the current week.
func (s *TimetableService) RoomWeek(ctx context.Context, room, date string) (*models.RoomWeekView, error) {
	roomID, label, ok := resolveRoom(room)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown room "+room)
	}

	day := s.now().UTC()
	if date != "" {
		parsed, err := time.ParseInLocation(slotkey.DateLayout, date, time.UTC)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
		}
		day = parsed
	}
	monday := weekStart(day)

	fixed, err := s.source.Cells(ctx, models.CollectionFixed)
	if err != nil {
		return nil, err
	}
	reservations, err := s.source.Reservations(ctx)
	if err != nil {
		return nil, err
	}

	days := catalog.Days()
	dates := make([]string, len(days))
	for i := range days {
		dates[i] = monday.AddDate(0, 0, i).Format(slotkey.DateLayout)
	}
	weekEnd := monday.AddDate(0, 0, 7)

	view := &models.RoomWeekView{
		RoomID:       roomID,
		RoomLabel:    label,
		WeekStart:    dates[0],
		Dates:        dates,
		Reservations: []models.Reservation{},
	}
	reserved := make(map[string]string)
	for _, r := range reservations {
		if r.Room != label {
			continue
		}
		on, err := time.ParseInLocation(slotkey.DateLayout, r.Date, time.UTC)
		if err != nil || on.Before(monday) || !on.Before(weekEnd) {
			continue
		}
		dayID, weekday := catalog.DayFromWeekday(on.Weekday())
		if !weekday {
			continue
		}
		view.Reservations = append(view.Reservations, r)
		reserved[dayID+"/"+r.Period] = r.ClassName
	}

	view.Rows = buildGrid(func(day catalog.Entry, _ int, period string) models.Cell {
		key := slotkey.SlotKey{Resource: roomID, Day: day.ID, Period: period}
		cell := models.Cell{Value: fixed[key.String()]}
		if class, ok := reserved[day.ID+"/"+period]; ok {
			cell.Note = class
		}
		return cell
	})
	return view, nil
}

// ClassTimetable returns a class's subjects and the rooms it holds through fixed bookings.
func (s *TimetableService) ClassTimetable(ctx context.Context, class string) (*models.ClassView, error) {
	if !catalog.IsClass(class) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown class "+class)
	}
	fixed, subjects, err := s.classSources(ctx)
	if err != nil {
		return nil, err
	}
	view := buildClassView(class, fixed, subjects)
	return &view, nil
}

// ClassTimetables returns the views of every class in catalog order.
func (s *TimetableService) ClassTimetables(ctx context.Context) ([]models.ClassView, error) {
	fixed, subjects, err := s.classSources(ctx)
	if err != nil {
		return nil, err
	}
	classes := catalog.Classes()
	views := make([]models.ClassView, 0, len(classes))
	for _, class := range classes {
		views = append(views, buildClassView(class, fixed, subjects))
	}
	return views, nil
}

// TeacherTimetable returns a roving teacher's schedule. For the sports instructor a cell is
// highlighted when the playground holds the same class in the same slot.
func (s *TimetableService) TeacherTimetable(ctx context.Context, teacher string) (*models.TeacherView, error) {
	if !catalog.IsTeacher(teacher) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown teacher "+teacher)
	}
	schedules, err := s.source.Cells(ctx, models.CollectionTeacherSchedules)
	if err != nil {
		return nil, err
	}
	var fixed map[string]string
	if teacher == catalog.SportsInstructor {
		if fixed, err = s.source.Cells(ctx, models.CollectionFixed); err != nil {
			return nil, err
		}
	}

	rows := buildGrid(func(day catalog.Entry, _ int, period string) models.Cell {
		value := schedules[slotkey.SlotKey{Resource: teacher, Day: day.ID, Period: period}.String()]
		cell := models.Cell{Value: value}
		if value != "" && fixed != nil {
			playground := slotkey.SlotKey{Resource: catalog.PlaygroundRoom, Day: day.ID, Period: period}
			cell.Highlight = fixed[playground.String()] == value
		}
		return cell
	})
	return &models.TeacherView{Teacher: teacher, Rows: rows}, nil
}

// ReservationStatus groups reservations by room label in catalog room order.
func (s *TimetableService) ReservationStatus(ctx context.Context) ([]models.RoomReservations, error) {
	reservations, err := s.source.Reservations(ctx)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[string][]models.Reservation)
	for _, r := range reservations {
		byRoom[r.Room] = append(byRoom[r.Room], r)
	}

	out := make([]models.RoomReservations, 0, len(byRoom))
	for _, room := range catalog.Rooms() {
		list := byRoom[room.Label]
		delete(byRoom, room.Label)
		catalog.SortByDateAndPeriod(list)
		out = append(out, models.RoomReservations{Room: room.Label, Count: len(list), Reservations: nonNil(list)})
	}
	// reservations whose room label is no longer in the catalog
	for room, list := range byRoom {
		catalog.SortByDateAndPeriod(list)
		out = append(out, models.RoomReservations{Room: room, Count: len(list), Reservations: list})
	}
	return out, nil
}

func (s *TimetableService) classSources(ctx context.Context) (map[string]string, map[string]string, error) {
	fixed, err := s.source.Cells(ctx, models.CollectionFixed)
	if err != nil {
		return nil, nil, err
	}
	subjects, err := s.source.Cells(ctx, models.CollectionSubjects)
	if err != nil {
		return nil, nil, err
	}
	return fixed, subjects, nil
}

func buildClassView(class string, fixed, subjects map[string]string) models.ClassView {
	rooms := make(map[string]string)
	for raw, occupant := range fixed {
		if occupant != class {
			continue
		}
		key, ok := slotkey.ParseSlotKey(raw)
		if !ok {
			continue
		}
		label, ok := catalog.RoomLabel(key.Resource)
		if !ok {
			continue
		}
		slot := key.Day + "/" + key.Period
		if existing, taken := rooms[slot]; !taken || strings.Compare(label, existing) < 0 {
			rooms[slot] = label
		}
	}

	rows := buildGrid(func(day catalog.Entry, _ int, period string) models.Cell {
		return models.Cell{
			Value: subjects[slotkey.SlotKey{Resource: class, Day: day.ID, Period: period}.String()],
			Room:  rooms[day.ID+"/"+period],
		}
	})
	return models.ClassView{Class: class, Rows: rows}
}

func buildGrid(fill func(day catalog.Entry, dayIdx int, period string) models.Cell) []models.GridRow {
	days := catalog.Days()
	periods := catalog.Periods()
	rows := make([]models.GridRow, 0, len(periods))
	for _, p := range periods {
		row := models.GridRow{Period: p.ID, PeriodLabel: p.Label, Cells: make([]models.Cell, 0, len(days))}
		for i, d := range days {
			cell := fill(d, i, p.ID)
			cell.Day = d.ID
			cell.Period = p.ID
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func resolveRoom(ref string) (string, string, bool) {
	if label, ok := catalog.RoomLabel(ref); ok {
		return ref, label, true
	}
	if id, ok := catalog.RoomID(ref); ok {
		return id, ref, true
	}
	return "", "", false
}

// weekStart returns the Monday of the week containing day; Sunday belongs to the week before.
func weekStart(day time.Time) time.Time {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

func nonNil(list []models.Reservation) []models.Reservation {
	if list == nil {
		return []models.Reservation{}
	}
	return list
}
