// Package catalog holds the closed sets of rooms, days, periods, classes and
// roving teachers, together with their display labels.
//
// Lookups never fail loudly: a miss returns ok=false and callers treat it as
// an unparseable value.
package catalog

import (
	"sort"
	"strings"
	"time"
)

// Entry pairs a canonical identifier with its display label.
type Entry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Period ids.
const (
	PeriodLunch = "lunch"
)

// SportsInstructor is the roving teacher whose schedule mirrors the playground bookings.
const SportsInstructor = "스포츠강사"

// PlaygroundRoom is the room compared against the sports instructor's schedule.
const PlaygroundRoom = "playground"

var rooms = []Entry{
	{ID: "gangdang", Label: "강당"},
	{ID: "playground", Label: "운동장"},
	{ID: "science", Label: "과학실"},
	{ID: "library", Label: "도서실"},
	{ID: "imagination", Label: "상상놀이터"},
	{ID: "computer", Label: "컴퓨터실"},
}

var days = []Entry{
	{ID: "mon", Label: "월"},
	{ID: "tue", Label: "화"},
	{ID: "wed", Label: "수"},
	{ID: "thu", Label: "목"},
	{ID: "fri", Label: "금"},
}

var periods = []Entry{
	{ID: "1", Label: "1교시"},
	{ID: "2", Label: "2교시"},
	{ID: "3", Label: "3교시"},
	{ID: "4", Label: "4교시"},
	{ID: PeriodLunch, Label: "점심"},
	{ID: "5", Label: "5교시"},
	{ID: "6", Label: "6교시"},
}

var classes = []string{
	"1-1", "1-2",
	"2-1", "2-2",
	"3-1", "3-2",
	"4-1", "4-2", "4-3",
	"5-1", "5-2",
	"6-1", "6-2", "6-3",
}

var teachers = []string{"교무", "연구", "생활", SportsInstructor, "기초학력", "생활지원"}

var (
	roomByID    = indexByID(rooms)
	roomByLabel = indexByLabel(rooms)
	dayByID     = indexByID(days)
	dayByLabel  = indexByLabel(days)
	periodByID  = indexByID(periods)
	periodLabel = indexByLabel(periods)
	periodRank  = rankPeriods(periods)
	classSet    = toSet(classes)
	teacherSet  = toSet(teachers)
)

// Rooms returns the rooms in display order.
func Rooms() []Entry { return append([]Entry(nil), rooms...) }

// Days returns Monday through Friday.
func Days() []Entry { return append([]Entry(nil), days...) }

// Periods returns the periods in chronological order.
func Periods() []Entry { return append([]Entry(nil), periods...) }

// Classes returns the class-section labels.
func Classes() []string { return append([]string(nil), classes...) }

// Teachers returns the roving-teacher labels.
func Teachers() []string { return append([]string(nil), teachers...) }

// RoomLabel maps a room id to its display label.
func RoomLabel(id string) (string, bool) {
	label, ok := roomByID[id]
	return label, ok
}

// RoomID maps a room display label to its id.
func RoomID(label string) (string, bool) {
	id, ok := roomByLabel[label]
	return id, ok
}

// DayLabel maps a day id to its display label.
func DayLabel(id string) (string, bool) {
	label, ok := dayByID[id]
	return label, ok
}

// DayID maps a short day label ("월") to its id.
func DayID(label string) (string, bool) {
	id, ok := dayByLabel[label]
	return id, ok
}

// PeriodLabel maps a period id to its display label.
func PeriodLabel(id string) (string, bool) {
	label, ok := periodByID[id]
	return label, ok
}

// PeriodID maps a period label ("3교시") to its id.
func PeriodID(label string) (string, bool) {
	id, ok := periodLabel[label]
	return id, ok
}

// PeriodRank returns the 1-based chronological position of a period.
func PeriodRank(id string) (int, bool) {
	rank, ok := periodRank[id]
	return rank, ok
}

// IsRoom reports whether id is a room id.
func IsRoom(id string) bool {
	_, ok := roomByID[id]
	return ok
}

// IsDay reports whether id is a day id.
func IsDay(id string) bool {
	_, ok := dayByID[id]
	return ok
}

// IsPeriod reports whether id is a period id.
func IsPeriod(id string) bool {
	_, ok := periodByID[id]
	return ok
}

// IsClass reports whether label is a class-section label.
func IsClass(label string) bool {
	_, ok := classSet[label]
	return ok
}

// IsTeacher reports whether label is a roving-teacher label.
func IsTeacher(label string) bool {
	_, ok := teacherSet[label]
	return ok
}

// IsRoomLabel reports whether label is a room display label.
func IsRoomLabel(label string) bool {
	_, ok := roomByLabel[label]
	return ok
}

// DayFromWeekday maps a weekday onto a day id; weekends have none.
func DayFromWeekday(w time.Weekday) (string, bool) {
	if w < time.Monday || w > time.Friday {
		return "", false
	}
	return days[int(w)-1].ID, true
}

// WeekdayOf returns the time.Weekday for a day id.
func WeekdayOf(id string) (time.Weekday, bool) {
	for i, d := range days {
		if d.ID == id {
			return time.Weekday(i + 1), true
		}
	}
	return time.Sunday, false
}

// Ranked is implemented by anything that can be ordered chronologically by date and period.
type Ranked interface {
	SortDate() string
	SortPeriod() string
	SortRoom() string
}

// SortByDateAndPeriod orders items by ISO date, then period rank, then room label.
// Unknown periods sort after known ones.
func SortByDateAndPeriod[T Ranked](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SortDate() != b.SortDate() {
			return a.SortDate() < b.SortDate()
		}
		ra, rb := rankOrMax(a.SortPeriod()), rankOrMax(b.SortPeriod())
		if ra != rb {
			return ra < rb
		}
		return strings.Compare(a.SortRoom(), b.SortRoom()) < 0
	})
}

func rankOrMax(id string) int {
	if rank, ok := periodRank[id]; ok {
		return rank
	}
	return len(periods) + 1
}

func indexByID(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.ID] = e.Label
	}
	return out
}

func indexByLabel(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Label] = e.ID
	}
	return out
}

func rankPeriods(entries []Entry) map[string]int {
	out := make(map[string]int, len(entries))
	for i, e := range entries {
		out[e.ID] = i + 1
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
