package models

// Cell is one day/period position in a weekly grid.
type Cell struct {
	Day       string `json:"day"`
	Period    string `json:"period"`
	Value     string `json:"value,omitempty"`
	Room      string `json:"room,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Note      string `json:"note,omitempty"`
}

// GridRow holds the cells of one period across the week.
type GridRow struct {
	Period      string `json:"period"`
	PeriodLabel string `json:"periodLabel"`
	Cells       []Cell `json:"cells"`
}

// RoomWeekView combines the weekly fixed bookings of a room with the dated reservations of one week.
type RoomWeekView struct {
	RoomID       string        `json:"roomId"`
	RoomLabel    string        `json:"roomLabel"`
	WeekStart    string        `json:"weekStart"`
	Dates        []string      `json:"dates"`
	Rows         []GridRow     `json:"rows"`
	Reservations []Reservation `json:"reservations"`
}

// ClassView shows subjects per cell and the room a class occupies through fixed bookings.
type ClassView struct {
	Class string    `json:"class"`
	Rows  []GridRow `json:"rows"`
}

// TeacherView shows a roving teacher's classes per cell.
type TeacherView struct {
	Teacher string    `json:"teacher"`
	Rows    []GridRow `json:"rows"`
}

// RoomReservations groups reservations of one room, sorted chronologically.
type RoomReservations struct {
	Room         string        `json:"room"`
	Count        int           `json:"count"`
	Reservations []Reservation `json:"reservations"`
}
