package dto

// Skip reasons reported for import rows that could not be resolved.
const (
	SkipTooFewColumns  = "too_few_columns"
	SkipMalformedLine  = "malformed_line"
	SkipUnknownDay     = "unknown_day"
	SkipUnknownPeriod  = "unknown_period"
	SkipEmptyContent   = "empty_content"
	SkipUnknownRoom    = "unknown_room"
	SkipUnknownTeacher = "unknown_teacher"
	SkipUnsupported    = "unsupported_type"
)

// RowSkip describes one input line that produced no write.
type RowSkip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// ImportReport summarises a bulk import. Skipped rows never fail the import.
type ImportReport struct {
	Rows             int       `json:"rows"`
	Applied          int       `json:"applied"`
	FixedBookings    int       `json:"fixedBookings"`
	TeacherSchedules int       `json:"teacherSchedules"`
	Skipped          int       `json:"skipped"`
	Encoding         string    `json:"encoding"`
	Skips            []RowSkip `json:"skips,omitempty"`
}
