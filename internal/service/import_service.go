package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

// Import encodings.
const (
	EncodingAuto  = "auto"
	EncodingEUCKR = "euc-kr"
	EncodingUTF8  = "utf-8"
)

// Import record types.
const (
	RecordTypeFixed   = "기초시간표"
	RecordTypeTeacher = "교담시간표"
)

// maxImportLine caps a single physical line of an import file.
const maxImportLine = 1024 * 1024

// teacherAliases maps legacy names found in exported sheets to catalog teacher labels.
var teacherAliases = map[string]string{
	"장현수": catalog.SportsInstructor,
}

type batchWriter interface {
	BatchUpsert(ctx context.Context, writes []CellWrite) error
}

// ImportService loads fixed bookings and teacher schedules from legacy CSV exports.
type ImportService struct {
	store    batchWriter
	metrics  *MetricsService
	logger   *zap.Logger
	encoding string
}

// NewImportService constructs an ImportService with the default input encoding.
func NewImportService(store batchWriter, metrics *MetricsService, logger *zap.Logger, encoding string) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if encoding == "" {
		encoding = EncodingAuto
	}
	return &ImportService{store: store, metrics: metrics, logger: logger, encoding: encoding}
}

// Import reads the whole input, resolves every row and commits the resolved rows in one batch.
// Unresolvable rows are skipped and listed in the report; they never fail the import.
func (s *ImportService) Import(ctx context.Context, r io.Reader, encoding string) (*dto.ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read import file")
	}
	if encoding == "" {
		encoding = s.encoding
	}
	text, used, err := decodeImport(raw, encoding)
	if err != nil {
		return nil, err
	}

	writes, report := parseImport(text)
	report.Encoding = used

	if err := s.store.BatchUpsert(ctx, writes); err != nil {
		s.metrics.RecordImportRows("failed", len(writes))
		return nil, err
	}

	s.metrics.RecordImportRows("applied", report.Applied)
	s.metrics.RecordImportRows("skipped", report.Skipped)
	s.logger.Info("import committed",
		zap.Int("rows", report.Rows),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped),
		zap.String("encoding", used))
	return report, nil
}

func decodeImport(raw []byte, encoding string) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case EncodingUTF8, "utf8":
		return bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")), EncodingUTF8, nil
	case EncodingEUCKR, "euckr", "cp949":
		return decodeEUCKR(raw)
	case EncodingAuto, "":
		if utf8.Valid(raw) {
			return bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")), EncodingUTF8, nil
		}
		return decodeEUCKR(raw)
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported encoding %q", encoding))
	}
}

func decodeEUCKR(raw []byte) ([]byte, string, error) {
	text, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not valid EUC-KR")
	}
	return text, EncodingEUCKR, nil
}

func parseImport(text []byte) ([]CellWrite, *dto.ImportReport) {
	report := &dto.ImportReport{}
	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	// later rows overwrite earlier rows for the same key, like sequential sets inside one batch
	index := make(map[string]int)
	var writes []CellWrite
	skip := func(line int, reason, value string) {
		report.Skipped++
		report.Skips = append(report.Skips, dto.RowSkip{Line: line, Reason: reason, Value: value})
	}

	line := 0
	for scanner.Scan() {
		line++
		columns := splitLine(strings.TrimSuffix(scanner.Text(), "\r"))
		if blankRow(columns) {
			continue
		}
		report.Rows++

		write, reason, value := resolveRow(columns)
		if reason != "" {
			skip(line, reason, value)
			continue
		}

		id := string(write.Collection) + "/" + write.Key.String()
		if i, ok := index[id]; ok {
			writes[i] = write
		} else {
			index[id] = len(writes)
			writes = append(writes, write)
		}
		report.Applied++
		if write.Collection == models.CollectionFixed {
			report.FixedBookings++
		} else {
			report.TeacherSchedules++
		}
	}
	if err := scanner.Err(); err != nil {
		report.Rows++
		skip(line+1, dto.SkipMalformedLine, err.Error())
	}
	return writes, report
}

// splitLine reads one physical line as a CSV record. A line that is not well-formed CSV,
// such as one with a stray quote, falls back to a plain comma split so it cannot swallow
// the lines after it.
func splitLine(line string) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if columns, err := reader.Read(); err == nil {
		return columns
	}
	return strings.Split(line, ",")
}

func resolveRow(columns []string) (CellWrite, string, string) {
	if len(columns) < 5 {
		return CellWrite{}, dto.SkipTooFewColumns, strings.Join(columns, ",")
	}
	for i := range columns {
		columns[i] = cleanField(columns[i])
	}
	name, dayLabel, periodLabel, content, recordType := columns[0], columns[1], columns[2], columns[3], columns[4]

	day, ok := catalog.DayID(strings.Replace(dayLabel, "요일", "", 1))
	if !ok {
		return CellWrite{}, dto.SkipUnknownDay, dayLabel
	}
	period, ok := resolvePeriod(periodLabel)
	if !ok {
		return CellWrite{}, dto.SkipUnknownPeriod, periodLabel
	}
	if content == "" {
		return CellWrite{}, dto.SkipEmptyContent, ""
	}

	switch recordType {
	case RecordTypeFixed:
		room, ok := catalog.RoomID(name)
		if !ok {
			return CellWrite{}, dto.SkipUnknownRoom, name
		}
		return CellWrite{
			Collection: models.CollectionFixed,
			Key:        slotkey.SlotKey{Resource: room, Day: day, Period: period},
			Value:      content,
		}, "", ""
	case RecordTypeTeacher:
		teacher := name
		if alias, ok := teacherAliases[name]; ok {
			teacher = alias
		}
		if !catalog.IsTeacher(teacher) {
			return CellWrite{}, dto.SkipUnknownTeacher, name
		}
		return CellWrite{
			Collection: models.CollectionTeacherSchedules,
			Key:        slotkey.SlotKey{Resource: teacher, Day: day, Period: period},
			Value:      content,
		}, "", ""
	default:
		return CellWrite{}, dto.SkipUnsupported, recordType
	}
}

func resolvePeriod(label string) (string, bool) {
	if id, ok := catalog.PeriodID(label); ok {
		return id, true
	}
	if catalog.IsPeriod(label) {
		return label, true
	}
	return "", false
}

func cleanField(field string) string {
	field = strings.TrimSpace(field)
	field = strings.TrimPrefix(field, `"`)
	field = strings.TrimSuffix(field, `"`)
	return strings.TrimSpace(field)
}

func blankRow(columns []string) bool {
	for _, c := range columns {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
