package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/textgen"
)

// TextGenerator is the external text-generation capability, one method per flow.
type TextGenerator interface {
	GenerateTimetable(ctx context.Context, req textgen.TimetableRequest) (*textgen.TimetableProposal, error)
	OptimizeTimetable(ctx context.Context, req textgen.OptimizeRequest) (*textgen.OptimizedTimetable, error)
}

type cellSource interface {
	Cells(ctx context.Context, collection models.Collection) (map[string]string, error)
}

// GenerateRequest carries operator supplied constraints for a new proposal.
type GenerateRequest struct {
	UnavailableSlots      []string `json:"unavailableSlots"`
	AdditionalConstraints string   `json:"additionalConstraints"`
}

// AssistantService prepares requests for the text generator from the stored timetable.
type AssistantService struct {
	generator TextGenerator
	cells     cellSource
	logger    *zap.Logger
}

// NewAssistantService constructs an AssistantService. A nil generator disables it.
func NewAssistantService(generator TextGenerator, cells cellSource, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{generator: generator, cells: cells, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *AssistantService) Enabled() bool {
	return s != nil && s.generator != nil
}

// Generate requests a timetable proposal. Slots already held by fixed bookings are sent as unavailable.
func (s *AssistantService) Generate(ctx context.Context, req GenerateRequest) (*textgen.TimetableProposal, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "assistant is disabled")
	}
	fixed, err := s.cells.Cells(ctx, models.CollectionFixed)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, len(req.UnavailableSlots)+len(fixed))
	for _, slot := range req.UnavailableSlots {
		if slot = strings.TrimSpace(slot); slot != "" {
			slots = append(slots, slot)
		}
	}
	slots = append(slots, unavailableSlots(fixed)...)

	out, err := s.generator.GenerateTimetable(ctx, textgen.TimetableRequest{
		Rooms:                 roomLabels(),
		Teachers:              catalog.Teachers(),
		Classes:               catalog.Classes(),
		UnavailableSlots:      slots,
		AdditionalConstraints: strings.TrimSpace(req.AdditionalConstraints),
	})
	if err != nil {
		s.logger.Warn("timetable generation failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "timetable generation failed")
	}
	return out, nil
}

// Optimize sends the current weekly collections for review.
func (s *AssistantService) Optimize(ctx context.Context) (*textgen.OptimizedTimetable, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "assistant is disabled")
	}
	data := make(map[string]map[string]string, 3)
	for _, c := range []models.Collection{models.CollectionFixed, models.CollectionSubjects, models.CollectionTeacherSchedules} {
		cells, err := s.cells.Cells(ctx, c)
		if err != nil {
			return nil, err
		}
		data[string(c)] = cells
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable")
	}

	out, err := s.generator.OptimizeTimetable(ctx, textgen.OptimizeRequest{
		TimetableData: string(encoded),
		Rooms:         roomLabels(),
		Teachers:      catalog.Teachers(),
		Classes:       catalog.Classes(),
	})
	if err != nil {
		s.logger.Warn("timetable optimisation failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "timetable optimisation failed")
	}
	return out, nil
}

// unavailableSlots renders fixed bookings as "월요일, 1교시 (강당)" in day, period, resource order.
func unavailableSlots(fixed map[string]string) []string {
	keys := make([]slotkey.SlotKey, 0, len(fixed))
	for raw := range fixed {
		if key, ok := slotkey.ParseSlotKey(raw); ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		da, _ := catalog.WeekdayOf(a.Day)
		db, _ := catalog.WeekdayOf(b.Day)
		if da != db {
			return da < db
		}
		ra, _ := catalog.PeriodRank(a.Period)
		rb, _ := catalog.PeriodRank(b.Period)
		if ra != rb {
			return ra < rb
		}
		return a.Resource < b.Resource
	})

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		day, _ := catalog.DayLabel(k.Day)
		period, _ := catalog.PeriodLabel(k.Period)
		resource := k.Resource
		if label, ok := catalog.RoomLabel(k.Resource); ok {
			resource = label
		}
		out = append(out, day+"요일, "+period+" ("+resource+")")
	}
	return out
}

func roomLabels() []string {
	rooms := catalog.Rooms()
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.Label
	}
	return out
}
