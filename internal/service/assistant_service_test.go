package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/textgen"
)

type stubGenerator struct {
	generateReq textgen.TimetableRequest
	optimizeReq textgen.OptimizeRequest
	err         error
}

func (s *stubGenerator) GenerateTimetable(ctx context.Context, req textgen.TimetableRequest) (*textgen.TimetableProposal, error) {
	s.generateReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &textgen.TimetableProposal{TimetableProposal: "proposal"}, nil
}

func (s *stubGenerator) OptimizeTimetable(ctx context.Context, req textgen.OptimizeRequest) (*textgen.OptimizedTimetable, error) {
	s.optimizeReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &textgen.OptimizedTimetable{OptimizedTimetable: "{}", Suggestions: []string{"ok"}}, nil
}

func TestAssistantGenerateAddsFixedBookingsAsUnavailable(t *testing.T) {
	_, booking := newSeededTimetable(t)
	gen := &stubGenerator{}
	svc := NewAssistantService(gen, booking, nil)

	out, err := svc.Generate(context.Background(), GenerateRequest{UnavailableSlots: []string{" 강당-금-6 ", ""}})
	require.NoError(t, err)
	assert.Equal(t, "proposal", out.TimetableProposal)
	assert.Equal(t, []string{"강당-금-6", "월요일, 1교시 (운동장)", "화요일, 3교시 (과학실)"}, gen.generateReq.UnavailableSlots)
	assert.Len(t, gen.generateReq.Rooms, 6)
	assert.Len(t, gen.generateReq.Classes, 14)
}

func TestAssistantOptimizeSendsCurrentData(t *testing.T) {
	_, booking := newSeededTimetable(t)
	gen := &stubGenerator{}
	svc := NewAssistantService(gen, booking, nil)

	_, err := svc.Optimize(context.Background())
	require.NoError(t, err)

	var data map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(gen.optimizeReq.TimetableData), &data))
	assert.Equal(t, "3-1", data["fixedData"]["playground-mon-1"])
	assert.Equal(t, "체육", data["classSubjects"]["3-1-mon-1"])
	assert.Equal(t, "4-1", data["teacherSchedules"]["스포츠강사-mon-2"])
}

func TestAssistantDisabledAndUpstreamErrors(t *testing.T) {
	_, booking := newSeededTimetable(t)

	_, err := NewAssistantService(nil, booking, nil).Generate(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, appErrors.ErrFeatureDisabled)

	_, err = NewAssistantService(&stubGenerator{err: errors.New("timeout")}, booking, nil).Optimize(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}
