package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TimetableRequest describes the resources available for a new proposal.
type TimetableRequest struct {
	Rooms                 []string `json:"rooms"`
	Teachers              []string `json:"teachers"`
	Classes               []string `json:"classes"`
	UnavailableSlots      []string `json:"unavailableSlots"`
	AdditionalConstraints string   `json:"additionalConstraints,omitempty"`
}

// TimetableProposal is a free-text timetable proposal.
type TimetableProposal struct {
	TimetableProposal string `json:"timetableProposal"`
}

// OptimizeRequest carries an existing timetable serialised as JSON.
type OptimizeRequest struct {
	TimetableData string   `json:"timetableData"`
	Rooms         []string `json:"rooms"`
	Teachers      []string `json:"teachers"`
	Classes       []string `json:"classes"`
}

// OptimizedTimetable is the structured answer of the optimisation prompt.
type OptimizedTimetable struct {
	OptimizedTimetable string   `json:"optimizedTimetable"`
	Suggestions        []string `json:"suggestions"`
}

const generateSystem = `You are a timetable generation expert. Your goal is to create a feasible timetable proposal, given the available resources and constraints.`

const optimizeSystem = `You are an expert in optimizing school timetables. Given an existing timetable, you will analyze it for conflicts, inefficient resource allocation, and other potential improvements.`

var (
	jsonBlockPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
)

// GenerateTimetable asks for a readable timetable proposal.
func (c *Client) GenerateTimetable(ctx context.Context, req TimetableRequest) (*TimetableProposal, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Available Rooms: %s\n", strings.Join(req.Rooms, ", "))
	fmt.Fprintf(&b, "Available Teachers: %s\n", strings.Join(req.Teachers, ", "))
	fmt.Fprintf(&b, "Classes to Schedule: %s\n", strings.Join(req.Classes, ", "))
	fmt.Fprintf(&b, "Unavailable Slots: %s\n", strings.Join(req.UnavailableSlots, "; "))
	fmt.Fprintf(&b, "Additional Constraints: %s\n\n", req.AdditionalConstraints)
	b.WriteString("Propose a timetable that respects all constraints and efficiently utilizes the available resources. Return the timetable in a clear, readable format.")

	content, err := c.Complete(ctx, generateSystem, b.String())
	if err != nil {
		return nil, err
	}
	return &TimetableProposal{TimetableProposal: strings.TrimSpace(content)}, nil
}

// OptimizeTimetable asks for an optimised timetable and improvement suggestions as JSON.
func (c *Client) OptimizeTimetable(ctx context.Context, req OptimizeRequest) (*OptimizedTimetable, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Existing Timetable Data: %s\n", req.TimetableData)
	fmt.Fprintf(&b, "Available Rooms: %s\n", strings.Join(req.Rooms, ", "))
	fmt.Fprintf(&b, "Available Teachers: %s\n", strings.Join(req.Teachers, ", "))
	fmt.Fprintf(&b, "Classes: %s\n\n", strings.Join(req.Classes, ", "))
	b.WriteString(`Respond with a JSON object {"optimizedTimetable": string, "suggestions": [string]} where optimizedTimetable is the optimized timetable encoded as JSON. `)
	b.WriteString("Make sure that all the original classes are included. Do not include any additional explanation, only output JSON.")

	content, err := c.Complete(ctx, optimizeSystem, b.String())
	if err != nil {
		return nil, err
	}
	raw := ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("optimize response contained no JSON object")
	}

	var out struct {
		OptimizedTimetable json.RawMessage `json:"optimizedTimetable"`
		Suggestions        []string        `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse optimize response: %w", err)
	}
	result := &OptimizedTimetable{Suggestions: out.Suggestions}
	// models answer with either a JSON string or an inline object
	var asString string
	if err := json.Unmarshal(out.OptimizedTimetable, &asString); err == nil {
		result.OptimizedTimetable = asString
	} else {
		result.OptimizedTimetable = string(out.OptimizedTimetable)
	}
	return result, nil
}

// ExtractJSON pulls the first JSON object out of a model answer, preferring fenced code blocks.
func ExtractJSON(content string) string {
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		return m[1]
	}
	return jsonObjectPattern.FindString(content)
}
