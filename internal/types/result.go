package types

import (
	"encoding/json"
	"fmt"
)

// ResultKind tags the payload of a function invocation result
type ResultKind string

// ResultKind constants
const (
	ResultChart ResultKind = "chart"
	ResultTable ResultKind = "table"
	ResultText  ResultKind = "text"
)

// ChartSeries is one named line of a chart result
type ChartSeries struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// ChartPayload is the body of a chart result
type ChartPayload struct {
	Title  string        `json:"title,omitempty"`
	Series []ChartSeries `json:"series"`
}

// TablePayload is the body of a table result
type TablePayload struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Result is the tagged variant returned by function invocation.
// Exactly one of Chart, Table or Text is meaningful, selected by Kind.
type Result struct {
	Kind  ResultKind
	Chart *ChartPayload
	Table *TablePayload
	Text  string
}

type resultEnvelope struct {
	Kind    ResultKind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// UnmarshalJSON decodes {"kind": ..., "payload": ...}
func (r *Result) UnmarshalJSON(data []byte) error {
	var env resultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode result envelope: %w", err)
	}
	*r = Result{Kind: env.Kind}
	switch env.Kind {
	case ResultChart:
		r.Chart = &ChartPayload{}
		if err := json.Unmarshal(env.Payload, r.Chart); err != nil {
			return fmt.Errorf("failed to decode chart payload: %w", err)
		}
	case ResultTable:
		r.Table = &TablePayload{}
		if err := json.Unmarshal(env.Payload, r.Table); err != nil {
			return fmt.Errorf("failed to decode table payload: %w", err)
		}
	case ResultText:
		if err := json.Unmarshal(env.Payload, &r.Text); err != nil {
			return fmt.Errorf("failed to decode text payload: %w", err)
		}
	default:
		return fmt.Errorf("unknown result kind %q", env.Kind)
	}
	return nil
}

// MarshalJSON encodes the variant back into its envelope
func (r Result) MarshalJSON() ([]byte, error) {
	var payload any
	switch r.Kind {
	case ResultChart:
		payload = r.Chart
	case ResultTable:
		payload = r.Table
	case ResultText:
		payload = r.Text
	default:
		return nil, fmt.Errorf("unknown result kind %q", r.Kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resultEnvelope{Kind: r.Kind, Payload: raw})
}
