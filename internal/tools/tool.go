package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one operation callable by a remote agent.
// Execute never fails: every outcome, including upstream failures, is a Result.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, args map[string]any) Result
}

// Status classifies a Result.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNotFound           Status = "not_found"
	StatusPreconditionFailed Status = "precondition_failed"
	StatusUpstreamError      Status = "upstream_error"
	StatusInvalidData        Status = "invalid_data"
	StatusInvalidInput       Status = "invalid_input"
)

// Result is the tagged outcome of a tool call. Data is set for StatusOK,
// Message for everything else.
type Result struct {
	Status  Status
	Data    any
	Message string
}

func OK(data any) Result { return Result{Status: StatusOK, Data: data} }

func Fail(status Status, msg string) Result { return Result{Status: status, Message: msg} }

// Failed reports whether the call did not produce its intended output.
// An empty search or an unknown location is not a failure.
func (r Result) Failed() bool {
	return r.Status != StatusOK && r.Status != StatusNotFound
}

// Text renders the result for a text-only channel: indented JSON for
// data, the message otherwise.
func (r Result) Text() string {
	if r.Status != StatusOK {
		return r.Message
	}
	b, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return fmt.Sprintf("Failed to encode result: %v", err)
	}
	return string(b)
}
