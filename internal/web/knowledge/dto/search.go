// Package dto contains the wire shapes of the knowledge search surface.
package dto

import "encoding/json"

// NormalizedRequest is the canonical internal form every tolerated payload
// shape is reduced to. ToolCallID is empty for the manual direct-query form.
type NormalizedRequest struct {
	Query      string
	ToolCallID string
}

// IsToolCall reports whether the request arrived as a tool-call envelope.
func (r NormalizedRequest) IsToolCall() bool {
	return r.ToolCallID != ""
}

// ManualSearchRequest is the flat direct-query body.
type ManualSearchRequest struct {
	Query      string `json:"query"`
	ToolCallID string `json:"toolCallId,omitempty"`
}

// SearchResultItem projects a graph node to the three display fields the
// voice assistant reads aloud. Missing source fields stay null.
type SearchResultItem struct {
	Name    *string `json:"name"`
	GroupID *string `json:"group_id"`
	Summary *string `json:"summary"`
}

// SearchResponse is the plain envelope returned to direct callers.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// ToolCallResult pairs one tool invocation id with its result list.
type ToolCallResult struct {
	ToolCallID string             `json:"toolCallId"`
	Result     []SearchResultItem `json:"result"`
}

// ToolCallResponse is the envelope the tool-calling platform expects: a
// results list with one entry per invocation, always exactly one here.
type ToolCallResponse struct {
	Results []ToolCallResult `json:"results"`
}

// ErrorResponse carries a failure detail to the caller.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WebhookSoftError is the HTTP-200 error body used on the webhook route,
// whose caller does not tolerate non-2xx responses.
type WebhookSoftError struct {
	Error string `json:"error"`
}

// The following types model the upstream voice platform's tool-call
// envelopes. The platform has shipped several incompatible variants; the
// normalizer tries each in turn.

// ToolCallFunction holds the invoked function name and its arguments. The
// arguments may arrive either as a JSON object or as a JSON-encoded string
// that needs a second parse pass.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCall is a single structured invocation from the platform.
type ToolCall struct {
	ID       string           `json:"id"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallMessage is the nested message carrying the invocation list under
// either of two historical keys.
type ToolCallMessage struct {
	ToolCalls    []ToolCall `json:"toolCalls"`
	ToolCallList []ToolCall `json:"toolCallList"`
}

// ToolCallBody is a body shaped as {"message": {...}}.
type ToolCallBody struct {
	Message ToolCallMessage `json:"message"`
}

// WebhookEventEnvelope is one element of the batch-of-one shape, where the
// message body is nested one level deeper under "body".
type WebhookEventEnvelope struct {
	Body ToolCallBody `json:"body"`
}

// ToolCallArguments is the parsed arguments object of a tool invocation.
type ToolCallArguments struct {
	Query string `json:"query"`
}
