package service

import (
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/dto"
)

var (
	// ErrMalformedPayload marks a body that cannot be parsed as JSON at all.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrEmptyQuery marks a body from which no tolerated shape yielded a
	// non-empty query.
	ErrEmptyQuery = errors.New("missing query")
)

// Normalize reduces an arbitrary incoming body to a NormalizedRequest. The
// upstream platform's webhook format has changed several times, so each
// known shape is attempted as a typed parse, in order, until one yields a
// non-empty query:
//
//  1. message.toolCalls[0]
//  2. message.toolCallList[0]
//  3. a single-element list of envelopes, each with body.message.toolCallList[0]
//  4. a flat {query, toolCallId} body
//
// A failed second-pass parse of string-encoded arguments is logged and
// treated as "shape did not match", never as a normalization failure.
func Normalize(logger logSDK.Logger, raw []byte) (dto.NormalizedRequest, error) {
	if !json.Valid(raw) {
		return dto.NormalizedRequest{}, ErrMalformedPayload
	}

	logger.Debug("normalize webhook payload", zap.ByteString("payload", raw))

	for _, attempt := range []func(logSDK.Logger, []byte) (dto.NormalizedRequest, bool){
		normalizeToolCalls,
		normalizeToolCallList,
		normalizeEventBatch,
		normalizeManual,
	} {
		req, ok := attempt(logger, raw)
		if !ok {
			continue
		}

		logger.Info("normalized request",
			zap.String("tool_call_id", req.ToolCallID),
			zap.String("query", req.Query))
		return req, nil
	}

	return dto.NormalizedRequest{}, ErrEmptyQuery
}

func normalizeToolCalls(logger logSDK.Logger, raw []byte) (dto.NormalizedRequest, bool) {
	var body dto.ToolCallBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return dto.NormalizedRequest{}, false
	}

	return fromToolCalls(logger, body.Message.ToolCalls)
}

func normalizeToolCallList(logger logSDK.Logger, raw []byte) (dto.NormalizedRequest, bool) {
	var body dto.ToolCallBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return dto.NormalizedRequest{}, false
	}

	return fromToolCalls(logger, body.Message.ToolCallList)
}

func normalizeEventBatch(logger logSDK.Logger, raw []byte) (dto.NormalizedRequest, bool) {
	var batch []dto.WebhookEventEnvelope
	if err := json.Unmarshal(raw, &batch); err != nil || len(batch) == 0 {
		return dto.NormalizedRequest{}, false
	}

	message := batch[0].Body.Message
	if req, ok := fromToolCalls(logger, message.ToolCallList); ok {
		return req, true
	}

	return fromToolCalls(logger, message.ToolCalls)
}

func normalizeManual(logger logSDK.Logger, raw []byte) (dto.NormalizedRequest, bool) {
	var body dto.ManualSearchRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return dto.NormalizedRequest{}, false
	}

	query := strings.TrimSpace(body.Query)
	if query == "" {
		return dto.NormalizedRequest{}, false
	}

	return dto.NormalizedRequest{
		Query:      query,
		ToolCallID: body.ToolCallID,
	}, true
}

func fromToolCalls(logger logSDK.Logger, calls []dto.ToolCall) (dto.NormalizedRequest, bool) {
	if len(calls) == 0 {
		return dto.NormalizedRequest{}, false
	}

	call := calls[0]
	args, ok := parseArguments(logger, call.Function.Arguments)
	if !ok {
		return dto.NormalizedRequest{}, false
	}

	query := strings.TrimSpace(args.Query)
	if query == "" {
		return dto.NormalizedRequest{}, false
	}

	return dto.NormalizedRequest{
		Query:      query,
		ToolCallID: call.ID,
	}, true
}

// parseArguments decodes tool-call arguments that arrive either as a JSON
// object or as a JSON-encoded string. A failed second-pass parse only means
// the shape did not match.
func parseArguments(logger logSDK.Logger, raw json.RawMessage) (dto.ToolCallArguments, bool) {
	if len(raw) == 0 {
		return dto.ToolCallArguments{}, false
	}

	var args dto.ToolCallArguments
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, true
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return dto.ToolCallArguments{}, false
	}

	if err := json.Unmarshal([]byte(encoded), &args); err != nil {
		logger.Warn("tool call arguments string is not valid json",
			zap.Error(err), zap.String("arguments", encoded))
		return dto.ToolCallArguments{}, false
	}

	return args, true
}
