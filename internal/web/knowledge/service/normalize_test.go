package service

import (
	"testing"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"

	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/dto"
)

// TestNormalize_AllShapesConverge verifies that every tolerated payload
// shape carrying the same query and id reduces to the same request.
func TestNormalize_AllShapesConverge(t *testing.T) {
	t.Parallel()
	logger := logSDK.Shared.Named("test")

	want := dto.NormalizedRequest{Query: "labia surgery", ToolCallID: "abc123"}

	cases := []struct {
		name string
		body string
	}{
		{
			name: "toolCalls with string-encoded arguments",
			body: `{"message":{"toolCalls":[{"id":"abc123","function":{"arguments":"{\"query\":\"labia surgery\"}"}}]}}`,
		},
		{
			name: "toolCalls with object arguments",
			body: `{"message":{"toolCalls":[{"id":"abc123","function":{"arguments":{"query":"labia surgery"}}}]}}`,
		},
		{
			name: "toolCallList",
			body: `{"message":{"toolCallList":[{"id":"abc123","function":{"arguments":{"query":"labia surgery"}}}]}}`,
		},
		{
			name: "batch of one event",
			body: `[{"body":{"message":{"toolCallList":[{"id":"abc123","function":{"arguments":{"query":"labia surgery"}}}]}}}]`,
		},
		{
			name: "manual flat body",
			body: `{"query":"labia surgery","toolCallId":"abc123"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(logger, []byte(tc.body))
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

// TestNormalize_ManualWithoutID verifies the direct-query form produces a
// request with no correlation id.
func TestNormalize_ManualWithoutID(t *testing.T) {
	t.Parallel()
	logger := logSDK.Shared.Named("test")

	got, err := Normalize(logger, []byte(`{"query":"rhinoplasty cost"}`))
	require.NoError(t, err)
	require.Equal(t, "rhinoplasty cost", got.Query)
	require.False(t, got.IsToolCall())
}

// TestNormalize_NoQuery verifies a query-less body yields ErrEmptyQuery,
// never a crash.
func TestNormalize_NoQuery(t *testing.T) {
	t.Parallel()
	logger := logSDK.Shared.Named("test")

	cases := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "empty list", body: `[]`},
		{name: "whitespace query", body: `{"query":"   "}`},
		{name: "empty tool call list", body: `{"message":{"toolCalls":[]}}`},
		{name: "tool call without arguments", body: `{"message":{"toolCalls":[{"id":"x","function":{}}]}}`},
		{
			// the string-encoded arguments are not valid JSON; the shape
			// must fall through instead of aborting normalization
			name: "unparsable arguments string",
			body: `{"message":{"toolCalls":[{"id":"x","function":{"arguments":"not json"}}]}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(logger, []byte(tc.body))
			require.ErrorIs(t, err, ErrEmptyQuery)
		})
	}
}

// TestNormalize_MalformedBody verifies a non-JSON body is reported as a
// malformed payload.
func TestNormalize_MalformedBody(t *testing.T) {
	t.Parallel()
	logger := logSDK.Shared.Named("test")

	_, err := Normalize(logger, []byte(`{"query": `))
	require.ErrorIs(t, err, ErrMalformedPayload)
}

// TestNormalize_ToolCallsPreferredOverManual verifies shape order: the
// nested envelope wins when both shapes could match.
func TestNormalize_ToolCallsPreferredOverManual(t *testing.T) {
	t.Parallel()
	logger := logSDK.Shared.Named("test")

	body := `{"query":"outer","message":{"toolCalls":[{"id":"id1","function":{"arguments":{"query":"inner"}}}]}}`
	got, err := Normalize(logger, []byte(body))
	require.NoError(t, err)
	require.Equal(t, "inner", got.Query)
	require.Equal(t, "id1", got.ToolCallID)
}
