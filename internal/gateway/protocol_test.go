package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	frame, err := NewRequest("req-2", "search", map[string]any{"query": "aurora", "max_results": 3})
	require.NoError(t, err)

	assert.Equal(t, FrameTypeRequest, frame.Type)
	assert.Equal(t, "req-2", frame.ID)
	assert.Equal(t, "search", frame.Method)
	assert.JSONEq(t, `{"query":"aurora","max_results":3}`, string(frame.Params))
}

func TestNewResponse(t *testing.T) {
	frame, err := NewResponse("req-1", map[string]string{"status": "ok"})
	require.NoError(t, err)

	assert.Equal(t, FrameTypeResponse, frame.Type)
	assert.Equal(t, "req-1", frame.ID)
	require.NotNil(t, frame.OK)
	assert.True(t, *frame.OK)
	assert.Nil(t, frame.Error)
	assert.JSONEq(t, `{"status":"ok"}`, string(frame.Payload))
}

func TestNewErrorResponse(t *testing.T) {
	frame := NewErrorResponse("req-1", ErrorShape{
		Code:    CodeInvalidParams,
		Message: "body.query: field required",
	})

	data, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"res","id":"req-1","ok":false,"error":{"code":"invalid_params","message":"body.query: field required"}}`, string(data))
}

func TestNewEvent(t *testing.T) {
	frame, err := NewEvent(EventAgentRun, map[string]any{"operation": "chat"}, 42)
	require.NoError(t, err)

	assert.Equal(t, FrameTypeEvent, frame.Type)
	assert.Equal(t, EventAgentRun, frame.Event)
	assert.Equal(t, int64(42), frame.Seq)
	assert.JSONEq(t, `{"operation":"chat"}`, string(frame.Payload))
}

func TestConnectParamsOmitEmpty(t *testing.T) {
	data, err := json.Marshal(ConnectParams{
		MinProtocol: 1,
		MaxProtocol: 1,
		Client:      ClientInfo{ID: "cli"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"minProtocol":1,"maxProtocol":1,"client":{"id":"cli"}}`, string(data))
}
