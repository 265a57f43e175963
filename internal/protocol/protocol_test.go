package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_InlinesPayloadFields(t *testing.T) {
	data, err := Encode(TypeSubscribeToCall, CallRef{CallID: "abc123"})
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))

	assert.Equal(t, "subscribe_to_call", frame["type"])
	assert.Equal(t, "abc123", frame["callId"])
	assert.Len(t, frame, 2)
}

func TestEncode_NilPayload(t *testing.T) {
	data, err := Encode(TypeGetActiveCalls, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"get_active_calls"}`, string(data))
}

func TestEncode_RejectsNonObjectPayload(t *testing.T) {
	_, err := Encode(TypeHeartbeat, []int{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeType(t *testing.T) {
	typ, err := DecodeType([]byte(`{"type":"heartbeat_ack","client_time":123}`))
	require.NoError(t, err)
	assert.Equal(t, TypeHeartbeatAck, typ)
}

func TestDecodeType_Malformed(t *testing.T) {
	_, err := DecodeType([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeType([]byte(`{"client_time":123}`))
	assert.ErrorIs(t, err, ErrMissingType)
}
