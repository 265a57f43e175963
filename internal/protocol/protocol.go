package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMissingType = errors.New("frame has no type field")
)

// System and lifecycle frame types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeClientIdentification  = "client_identification"
	TypeHeartbeat             = "heartbeat"
	TypeHeartbeatAck          = "heartbeat_ack"
	TypeError                 = "error"
)

// Stream management frame types (primary channel).
const (
	TypeStreamStartRequest  = "stream_start_request"
	TypeStreamStartSuccess  = "stream_start_success"
	TypeStreamStartError    = "stream_start_error"
	TypeStreamStopRequest   = "stream_stop_request"
	TypeStreamStopSuccess   = "stream_stop_success"
	TypeStreamStatusUpdate  = "stream_status_update"
	TypeStreamQualityChange = "stream_quality_change"
)

// Telemetry and alert frame types (primary channel).
const (
	TypeAIDetectionResult   = "ai_detection_result"
	TypeFaceDetectionResult = "face_detection_result"
	TypeAlertTriggered      = "alert_triggered"
	TypeSystemStatusUpdate  = "system_status_update"
	TypeCameraOnline        = "camera_online"
	TypeCameraOffline       = "camera_offline"
	TypeSubscribeCamera     = "subscribe_camera"
)

// Voice channel frame types.
const (
	TypeAuthenticate         = "authenticate"
	TypeAuthenticationResult = "authentication_result"
	TypeCallStarted          = "call_started"
	TypeCallEnded            = "call_ended"
	TypeCallUpdate           = "call_update"
	TypeTranscriptionUpdate  = "transcription_update"
	TypeAIResponse           = "ai_response"
	TypeCallTakeover         = "call_takeover"
	TypeEmergencyAlert       = "emergency_alert"
	TypeSystemStatus         = "system_status"
	TypeSubscribeToCall      = "subscribe_to_call"
	TypeRequestTakeover      = "request_takeover"
	TypeEndCall              = "end_call"
	TypeEmergencyEscalate    = "emergency_escalate"
	TypeGetActiveCalls       = "get_active_calls"
	TypeGetSystemMetrics     = "get_system_metrics"
	TypeRequestTranscript    = "request_transcript"
)

// Synthetic event types dispatched locally, never sent on the wire.
// They share the subscription registry with server-sent frames so callers
// have one uniform subscription model.
const (
	EventConnect       = "connect"
	EventAuthenticated = "authenticated"
	EventDisconnect    = "disconnect"
)

// Encode builds a wire frame: the payload fields inlined at the top level
// plus the "type" discriminator. A nil payload produces a bare type frame.
func Encode(msgType string, payload any) ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("payload must encode to a JSON object: %w", err)
		}
	}

	typ, err := json.Marshal(msgType)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ

	return json.Marshal(fields)
}

// DecodeType extracts the type discriminator from a raw frame. The caller
// keeps the raw bytes; payload fields are decoded by whoever handles the
// frame type.
func DecodeType(data []byte) (string, error) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}
	if frame.Type == "" {
		return "", ErrMissingType
	}
	return frame.Type, nil
}
