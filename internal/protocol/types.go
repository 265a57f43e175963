package protocol

// Capabilities are the feature flags advertised in the identification frame.
type Capabilities struct {
	AIDetection     bool `json:"ai_detection"`
	FaceRecognition bool `json:"face_recognition"`
	RealTimeAlerts  bool `json:"real_time_alerts"`
	Compression     bool `json:"compression"`
}

// Identification is sent immediately after the transport opens, before any
// other outbound frame.
type Identification struct {
	ClientType   string       `json:"client_type"`
	ClientID     string       `json:"client_id"`
	Capabilities Capabilities `json:"capabilities"`
	Version      string       `json:"version"`
}

// Heartbeat carries the sender's local clock in epoch milliseconds. The ack
// echoes client_time back so latency is derived entirely client-side.
type Heartbeat struct {
	ClientTime int64 `json:"client_time"`
}

// HeartbeatAck is the paired acknowledgement for a Heartbeat frame.
type HeartbeatAck struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time,omitempty"`
}

// AuthRequest is the voice channel authentication payload. The token comes
// from the platform's auth subsystem; this module only forwards it.
type AuthRequest struct {
	Token    string `json:"token"`
	UserRole string `json:"userRole"`
}

// AuthResult is the server response to an AuthRequest.
type AuthResult struct {
	Success  bool   `json:"success"`
	UserRole string `json:"userRole,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StreamStartRequest asks the gateway to start processing a camera feed.
type StreamStartRequest struct {
	CameraID  string `json:"camera_id"`
	RTSPURL   string `json:"rtsp_url,omitempty"`
	Quality   string `json:"quality,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StreamStopRequest asks the gateway to stop processing a camera feed.
type StreamStopRequest struct {
	CameraID  string `json:"camera_id"`
	RequestID string `json:"request_id,omitempty"`
}

// StreamQualityChange asks the gateway to switch a feed's quality tier.
type StreamQualityChange struct {
	CameraID  string `json:"camera_id"`
	Quality   string `json:"quality"`
	RequestID string `json:"request_id,omitempty"`
}

// CameraSubscription subscribes this client to one camera's event stream.
type CameraSubscription struct {
	CameraID string `json:"camera_id"`
}

// DetectionReport carries AI detection results for one camera.
type DetectionReport struct {
	CameraID   string `json:"camera_id"`
	Detections []any  `json:"detections"`
	Timestamp  int64  `json:"timestamp"`
}

// FaceReport carries face recognition results for one camera.
type FaceReport struct {
	CameraID  string `json:"camera_id"`
	Faces     []any  `json:"faces"`
	Timestamp int64  `json:"timestamp"`
}

// Alert is an outbound alert notification.
type Alert struct {
	AlertType string `json:"alert_type"`
	CameraID  string `json:"camera_id"`
	Severity  string `json:"severity"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// CallRef addresses a single active voice call.
type CallRef struct {
	CallID string `json:"callId"`
}

// EscalationRequest raises an emergency escalation for a call.
type EscalationRequest struct {
	CallID string `json:"callId"`
	Reason string `json:"reason,omitempty"`
}
