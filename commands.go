package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/apexops/realtime/internal/protocol"
)

// Primary-channel commands. Each returns whether the frame was handed to
// the transport; server-side outcomes arrive asynchronously as the
// corresponding response events (stream_start_success, stream_start_error,
// ...), so callers that need confirmation subscribe to those.

// StartStream asks the gateway to begin processing a camera feed. The
// returned request id correlates the eventual response event; it is empty
// when the command was not transmitted.
func (m *Manager) StartStream(cameraID, rtspURL, quality string) (string, bool) {
	requestID := uuid.NewString()
	ok := m.primary.Send(protocol.TypeStreamStartRequest, protocol.StreamStartRequest{
		CameraID:  cameraID,
		RTSPURL:   rtspURL,
		Quality:   quality,
		RequestID: requestID,
	})
	if !ok {
		return "", false
	}
	return requestID, true
}

// StopStream asks the gateway to stop processing a camera feed.
func (m *Manager) StopStream(cameraID string) (string, bool) {
	requestID := uuid.NewString()
	ok := m.primary.Send(protocol.TypeStreamStopRequest, protocol.StreamStopRequest{
		CameraID:  cameraID,
		RequestID: requestID,
	})
	if !ok {
		return "", false
	}
	return requestID, true
}

// ChangeStreamQuality switches a feed between quality tiers.
func (m *Manager) ChangeStreamQuality(cameraID, quality string) (string, bool) {
	requestID := uuid.NewString()
	ok := m.primary.Send(protocol.TypeStreamQualityChange, protocol.StreamQualityChange{
		CameraID:  cameraID,
		Quality:   quality,
		RequestID: requestID,
	})
	if !ok {
		return "", false
	}
	return requestID, true
}

// SubscribeToCamera subscribes this client to one camera's event stream.
func (m *Manager) SubscribeToCamera(cameraID string) bool {
	return m.primary.Send(protocol.TypeSubscribeCamera, protocol.CameraSubscription{
		CameraID: cameraID,
	})
}

// SendDetectionResult reports AI detection results for a camera.
func (m *Manager) SendDetectionResult(cameraID string, detections []any) bool {
	return m.primary.Send(protocol.TypeAIDetectionResult, protocol.DetectionReport{
		CameraID:   cameraID,
		Detections: detections,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// SendFaceDetectionResult reports face recognition results for a camera.
func (m *Manager) SendFaceDetectionResult(cameraID string, faces []any) bool {
	return m.primary.Send(protocol.TypeFaceDetectionResult, protocol.FaceReport{
		CameraID:  cameraID,
		Faces:     faces,
		Timestamp: time.Now().UnixMilli(),
	})
}

// SendAlert raises an alert on the primary channel.
func (m *Manager) SendAlert(alertType, cameraID, severity string, data any) bool {
	if severity == "" {
		severity = "medium"
	}
	return m.primary.Send(protocol.TypeAlertTriggered, protocol.Alert{
		AlertType: alertType,
		CameraID:  cameraID,
		Severity:  severity,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
