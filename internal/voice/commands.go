package voice

import "github.com/apexops/realtime/internal/protocol"

// Privileged commands. Each checks the handshake state locally and returns
// whether the frame was handed to the transport; server-side confirmation
// arrives asynchronously as the corresponding response event.

// SubscribeToCall subscribes to one call's live updates.
func (c *Channel) SubscribeToCall(callID string) bool {
	if !c.ready() {
		c.logger.Warn("subscribe_to_call rejected: channel not authenticated", "call_id", callID)
		return false
	}
	return c.core.Send(protocol.TypeSubscribeToCall, protocol.CallRef{CallID: callID})
}

// RequestTakeover asks to hand the call from the AI agent to a human.
func (c *Channel) RequestTakeover(callID string) bool {
	if !c.ready() {
		c.logger.Warn("request_takeover rejected: channel not authenticated", "call_id", callID)
		return false
	}
	return c.core.Send(protocol.TypeRequestTakeover, protocol.CallRef{CallID: callID})
}

// EndCall terminates an active call.
func (c *Channel) EndCall(callID string) bool {
	if !c.ready() {
		c.logger.Warn("end_call rejected: channel not authenticated", "call_id", callID)
		return false
	}
	return c.core.Send(protocol.TypeEndCall, protocol.CallRef{CallID: callID})
}

// EmergencyEscalate raises an emergency escalation for a call.
func (c *Channel) EmergencyEscalate(callID, reason string) bool {
	if !c.ready() {
		c.logger.Warn("emergency_escalate rejected: channel not authenticated", "call_id", callID)
		return false
	}
	return c.core.Send(protocol.TypeEmergencyEscalate, protocol.EscalationRequest{
		CallID: callID,
		Reason: reason,
	})
}

// GetActiveCalls requests the current active call list.
func (c *Channel) GetActiveCalls() bool {
	if !c.ready() {
		c.logger.Warn("get_active_calls rejected: channel not authenticated")
		return false
	}
	return c.core.Send(protocol.TypeGetActiveCalls, nil)
}

// GetSystemMetrics requests voice system metrics.
func (c *Channel) GetSystemMetrics() bool {
	if !c.ready() {
		c.logger.Warn("get_system_metrics rejected: channel not authenticated")
		return false
	}
	return c.core.Send(protocol.TypeGetSystemMetrics, nil)
}

// RequestTranscript requests the transcript for a call.
func (c *Channel) RequestTranscript(callID string) bool {
	if !c.ready() {
		c.logger.Warn("request_transcript rejected: channel not authenticated", "call_id", callID)
		return false
	}
	return c.core.Send(protocol.TypeRequestTranscript, protocol.CallRef{CallID: callID})
}
