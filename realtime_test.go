package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexops/realtime/internal/config"
	"github.com/apexops/realtime/internal/connection"
	"github.com/apexops/realtime/internal/protocol"
	"github.com/apexops/realtime/internal/transport"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool

	msgs chan transport.Message
	errs chan error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		msgs: make(chan transport.Message, 64),
		errs: make(chan error, 1),
	}
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return transport.ErrClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.msgs)
	return nil
}

func (f *fakeTransport) Messages() <-chan transport.Message { return f.msgs }
func (f *fakeTransport) Errors() <-chan error               { return f.errs }

func (f *fakeTransport) framesOfType(msgType string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, frame := range f.sent {
		if typ, _ := protocol.DecodeType(frame); typ == msgType {
			out = append(out, frame)
		}
	}
	return out
}

// fakeDialer hands each dial its own transport, keyed by URL.
type fakeDialer struct {
	mu    sync.Mutex
	byURL map[string]*fakeTransport
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (transport.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ft := newFakeTransport()
	d.byURL[url] = ft
	return ft, nil
}

func (d *fakeDialer) transportFor(url string) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byURL[url]
}

func testManager(t *testing.T) (*Manager, *fakeDialer) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			URL:      "ws://gateway.test/ws",
			VoiceURL: "ws://voice.test/ws",
		},
		Client: config.ClientConfig{
			Type:        "ai_engine",
			Version:     "2.0.0",
			AIDetection: true,
		},
		Connection: config.ConnectionConfig{
			HeartbeatInterval:    time.Hour,
			ReconnectBaseDelay:   5 * time.Millisecond,
			ReconnectCapExponent: 5,
			MaxReconnectAttempts: 3,
			HandshakeTimeout:     time.Second,
			WriteTimeout:         time.Second,
			BufferSize:           64,
		},
	}
	dialer := &fakeDialer{byURL: make(map[string]*fakeTransport)}
	return newManager(cfg, dialer, nil), dialer
}

func connectPrimary(t *testing.T, m *Manager, dialer *fakeDialer) *fakeTransport {
	t.Helper()
	m.Connect()
	require.Eventually(t, func() bool {
		return m.Stats().Primary.State == connection.StateConnected
	}, 2*time.Second, 2*time.Millisecond, "primary never connected")
	return dialer.transportFor("ws://gateway.test/ws")
}

func TestManager_CommandsBeforeConnect(t *testing.T) {
	m, _ := testManager(t)

	id, ok := m.StartStream("cam_001", "rtsp://dvr/1", "thumbnail")
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.False(t, m.SubscribeToCamera("cam_001"))
	assert.False(t, m.SendMessage(protocol.TypeSystemStatusUpdate, nil))
}

func TestManager_ConnectAndDispatch(t *testing.T) {
	m, dialer := testManager(t)
	ft := connectPrimary(t, m, dialer)
	defer m.Disconnect()

	alerts := make(chan []byte, 1)
	sub := m.OnMessage(protocol.TypeAlertTriggered, func(msgType string, payload []byte) {
		alerts <- payload
	})
	defer sub.Cancel()

	frame, err := protocol.Encode(protocol.TypeAlertTriggered, map[string]any{"camera_id": "cam_007"})
	require.NoError(t, err)
	ft.msgs <- transport.Message{Data: frame, ReceivedAt: time.Now()}

	select {
	case payload := <-alerts:
		var fields map[string]any
		require.NoError(t, json.Unmarshal(payload, &fields))
		assert.Equal(t, "cam_007", fields["camera_id"])
	case <-time.After(time.Second):
		t.Fatal("alert never dispatched")
	}
}

func TestManager_StreamCommands(t *testing.T) {
	m, dialer := testManager(t)
	ft := connectPrimary(t, m, dialer)
	defer m.Disconnect()

	id, ok := m.StartStream("cam_001", "rtsp://dvr/1", "hd")
	require.True(t, ok)
	assert.NotEmpty(t, id)

	frames := ft.framesOfType(protocol.TypeStreamStartRequest)
	require.Len(t, frames, 1)
	var req protocol.StreamStartRequest
	require.NoError(t, json.Unmarshal(frames[0], &req))
	assert.Equal(t, "cam_001", req.CameraID)
	assert.Equal(t, "rtsp://dvr/1", req.RTSPURL)
	assert.Equal(t, "hd", req.Quality)
	assert.Equal(t, id, req.RequestID)

	_, ok = m.StopStream("cam_001")
	assert.True(t, ok)
	_, ok = m.ChangeStreamQuality("cam_001", "thumbnail")
	assert.True(t, ok)
	assert.True(t, m.SubscribeToCamera("cam_001"))
	assert.True(t, m.SendDetectionResult("cam_001", []any{map[string]any{"type": "person"}}))
	assert.True(t, m.SendFaceDetectionResult("cam_001", nil))
	assert.True(t, m.SendAlert("intrusion", "cam_001", "", nil))

	alertFrames := ft.framesOfType(protocol.TypeAlertTriggered)
	require.Len(t, alertFrames, 1)
	var alert protocol.Alert
	require.NoError(t, json.Unmarshal(alertFrames[0], &alert))
	assert.Equal(t, "medium", alert.Severity)
}

func TestManager_VoiceChannelIsLazy(t *testing.T) {
	m, dialer := testManager(t)
	connectPrimary(t, m, dialer)
	defer m.Disconnect()

	assert.False(t, m.VoiceCreated())
	assert.Nil(t, m.Stats().Voice)
	assert.Nil(t, dialer.transportFor("ws://voice.test/ws"))

	v := m.Voice()
	require.NotNil(t, v)
	assert.True(t, m.VoiceCreated())
	assert.Same(t, v, m.Voice())

	// Created but not yet connected.
	require.NotNil(t, m.Stats().Voice)
	assert.Equal(t, connection.StateDisconnected, m.Stats().Voice.State)

	v.Connect()
	require.Eventually(t, func() bool {
		return m.Stats().Voice.State == connection.StateConnected
	}, 2*time.Second, 2*time.Millisecond)
	assert.NotNil(t, dialer.transportFor("ws://voice.test/ws"))
}

func TestManager_DisconnectBothChannels(t *testing.T) {
	m, dialer := testManager(t)
	connectPrimary(t, m, dialer)

	v := m.Voice()
	v.Connect()
	require.Eventually(t, func() bool {
		return m.Stats().Voice.State == connection.StateConnected
	}, 2*time.Second, 2*time.Millisecond)

	m.Disconnect()

	stats := m.Stats()
	assert.Equal(t, connection.StateDisconnected, stats.Primary.State)
	assert.Equal(t, connection.StateDisconnected, stats.Voice.State)

	// Idempotent.
	m.Disconnect()
}

func TestManager_OffMessage(t *testing.T) {
	m, dialer := testManager(t)
	ft := connectPrimary(t, m, dialer)
	defer m.Disconnect()

	calls := 0
	m.OnMessage(protocol.TypeCameraOnline, func(string, []byte) { calls++ })
	m.OnMessage(protocol.TypeCameraOnline, func(string, []byte) { calls++ })
	m.OffMessage(protocol.TypeCameraOnline)

	frame, _ := protocol.Encode(protocol.TypeCameraOnline, nil)
	ft.msgs <- transport.Message{Data: frame, ReceivedAt: time.Now()}

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls)
}

func TestManager_SharedDispatcherSeesBothChannels(t *testing.T) {
	m, dialer := testManager(t)
	connectPrimary(t, m, dialer)
	defer m.Disconnect()

	connects := make(chan string, 4)
	m.OnMessage(protocol.EventConnect, func(msgType string, payload []byte) {
		var fields map[string]any
		json.Unmarshal(payload, &fields)
		ch, _ := fields["channel"].(string)
		connects <- ch
	})

	v := m.Voice()
	v.Connect()

	select {
	case ch := <-connects:
		assert.Equal(t, "voice", ch)
	case <-time.After(2 * time.Second):
		t.Fatal("voice connect event never dispatched")
	}
}
