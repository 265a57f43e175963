// relayprobe connects to the realtime gateway and streams events to console.
// Usage: go run ./cmd/relayprobe --config configs/relay.example.yaml
//
// Optional environment variables:
//
//	APEX_VOICE_TOKEN - auth token for the privileged voice channel; when
//	                   set, the probe also opens and authenticates voice
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apexops/realtime"
	"github.com/apexops/realtime/internal/config"
	"github.com/apexops/realtime/internal/protocol"
	"github.com/apexops/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/relay.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	mgr := realtime.New(cfg, logger)

	// Lifecycle events from every channel flow through one registry.
	mgr.OnMessage(protocol.EventConnect, printEvent("CONNECT", *verbose))
	mgr.OnMessage(protocol.EventAuthenticated, printEvent("AUTHENTICATED", *verbose))
	mgr.OnMessage(protocol.EventDisconnect, printEvent("DISCONNECT", *verbose))
	mgr.OnMessage(protocol.TypeError, printEvent("ERROR", *verbose))

	// Server traffic of interest.
	mgr.OnMessage(protocol.TypeAlertTriggered, printEvent("ALERT", *verbose))
	mgr.OnMessage(protocol.TypeAIDetectionResult, printEvent("DETECTION", *verbose))
	mgr.OnMessage(protocol.TypeCameraOnline, printEvent("CAMERA ONLINE", *verbose))
	mgr.OnMessage(protocol.TypeCameraOffline, printEvent("CAMERA OFFLINE", *verbose))
	mgr.OnMessage(protocol.TypeSystemStatusUpdate, printEvent("STATUS", *verbose))

	logger.Info("connecting", "url", cfg.Server.URL)
	mgr.Connect()

	// Optionally exercise the voice channel.
	if token := os.Getenv("APEX_VOICE_TOKEN"); token != "" {
		vc := mgr.Voice()
		mgr.OnMessage(protocol.TypeTranscriptionUpdate, printEvent("TRANSCRIPT", *verbose))
		mgr.OnMessage(protocol.TypeEmergencyAlert, printEvent("EMERGENCY", *verbose))

		vc.Connect()
		go func() {
			// Wait for the channel to come up before authenticating.
			for i := 0; i < 100; i++ {
				select {
				case <-ctx.Done():
					return
				case <-time.After(100 * time.Millisecond):
				}
				if vc.Authenticate(token, "admin") {
					return
				}
			}
			logger.Warn("voice channel never became ready for authentication")
		}()
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := mgr.Stats()
				args := []any{
					"primary_state", stats.Primary.State.String(),
					"primary_received", stats.Primary.MessagesReceived,
					"primary_sent", stats.Primary.MessagesSent,
					"primary_latency_ms", stats.Primary.LatencyMs,
					"reconnect_attempts", stats.Primary.ReconnectAttempts,
				}
				if stats.Voice != nil {
					args = append(args,
						"voice_state", stats.Voice.State.String(),
						"voice_received", stats.Voice.MessagesReceived,
					)
				}
				logger.Info("stats", args...)
			}
		}
	}()

	logger.Info("probe running - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	mgr.Disconnect()
	logger.Info("shutdown complete")
}

func printEvent(label string, verbose bool) func(string, []byte) {
	return func(msgType string, payload []byte) {
		if verbose {
			var buf map[string]any
			if err := json.Unmarshal(payload, &buf); err == nil {
				pretty, _ := json.MarshalIndent(buf, "", "  ")
				fmt.Printf("[%s] %s\n", label, pretty)
				return
			}
		}
		fmt.Printf("[%s] type=%s bytes=%d\n", label, msgType, len(payload))
	}
}
