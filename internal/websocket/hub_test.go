package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
)

func startHub(t *testing.T, config *HubConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(config, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func waitForClients(t *testing.T, hub *Hub, n int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetStats().ActiveConnections != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d active connections, got %d", n, hub.GetStats().ActiveConnections)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event map[string]interface{}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return event
}

func TestRecordEventsAreMasked(t *testing.T) {
	hub, server := startHub(t, &HubConfig{BroadcastRecords: true})

	conn, _, err := dial(t, server, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	record := records.SampleRecords()[0]
	hub.PublishRecordEvent(records.EventAdded, record.Masked())

	event := readEvent(t, conn)
	if event["type"] != "record_added" {
		t.Errorf("Expected record_added, got %v", event["type"])
	}

	raw, _ := json.Marshal(event)
	for _, secret := range []string{record.NationalID, record.LastName, record.Address, record.Phone} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("Event leaks %q: %s", secret, raw)
		}
	}
	if !strings.Contains(string(raw), "J. K.") {
		t.Errorf("Expected initials in event, got %s", raw)
	}
}

func TestBroadcastSwitches(t *testing.T) {
	hub, server := startHub(t, &HubConfig{BroadcastRecords: false, BroadcastSystem: true})

	conn, _, err := dial(t, server, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.PublishRecordEvent(records.EventDeleted, records.MaskedRecord{})
	hub.BroadcastSystemStatus(SystemStatusEvent{Status: "healthy"})

	event := readEvent(t, conn)
	if event["type"] != "system_status" {
		t.Errorf("Disabled record events must not be sent, got %v", event["type"])
	}
}

func TestSubscription(t *testing.T) {
	hub, server := startHub(t, &HubConfig{BroadcastRecords: true, BroadcastSystem: true})

	conn, _, err := dial(t, server, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	conn.WriteJSON(map[string]interface{}{
		"type": "subscribe",
		"data": map[string]interface{}{"events": []string{"system_status"}},
	})
	// The pong confirms the subscription was processed.
	conn.WriteJSON(map[string]string{"type": "ping"})
	if event := readEvent(t, conn); event["type"] != "pong" {
		t.Fatalf("Expected pong, got %v", event["type"])
	}

	hub.PublishRecordEvent(records.EventUpdated, records.MaskedRecord{})
	hub.BroadcastSystemStatus(SystemStatusEvent{Status: "healthy"})

	if event := readEvent(t, conn); event["type"] != "system_status" {
		t.Errorf("Expected only subscribed events, got %v", event["type"])
	}
}

func TestBasicAuth(t *testing.T) {
	_, server := startHub(t, &HubConfig{Username: "viewer", Password: "s3cret"})

	_, resp, err := dial(t, server, nil)
	if err == nil {
		t.Fatal("Expected connection without credentials to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %v", resp)
	}

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("viewer", "s3cret")
	conn, _, err := dial(t, server, req.Header)
	if err != nil {
		t.Fatalf("Expected valid credentials to connect, got %v", err)
	}
	conn.Close()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:1234", "198.51.100.2"},
		{"remote", nil, "192.0.2.1:5678", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5678"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	r.Header.Set("X-Real-IP", "198.51.100.2")

	if got := RemoteIP(r); got != "192.0.2.1" {
		t.Errorf("Expected 192.0.2.1, got %s", got)
	}
}
