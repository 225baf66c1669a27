package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/robogrid/internal/engine"
)

func dial(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(f.server.Echo())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return ev
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) Event {
	t.Helper()
	for i := 0; i < 32; i++ {
		if ev := readEvent(t, conn); ev.Type == typ {
			return ev
		}
	}
	t.Fatalf("no %s event", typ)
	return Event{}
}

func TestWebSocketSnapshotAndPing(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f)

	if ev := readEvent(t, conn); ev.Type != EventSnapshot {
		t.Fatalf("first event = %s, want snapshot", ev.Type)
	}

	if err := conn.WriteJSON(ClientMessage{Type: MessagePing}); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != EventPong {
		t.Errorf("reply = %s, want pong", ev.Type)
	}

	if err := conn.WriteJSON(ClientMessage{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, conn)
	if ev.Type != EventError {
		t.Fatalf("reply = %s, want error", ev.Type)
	}
	payload, _ := json.Marshal(ev.Payload)
	if !strings.Contains(string(payload), "unknown_type") {
		t.Errorf("payload = %s", payload)
	}
}

func TestWebSocketRunStream(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f)
	readUntil(t, conn, EventSnapshot)

	if err := conn.WriteJSON(ClientMessage{Type: MessageRun, Program: "right\njump"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, EventRobot)

	f.sched.RunAll(10)

	if ev := readEvent(t, conn); ev.Type != EventHighlight {
		t.Errorf("event = %s, want highlight", ev.Type)
	}
	if ev := readEvent(t, conn); ev.Type != EventRobot {
		t.Errorf("event = %s, want robot", ev.Type)
	}
	if ev := readEvent(t, conn); ev.Type != EventHighlight {
		t.Errorf("event = %s, want highlight of failing line", ev.Type)
	}
	ev := readEvent(t, conn)
	if ev.Type != EventOutcome {
		t.Fatalf("event = %s, want outcome", ev.Type)
	}
	payload, _ := json.Marshal(ev.Payload)
	if !strings.Contains(string(payload), engine.UnknownCommandText+"jump") {
		t.Errorf("outcome = %s", payload)
	}
	if f.engine.Status() != engine.StatusFailed {
		t.Errorf("Status() = %v, want failed", f.engine.Status())
	}
}
