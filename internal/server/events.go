package server

import (
	"encoding/json"
	"time"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
)

// Event types pushed to live feed clients
const (
	EventSnapshot       = "snapshot"
	EventRobot          = "robot"
	EventHighlight      = "highlight"
	EventClear          = "clear"
	EventProgramCleared = "program_cleared"
	EventOutcome        = "outcome"
	EventPong           = "pong"
	EventError          = "error"
)

// Event is one message on the live feed
type Event struct {
	Type    string      `json:"type"`
	Seq     uint64      `json:"seq"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload,omitempty"`
}

// RobotPayload accompanies EventRobot
type RobotPayload struct {
	Position grid.Position    `json:"position"`
	Paint    engine.PaintKind `json:"paint"`
}

// HighlightPayload accompanies EventHighlight
type HighlightPayload struct {
	Index int `json:"index"`
}

// ErrorPayload accompanies EventError and failed API calls
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClientMessage is sent by live feed clients to drive the engine
type ClientMessage struct {
	Type    string `json:"type"`
	Program string `json:"program,omitempty"`
}

func encodeEvent(typ string, seq uint64, payload interface{}) []byte {
	data, err := json.Marshal(Event{Type: typ, Seq: seq, Time: time.Now().UTC(), Payload: payload})
	if err != nil {
		data, _ = json.Marshal(Event{Type: EventError, Seq: seq, Payload: ErrorPayload{Code: "INTERNAL", Message: err.Error()}})
	}
	return data
}
