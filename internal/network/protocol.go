package network

import (
	"encoding/json"
	"fmt"
	"time"

	"astarviz/internal/grid"
	"astarviz/internal/search"
)

type MessageType string

const (
	MessageExplored MessageType = "explored"
	MessageFrontier MessageType = "frontier"
	MessagePath     MessageType = "path"
	MessageState    MessageType = "state"
	MessageReset    MessageType = "reset"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

// CellEvent carries the cell of an explored, frontier or path notification.
type CellEvent struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c CellEvent) Position() grid.Position {
	return grid.Pos(c.X, c.Y)
}

// StateEvent carries a lifecycle change. Reset messages use it as well.
type StateEvent struct {
	State string `json:"state"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// Cell decodes the payload of a cell notification.
func (e Envelope) Cell() (grid.Position, error) {
	switch e.Type {
	case MessageExplored, MessageFrontier, MessagePath:
	default:
		return grid.Position{}, fmt.Errorf("network: %s message has no cell", e.Type)
	}
	var ev CellEvent
	if err := json.Unmarshal(e.Payload, &ev); err != nil {
		return grid.Position{}, fmt.Errorf("network: decode %s payload: %w", e.Type, err)
	}
	return ev.Position(), nil
}

// State decodes the payload of a state or reset message.
func (e Envelope) State() (search.State, error) {
	if e.Type != MessageState && e.Type != MessageReset {
		return search.StateIdle, fmt.Errorf("network: %s message has no state", e.Type)
	}
	var ev StateEvent
	if err := json.Unmarshal(e.Payload, &ev); err != nil {
		return search.StateIdle, fmt.Errorf("network: decode %s payload: %w", e.Type, err)
	}
	s, ok := search.ParseState(ev.State)
	if !ok {
		return search.StateIdle, fmt.Errorf("network: unknown state %q", ev.State)
	}
	return s, nil
}
