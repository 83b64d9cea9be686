package ws

import "time"

// MessageType identifies a websocket message.
type MessageType string

const (
	MessageTypeStatus    MessageType = "status"
	MessageTypeCountdown MessageType = "countdown"
	MessageTypeFinished  MessageType = "finished"
	MessageTypeAction    MessageType = "action"
)

// Message is the envelope of everything pushed to websocket clients.
type Message struct {
	Type      MessageType `json:"type"`
	DeviceID  string      `json:"device_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// CountdownData is the payload of a countdown message.
type CountdownData struct {
	Action    string    `json:"action"`
	Active    bool      `json:"active"`
	Duration  string    `json:"duration,omitempty"`
	EndsAt    time.Time `json:"ends_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FinishedData is the payload of a finished message.
type FinishedData struct {
	Message string `json:"message"`
}
