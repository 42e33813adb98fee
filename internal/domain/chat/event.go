package chat

import "time"

// Event is an inbound message from the chat transport.
type Event interface {
	Sender() string
	isEvent()
}

type LocationEvent struct {
	ChatID    string
	Latitude  float64
	Longitude float64
	At        time.Time
	// Forwarded marks a location relayed from an earlier message or picked
	// as a venue. It says nothing about where the sender is now.
	Forwarded bool
}

type ContactEvent struct {
	ChatID      string
	PhoneNumber string
	FirstName   string
	LastName    string
	// IsOwn is true when the shared contact belongs to the sender.
	IsOwn bool
	At    time.Time
}

type TextEvent struct {
	ChatID string
	Text   string
	At     time.Time
}

type CommandEvent struct {
	ChatID string
	Name   string
	Args   string
	At     time.Time
}

func (e LocationEvent) Sender() string { return e.ChatID }
func (e ContactEvent) Sender() string  { return e.ChatID }
func (e TextEvent) Sender() string     { return e.ChatID }
func (e CommandEvent) Sender() string  { return e.ChatID }

func (LocationEvent) isEvent() {}
func (ContactEvent) isEvent()  {}
func (TextEvent) isEvent()     {}
func (CommandEvent) isEvent()  {}
