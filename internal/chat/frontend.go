// Package chat provides a unified interface for chat frontends.
package chat

import (
	"context"
)

// EventKind distinguishes the normalized inbound event types.
type EventKind int

const (
	// EventText is a free-text message.
	EventText EventKind = iota
	// EventButton is a discrete button press carrying an action tag.
	EventButton
	// EventRestart is the explicit restart command.
	EventRestart
	// EventCancel is the explicit cancel command.
	EventCancel
)

// Event is a normalized inbound chat event from any frontend.
type Event struct {
	Kind       EventKind
	UserID     string
	ChatID     string
	MessageID  string
	SenderName string
	Text       string // free text, EventText only
	Action     string // opaque action tag, EventButton only
}

// Button is one inline button: a label and the action tag its press emits.
type Button struct {
	Label  string
	Action string
}

// Audio describes an audio file delivery with caption and tag metadata.
type Audio struct {
	Path      string
	Caption   string
	Title     string
	Performer string
}

// Frontend defines the unified interface for all chat integrations.
type Frontend interface {
	// Start initializes the frontend.
	Start(ctx context.Context) error

	// Listen blocks, delivering each normalized inbound event to handler.
	Listen(ctx context.Context, handler func(*Event)) error

	// SendText sends a text message and returns its message ID. Long texts
	// are split at the transport limit; the last chunk's ID is returned.
	SendText(ctx context.Context, chatID, text string) (string, error)

	// SendButtons sends a text message with inline button rows.
	SendButtons(ctx context.Context, chatID, text string, rows [][]Button) (string, error)

	// EditText replaces the text of a previously sent message.
	EditText(ctx context.Context, chatID, messageID, text string) error

	// EditButtons replaces the text and buttons of a previously sent message.
	EditButtons(ctx context.Context, chatID, messageID, text string, rows [][]Button) error

	// DeleteMessage deletes a message by its ID.
	DeleteMessage(ctx context.Context, chatID, messageID string) error

	// SendAudio uploads an audio file with caption and title/performer tags.
	SendAudio(ctx context.Context, chatID string, audio *Audio) error
}
