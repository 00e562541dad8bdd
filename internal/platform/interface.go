package platform

import (
	"context"
)

// Channel defines a runtime adapter between Beacon and a chat platform.
// Implementations are responsible for receiving inbound events and sending
// outbound responses for a specific platform provider (for example Telegram).
type Channel interface {
	// ID returns the unique configured channel identifier.
	ID() string

	// Type returns the platform provider type used for routing.
	Type() Type

	// Start begins the channel receive loop and should block until the context
	// is canceled or a fatal error occurs.
	Start(ctx context.Context) error

	// Stop gracefully shuts down channel resources.
	Stop(ctx context.Context) error

	// SendMessage sends text content to the target chat.
	// chatID is provider-specific and is passed as a string for portability.
	SendMessage(ctx context.Context, chatID string, content string) error

	// Member resolves a user's membership in a community for permission
	// checks. Implementations that cannot introspect membership should
	// return ErrUnsupportedOperation.
	Member(ctx context.Context, communityID string, userID string) (Member, error)

	// RegisterMessageHandler registers the inbound message callback.
	// The handler is invoked for each incoming normalized Message.
	RegisterMessageHandler(handler func(ctx context.Context, msg *Message) error) error
}

// Member exposes the role introspection the command runner's permission model
// needs. Implementations wrap a provider-specific membership object.
type Member interface {
	// HasRole reports whether the member holds the given community role.
	HasRole(roleID string) bool

	// IsAdministrator reports whether the member carries the platform's
	// administrator permission, directly or through any of their roles.
	IsAdministrator() bool

	// IsOwner reports whether the member owns the community.
	IsOwner() bool
}

// Sender is the narrow outbound surface most components need. Channel
// implementations satisfy it.
type Sender interface {
	SendMessage(ctx context.Context, chatID string, content string) error
}
