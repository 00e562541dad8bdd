package platform

import (
	"errors"
)

var (
	ErrUnsupportedOperation = errors.New("platform operation is not supported")
	ErrMemberNotFound       = errors.New("member not found")
)

type Type string

const (
	Telegram Type = "telegram"
)

var SupportedPlatforms = []Type{
	Telegram,
}

// Message is a normalized inbound chat event. CommunityID is empty for
// direct messages.
type Message struct {
	ID          string
	ChannelID   string // configured adapter ID
	ChannelType Type
	CommunityID string
	UserID      string
	ChatID      string
	Content     string
	Direct      bool
	Metadata    map[string]string
}
