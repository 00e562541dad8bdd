// Package command implements Beacon's inbound dispatch pipeline: parsing raw
// text into invocations, the static command table, and the permission-checked
// runner that is the error-absorbing shell around handler code.
package command

import (
	"context"

	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/store"
)

// Permission is the level a member must hold to run a command.
type Permission int

const (
	General Permission = iota
	AdminOnly
)

func (p Permission) String() string {
	if p == AdminOnly {
		return "admin"
	}
	return "general"
}

// HandlerFunc executes one resolved invocation. Returned errors surface to
// the user as an error reply; they never propagate past the runner.
type HandlerFunc func(ctx context.Context, req *Request) error

// Registration describes a single command. Registrations are static and
// immutable after the table is built.
type Registration struct {
	Name            string
	Aliases         []string
	Permission      Permission
	RequiredFeature string
	Help            string
	Handler         HandlerFunc
}

// Request carries one invocation through the runner to its handler.
type Request struct {
	Inv     *Invocation
	Msg     *platform.Message
	Config  *community.Config
	Channel platform.Channel
	Store   *store.Store
}

// Reply sends text back to the originating chat.
func (req *Request) Reply(ctx context.Context, text string) error {
	return req.Channel.SendMessage(ctx, req.Msg.ChatID, text)
}
