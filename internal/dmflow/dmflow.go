// Package dmflow routes direct messages through an ordered list of stateful
// multi-turn flows. A flow claims a user's DM conversation through persisted
// session state; only one flow may handle a given message.
package dmflow

import (
	"context"

	"github.com/beaconlabs/beacon/internal/platform"
)

// Flow is one stateful private-conversation processor.
type Flow interface {
	// Name identifies the flow and keys its session rows.
	Name() string

	// Claims reports whether this flow currently owns the user's DM
	// conversation, usually by checking persisted session state.
	Claims(ctx context.Context, msg *platform.Message) (bool, error)

	// Handle advances the flow by one message.
	Handle(ctx context.Context, msg *platform.Message) error
}
