package dmflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/store"
)

const timezoneFlowName = "timezone"

// timezoneState is the persisted session state for the questionnaire.
type timezoneState struct {
	Step string `json:"step"` // "asked"
}

// TimezoneFlow is a two-turn questionnaire: the user opens with "timezone",
// the flow asks for an IANA zone name, and the answer is validated and
// persisted.
type TimezoneFlow struct {
	store  *store.Store
	sender platform.Sender
}

func NewTimezoneFlow(st *store.Store, sender platform.Sender) *TimezoneFlow {
	return &TimezoneFlow{store: st, sender: sender}
}

func (f *TimezoneFlow) Name() string { return timezoneFlowName }

func (f *TimezoneFlow) Claims(ctx context.Context, msg *platform.Message) (bool, error) {
	_, exists, err := f.store.GetDMSession(ctx, msg.UserID, timezoneFlowName)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	return strings.EqualFold(strings.TrimSpace(msg.Content), "timezone"), nil
}

func (f *TimezoneFlow) Handle(ctx context.Context, msg *platform.Message) error {
	raw, exists, err := f.store.GetDMSession(ctx, msg.UserID, timezoneFlowName)
	if err != nil {
		return err
	}

	if !exists {
		state, err := sonic.MarshalString(timezoneState{Step: "asked"})
		if err != nil {
			return fmt.Errorf("marshal session state: %w", err)
		}
		if err := f.store.PutDMSession(ctx, msg.UserID, timezoneFlowName, state); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, msg.ChatID,
			"What timezone are you in? Reply with an IANA name like Europe/Amsterdam.")
	}

	var state timezoneState
	if err := sonic.UnmarshalString(raw, &state); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}

	answer := strings.TrimSpace(msg.Content)
	if _, err := time.LoadLocation(answer); err != nil {
		return f.sender.SendMessage(ctx, msg.ChatID,
			fmt.Sprintf("I don't recognize %q. Try a name like America/New_York.", answer))
	}

	if err := f.store.SetMemberTimezone(ctx, msg.UserID, answer); err != nil {
		return err
	}
	if err := f.store.DeleteDMSession(ctx, msg.UserID, timezoneFlowName); err != nil {
		return err
	}
	return f.sender.SendMessage(ctx, msg.ChatID, fmt.Sprintf("Saved your timezone as %s.", answer))
}
