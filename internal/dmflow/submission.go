package dmflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/store"
)

const submissionFlowName = "submission"

// submissionState walks collect -> confirm.
type submissionState struct {
	Step string `json:"step"` // "collecting", "confirming"
	Body string `json:"body,omitempty"`
}

// SubmissionFlow collects a free-text submission over multiple turns and
// persists it after an explicit confirmation.
type SubmissionFlow struct {
	store  *store.Store
	sender platform.Sender
}

func NewSubmissionFlow(st *store.Store, sender platform.Sender) *SubmissionFlow {
	return &SubmissionFlow{store: st, sender: sender}
}

func (f *SubmissionFlow) Name() string { return submissionFlowName }

func (f *SubmissionFlow) Claims(ctx context.Context, msg *platform.Message) (bool, error) {
	_, exists, err := f.store.GetDMSession(ctx, msg.UserID, submissionFlowName)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	return strings.EqualFold(strings.TrimSpace(msg.Content), "submit"), nil
}

func (f *SubmissionFlow) Handle(ctx context.Context, msg *platform.Message) error {
	raw, exists, err := f.store.GetDMSession(ctx, msg.UserID, submissionFlowName)
	if err != nil {
		return err
	}

	if !exists {
		if err := f.putState(ctx, msg.UserID, submissionState{Step: "collecting"}); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, msg.ChatID, "Send me the text you'd like to submit.")
	}

	var state submissionState
	if err := sonic.UnmarshalString(raw, &state); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}

	switch state.Step {
	case "collecting":
		body := strings.TrimSpace(msg.Content)
		if body == "" {
			return f.sender.SendMessage(ctx, msg.ChatID, "That was empty. Send me the text you'd like to submit.")
		}
		if err := f.putState(ctx, msg.UserID, submissionState{Step: "confirming", Body: body}); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, msg.ChatID,
			fmt.Sprintf("Submit this? Reply yes or no.\n\n%s", body))

	case "confirming":
		answer := strings.ToLower(strings.TrimSpace(msg.Content))
		switch answer {
		case "yes", "y":
			if err := f.store.AddSubmission(ctx, msg.UserID, state.Body); err != nil {
				return err
			}
			if err := f.store.DeleteDMSession(ctx, msg.UserID, submissionFlowName); err != nil {
				return err
			}
			return f.sender.SendMessage(ctx, msg.ChatID, "Submission received, thank you!")
		case "no", "n":
			if err := f.store.DeleteDMSession(ctx, msg.UserID, submissionFlowName); err != nil {
				return err
			}
			return f.sender.SendMessage(ctx, msg.ChatID, "Discarded. Say \"submit\" to start over.")
		default:
			return f.sender.SendMessage(ctx, msg.ChatID, "Please reply yes or no.")
		}

	default:
		// Unknown step, reset the session rather than wedging the user.
		if err := f.store.DeleteDMSession(ctx, msg.UserID, submissionFlowName); err != nil {
			return err
		}
		return f.sender.SendMessage(ctx, msg.ChatID, "Something got out of sync; say \"submit\" to start over.")
	}
}

func (f *SubmissionFlow) putState(ctx context.Context, userID string, state submissionState) error {
	raw, err := sonic.MarshalString(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	return f.store.PutDMSession(ctx, userID, submissionFlowName, raw)
}
