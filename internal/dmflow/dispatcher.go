package dmflow

import (
	"context"
	"fmt"

	"github.com/beaconlabs/beacon/internal/pkg/logs"
	"github.com/beaconlabs/beacon/internal/platform"
)

// Dispatcher tries flows in priority order and hands the message to the
// first one that claims it. Errors are fail-closed: a failing predicate or
// handler is reported to the operator chat and no further flows are tried
// for that message.
type Dispatcher struct {
	flows          []Flow
	sender         platform.Sender
	operatorChatID string
}

func NewDispatcher(sender platform.Sender, operatorChatID string, flows ...Flow) *Dispatcher {
	return &Dispatcher{
		flows:          flows,
		sender:         sender,
		operatorChatID: operatorChatID,
	}
}

// Process never returns an error to its caller; the dispatcher is an
// error-absorbing boundary like the command runner.
func (d *Dispatcher) Process(ctx context.Context, msg *platform.Message) {
	for _, flow := range d.flows {
		claims, err := flow.Claims(ctx, msg)
		if err != nil {
			logs.CtxError(ctx, "[dmflow] %s claim check failed: %v", flow.Name(), err)
			d.reportFailure(ctx, flow.Name(), err)
			return
		}
		if !claims {
			continue
		}

		if err := flow.Handle(ctx, msg); err != nil {
			logs.CtxError(ctx, "[dmflow] %s handler failed: %v", flow.Name(), err)
			d.reportFailure(ctx, flow.Name(), err)
		}
		return
	}
}

func (d *Dispatcher) reportFailure(ctx context.Context, flowName string, flowErr error) {
	if d.operatorChatID == "" {
		return
	}
	text := fmt.Sprintf("dm flow %s failed: %v", flowName, flowErr)
	if err := d.sender.SendMessage(ctx, d.operatorChatID, text); err != nil {
		logs.CtxWarn(ctx, "[dmflow] report failure to operator chat: %v", err)
	}
}
