package command

import (
	"context"
	"fmt"

	"github.com/beaconlabs/beacon/internal/pkg/logs"
	promx "github.com/beaconlabs/beacon/internal/pkg/prometheus"
)

// Features gates commands on per-community feature flags.
type Features interface {
	FeatureEnabled(ctx context.Context, communityID, feature string) (bool, error)
}

// Runner resolves invocations against the table, enforces permissions, and
// invokes handlers. Invoke never returns an error: every failure mode is
// converted into a reply so a single bad command cannot take the process
// down.
type Runner struct {
	table    *Table
	features Features
}

func NewRunner(table *Table, features Features) *Runner {
	return &Runner{table: table, features: features}
}

func (r *Runner) Invoke(ctx context.Context, req *Request) {
	attempted := req.Config.Prefix + req.Inv.Name

	reg, ok := r.table.Lookup(req.Inv.Name)
	if !ok {
		promx.CommandInvocations.WithLabelValues("unknown").Inc()
		r.reply(ctx, req, fmt.Sprintf("unknown command %s", attempted))
		return
	}

	if reg.RequiredFeature != "" {
		enabled, err := r.features.FeatureEnabled(ctx, req.Msg.CommunityID, reg.RequiredFeature)
		if err != nil {
			logs.CtxError(ctx, "[command] feature check for %s failed: %v", attempted, err)
			promx.CommandInvocations.WithLabelValues("error").Inc()
			r.reply(ctx, req, fmt.Sprintf("something went wrong running %s: %s", attempted, err.Error()))
			return
		}
		// A disabled feature hides its commands entirely rather than
		// explaining the flag.
		if !enabled {
			promx.CommandInvocations.WithLabelValues("unknown").Inc()
			r.reply(ctx, req, fmt.Sprintf("unknown command %s", attempted))
			return
		}
	}

	if reg.Permission == AdminOnly {
		allowed, err := r.memberIsAdmin(ctx, req)
		if err != nil {
			logs.CtxError(ctx, "[command] member lookup for %s failed: %v", attempted, err)
			promx.CommandInvocations.WithLabelValues("error").Inc()
			r.reply(ctx, req, fmt.Sprintf("something went wrong running %s: %s", attempted, err.Error()))
			return
		}
		if !allowed {
			promx.CommandInvocations.WithLabelValues("denied").Inc()
			r.reply(ctx, req, fmt.Sprintf("%s requires %s privileges", attempted, reg.Permission))
			return
		}
	}

	if err := reg.Handler(ctx, req); err != nil {
		logs.CtxWarn(ctx, "[command] %s failed: %v", attempted, err)
		promx.CommandInvocations.WithLabelValues("error").Inc()
		r.reply(ctx, req, fmt.Sprintf("something went wrong running %s: %s", attempted, err.Error()))
		return
	}

	promx.CommandInvocations.WithLabelValues("ok").Inc()
}

// memberIsAdmin passes when the member holds the community's configured
// admin role, carries the platform administrator permission through any
// role, or owns the community.
func (r *Runner) memberIsAdmin(ctx context.Context, req *Request) (bool, error) {
	member, err := req.Channel.Member(ctx, req.Msg.CommunityID, req.Msg.UserID)
	if err != nil {
		return false, fmt.Errorf("resolve member %s: %w", req.Msg.UserID, err)
	}

	if req.Config.AdminRoleID != "" && member.HasRole(req.Config.AdminRoleID) {
		return true, nil
	}
	return member.IsAdministrator() || member.IsOwner(), nil
}

func (r *Runner) reply(ctx context.Context, req *Request, text string) {
	if err := req.Reply(ctx, text); err != nil {
		logs.CtxWarn(ctx, "[command] send reply failed: %v", err)
	}
}
