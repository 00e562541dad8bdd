// Package gateway wires Beacon's runtime together: platform channels feed
// inbound messages through the dispatch pipeline, the chrono manager drives
// scheduled jobs, and a small HTTP surface reports health and metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzServer "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hzConsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	hzprom "github.com/hertz-contrib/monitor-prometheus"

	"github.com/beaconlabs/beacon/internal/chrono"
	"github.com/beaconlabs/beacon/internal/command"
	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/dmflow"
	"github.com/beaconlabs/beacon/internal/jobs"
	"github.com/beaconlabs/beacon/internal/pkg/logs"
	promx "github.com/beaconlabs/beacon/internal/pkg/prometheus"
	pkgutils "github.com/beaconlabs/beacon/internal/pkg/utils"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/platform/telegram"
	"github.com/beaconlabs/beacon/internal/store"
)

const metricsAddr = ":9100"

type Gateway struct {
	cfg        *config.Config
	st         *store.Store
	dir        *community.Directory
	table      *command.Table
	runner     *command.Runner
	registry   *chrono.Registry
	chronos    *chrono.Manager
	dms        *dmflow.Dispatcher
	channels   *platform.Registry
	httpServer *hzServer.Hertz

	runCtx    context.Context
	runCancel context.CancelFunc

	stopOnce sync.Once
	stopErr  error
}

func NewGateway(cfg *config.Config, st *store.Store) (*Gateway, error) {
	gw := &Gateway{
		cfg:      cfg,
		st:       st,
		dir:      community.NewDirectory(st),
		channels: platform.NewRegistry(),
	}

	registry, err := chrono.NewRegistry(jobs.All()...)
	if err != nil {
		return nil, fmt.Errorf("build chrono registry: %w", err)
	}
	gw.registry = registry

	table, err := command.NewTable(gw.builtinCommands()...)
	if err != nil {
		return nil, fmt.Errorf("build command table: %w", err)
	}
	gw.table = table
	gw.runner = command.NewRunner(table, st)

	timeout := time.Duration(cfg.Gateway.RequestTimeout) * time.Second
	gw.httpServer = hzServer.Default(
		hzServer.WithHostPorts(cfg.Gateway.Bind),
		hzServer.WithReadTimeout(timeout),
		hzServer.WithWriteTimeout(timeout),
		hzServer.WithExitWaitTime(5*time.Second),
		hzServer.WithTracer(hzprom.NewServerTracer(metricsAddr, "/metrics",
			hzprom.WithRegistry(promx.GetRegistry()))),
	)

	return gw, nil
}

func (gw *Gateway) Start(ctx context.Context) error {
	gw.runCtx, gw.runCancel = context.WithCancel(ctx)

	if err := gw.initHTTPServer(); err != nil {
		return fmt.Errorf("init http server: %w", err)
	}
	if err := gw.createChannels(gw.runCtx); err != nil {
		return fmt.Errorf("init channels: %w", err)
	}

	sender, err := gw.schedulerSender()
	if err != nil {
		return err
	}

	gw.dms = dmflow.NewDispatcher(sender, gw.cfg.Gateway.OperatorChatID,
		dmflow.NewSubmissionFlow(gw.st, sender),
		dmflow.NewTimezoneFlow(gw.st, sender),
	)

	if err := gw.syncChronos(gw.runCtx); err != nil {
		return fmt.Errorf("sync chronos: %w", err)
	}

	if gw.cfg.Scheduler.SchedulerEnabled() {
		gw.chronos = chrono.NewManager(gw.registry, gw.st, gw.dir, sender, gw.st,
			chrono.WithTickInterval(time.Duration(gw.cfg.Scheduler.TickMinutes)*time.Minute))
		gw.chronos.Start(gw.runCtx)
	} else {
		logs.CtxInfo(gw.runCtx, "[gateway] scheduler disabled by config")
	}

	// Receive loops launch only after every downstream of handleMessage is
	// wired, so an early inbound message cannot hit a half-built gateway.
	gw.startChannels(gw.runCtx)
	go gw.httpServer.Spin()

	return nil
}

func (gw *Gateway) Stop(ctx context.Context) error {
	gw.stopOnce.Do(func() {
		if gw.runCancel != nil {
			gw.runCancel()
		}

		if gw.chronos != nil {
			gw.chronos.Stop(ctx)
		}

		for _, ch := range gw.channels.List() {
			if err := ch.Stop(ctx); err != nil {
				logs.CtxWarn(ctx, "[gateway] stop channel %s error: %v", ch.ID(), err)
			}
		}

		if err := gw.httpServer.Shutdown(ctx); err != nil {
			logs.CtxWarn(ctx, "[gateway] shutdown http server error: %v", err)
		}

		logs.CtxInfo(ctx, "[gateway] all resources stopped")
	})
	return gw.stopErr
}

// ChronoManager exposes the scheduler for CLI-driven manual runs.
func (gw *Gateway) ChronoManager() *chrono.Manager {
	return gw.chronos
}

// createChannels builds and registers every enabled channel adapter without
// starting its receive loop.
func (gw *Gateway) createChannels(ctx context.Context) error {
	for id, chCfg := range gw.cfg.Channels {
		chCfg.ID = id
		if !chCfg.Enabled {
			logs.CtxInfo(ctx, "[gateway] channel #%s is disabled, skipping", id)
			continue
		}

		ch, err := newChannel(id, chCfg)
		if err != nil {
			logs.CtxError(ctx, "[gateway] create channel #%s error: %v", id, err)
			return fmt.Errorf("create channel %s: %w", id, err)
		}

		if err = ch.RegisterMessageHandler(gw.handleMessage); err != nil {
			return fmt.Errorf("register handler for channel %s: %w", id, err)
		}

		if err = gw.channels.Register(ch); err != nil {
			return fmt.Errorf("register channel %s: %w", id, err)
		}
	}

	if gw.channels.Len() == 0 {
		return errors.New("no enabled channels configured")
	}
	return nil
}

func (gw *Gateway) startChannels(ctx context.Context) {
	for _, ch := range gw.channels.List() {
		go func(ch platform.Channel) {
			logs.CtxInfo(ctx, "[gateway] starting channel #%s (%s)", ch.ID(), ch.Type())
			if err := ch.Start(ctx); err != nil {
				logs.CtxError(ctx, "[gateway] channel #%s stopped with error: %v", ch.ID(), err)
			}
		}(ch)
	}
}

func newChannel(id string, cfg config.ChannelConfig) (platform.Channel, error) {
	switch platform.Type(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case platform.Telegram:
		return telegram.NewChannel(id, &cfg)
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", cfg.Type)
	}
}

// schedulerSender picks the adapter scheduled jobs and DM flows send
// through: the configured one, or the only enabled channel.
func (gw *Gateway) schedulerSender() (platform.Channel, error) {
	if id := gw.cfg.Scheduler.ChannelID; id != "" {
		return gw.channels.Get(id)
	}

	list := gw.channels.List()
	if len(list) == 0 {
		return nil, errors.New("no channel available for scheduler")
	}
	return list[0], nil
}

// syncChronos pushes registry definitions into the store and creates any
// missing instance rows for known communities.
func (gw *Gateway) syncChronos(ctx context.Context) error {
	if err := gw.st.SyncChronos(ctx, gw.registry.Defs()); err != nil {
		return err
	}

	ids, err := gw.st.ListCommunityIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := gw.st.EnsureChronoInstances(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (gw *Gateway) initHTTPServer() error {
	gw.httpServer.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(hzConsts.StatusOK, utils.H{"status": "ok"})
	})
	return nil
}

// handleMessage is the inbound pipeline: direct messages go to the DM flow
// dispatcher; community messages are parsed against the community's prefix
// and run through the command runner. Both sinks absorb their own errors.
func (gw *Gateway) handleMessage(ctx context.Context, msg *platform.Message) error {
	logs.CtxDebug(ctx, "[msg] -> (%s#%s) %s", msg.ChannelType, msg.UserID, pkgutils.Truncate80(msg.Content))

	if msg.Direct {
		gw.dms.Process(ctx, msg)
		return nil
	}

	cfg, err := gw.dir.Get(ctx, msg.CommunityID)
	if err != nil {
		if errors.Is(err, community.ErrNotFound) {
			logs.CtxDebug(ctx, "[gateway] message from unknown community %s, ignoring", msg.CommunityID)
			return nil
		}
		return fmt.Errorf("resolve community %s: %w", msg.CommunityID, err)
	}

	inv := command.Parse(msg.Content, cfg.Prefix)
	if inv == nil {
		return nil
	}

	ch, err := gw.channels.Get(msg.ChannelID)
	if err != nil {
		return fmt.Errorf("channel %s not found: %w", msg.ChannelID, err)
	}

	gw.runner.Invoke(ctx, &command.Request{
		Inv:     inv,
		Msg:     msg,
		Config:  cfg,
		Channel: ch,
		Store:   gw.st,
	})
	return nil
}
