package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/beaconlabs/beacon/internal/chrono"
	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/consts"
	"github.com/beaconlabs/beacon/internal/jobs"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/platform/telegram"
	"github.com/beaconlabs/beacon/internal/store"
)

var chronoHwd = &ChronoRunner{}

// ChronoRunner inspects and triggers scheduled jobs from the command line.
type ChronoRunner struct{}

func (r *ChronoRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "chrono",
		Usage: "Inspect and trigger scheduled jobs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered chrono definitions",
				Action: r.list,
			},
			{
				Name:  "run",
				Usage: "Run one chrono for one community immediately",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the runtime config file",
						Value:   consts.DefaultConfigPath(),
					},
					&cli.StringFlag{Name: "community", Usage: "Community ID", Required: true},
					&cli.StringFlag{Name: "handle", Usage: "Chrono handle", Required: true},
				},
				Action: r.run,
			},
		},
	}
}

func (r *ChronoRunner) list(ctx context.Context, cmd *cli.Command) error {
	registry, err := chrono.NewRegistry(jobs.All()...)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, def := range registry.List() {
		next, err := registry.NextFire(def.Handle, now)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-20s %02d:00 UTC daily  next %s", def.Handle, def.UTCHour, next.Format("2006-01-02 15:04"))
		if def.RequiredFeature != "" {
			line += fmt.Sprintf("  (feature: %s)", def.RequiredFeature)
		}
		fmt.Println(line)
	}
	return nil
}

func (r *ChronoRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	registry, err := chrono.NewRegistry(jobs.All()...)
	if err != nil {
		return err
	}
	if err := st.SyncChronos(ctx, registry.Defs()); err != nil {
		return err
	}

	sender, err := r.sender(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = sender.Stop(ctx)
	}()

	manager := chrono.NewManager(registry, st, community.NewDirectory(st), sender, st)
	handle := cmd.String("handle")
	if err := manager.RunNow(ctx, cmd.String("community"), handle); err != nil {
		return err
	}

	fmt.Printf("Chrono %s ran successfully.\n", handle)
	return nil
}

// sender builds the channel scheduled sends go through, preferring the
// configured scheduler channel.
func (r *ChronoRunner) sender(cfg *config.Config) (platform.Channel, error) {
	chCfg, ok := cfg.Channels[cfg.Scheduler.ChannelID]
	if !ok {
		for _, one := range cfg.Channels {
			if one.Enabled {
				chCfg = one
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, errors.New("no enabled channel available to send through")
	}

	switch platform.Type(strings.ToLower(chCfg.Type)) {
	case platform.Telegram:
		return telegram.NewChannel(chCfg.ID, &chCfg)
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", chCfg.Type)
	}
}
