package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/consts"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/platform/telegram"
)

var msgHwd = &MsgRunner{}

// MsgRunner sends a one-off message through a configured channel. Useful
// for verifying channel credentials and for operator announcements.
type MsgRunner struct{}

func (r *MsgRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "msg",
		Usage: "Send a one-off message through a configured channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the runtime config file",
				Value:   consts.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Channel ID defined in the config file",
			},
			&cli.StringFlag{
				Name:  "chat",
				Usage: "Target chat ID or user ID",
			},
			&cli.StringFlag{
				Name:    "content",
				Aliases: []string{"m"},
				Usage:   "Message body",
			},
		},
		Action: r.run,
	}
}

func (r *MsgRunner) run(ctx context.Context, cmd *cli.Command) error {
	channelID := strings.TrimSpace(cmd.String("channel"))
	if channelID == "" {
		return errors.New("--channel is required")
	}

	chatID := strings.TrimSpace(cmd.String("chat"))
	if chatID == "" {
		return errors.New("--chat is required")
	}

	content := strings.TrimSpace(cmd.String("content"))
	if content == "" {
		return errors.New("--content cannot be empty")
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	chCfg, ok := cfg.Channels[channelID]
	if !ok {
		return fmt.Errorf("channel %q was not found in the configured channels", channelID)
	}

	if err := r.send(ctx, chCfg, chatID, content); err != nil {
		return err
	}

	fmt.Printf("Sent message via %s channel %s to target %s\n", chCfg.Type, chCfg.ID, chatID)
	return nil
}

func (r *MsgRunner) send(ctx context.Context, chCfg config.ChannelConfig, chatID, content string) error {
	switch platform.Type(chCfg.Type) {
	case platform.Telegram:
		ch, err := telegram.NewChannel(chCfg.ID, &chCfg)
		if err != nil {
			return fmt.Errorf("create telegram channel: %w", err)
		}
		defer func() {
			_ = ch.Stop(ctx)
		}()

		if err := ch.SendMessage(ctx, chatID, content); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("channel type %q is not supported by the msg command", chCfg.Type)
	}
}
