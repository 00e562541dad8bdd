package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/beaconlabs/beacon/internal/consts"
	"github.com/beaconlabs/beacon/internal/store"
)

var communityHwd = &CommunityRunner{}

type CommunityRunner struct{}

func (r *CommunityRunner) cmd() *cli.Command {
	dbFlag := &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the database file",
		Value: consts.DefaultDatabasePath(),
	}

	return &cli.Command{
		Name:  "community",
		Usage: "Manage onboarded communities",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Onboard a community and create its chrono instances",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{Name: "id", Usage: "Community ID", Required: true},
					&cli.StringFlag{Name: "prefix", Usage: "Command prefix", Value: "!"},
					&cli.StringFlag{Name: "admin-role", Usage: "Admin role ID"},
					&cli.StringFlag{Name: "operator-channel", Usage: "Operator channel chat ID"},
					&cli.StringFlag{Name: "announce-channel", Usage: "Announce channel chat ID"},
					&cli.StringFlag{Name: "timezone", Usage: "IANA timezone for member-facing dates", Value: "UTC"},
				},
				Action: r.add,
			},
			{
				Name:  "remove",
				Usage: "Remove a community and its persisted state",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{Name: "id", Usage: "Community ID", Required: true},
				},
				Action: r.remove,
			},
			{
				Name:   "list",
				Usage:  "List onboarded communities",
				Flags:  []cli.Flag{dbFlag},
				Action: r.list,
			},
		},
	}
}

func (r *CommunityRunner) add(ctx context.Context, cmd *cli.Command) error {
	st, err := store.Open(cmd.String("db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	row := &store.CommunityRow{
		ID:                cmd.String("id"),
		Prefix:            cmd.String("prefix"),
		AdminRoleID:       cmd.String("admin-role"),
		OperatorChannelID: cmd.String("operator-channel"),
		AnnounceChannelID: cmd.String("announce-channel"),
		Timezone:          cmd.String("timezone"),
	}
	if _, err := time.LoadLocation(row.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", row.Timezone)
	}
	if err := st.UpsertCommunity(ctx, row); err != nil {
		return err
	}
	if err := st.EnsureChronoInstances(ctx, row.ID); err != nil {
		return err
	}

	fmt.Printf("Community %s onboarded with prefix %q.\n", row.ID, row.Prefix)
	return nil
}

func (r *CommunityRunner) remove(ctx context.Context, cmd *cli.Command) error {
	st, err := store.Open(cmd.String("db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	id := cmd.String("id")
	if err := st.RemoveCommunity(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Community %s removed.\n", id)
	return nil
}

func (r *CommunityRunner) list(ctx context.Context, cmd *cli.Command) error {
	st, err := store.Open(cmd.String("db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ids, err := st.ListCommunityIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No communities onboarded yet.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
