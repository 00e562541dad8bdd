package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/beaconlabs/beacon/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:  "beacon",
		Usage: "Beacon, your community companion bot",
		Commands: []*cli.Command{
			gwHwd.cmd(),
			communityHwd.cmd(),
			migrateHwd.cmd(),
			chronoHwd.cmd(),
			msgHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
