package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beaconlabs/beacon/internal/command"
	"github.com/beaconlabs/beacon/internal/store"
)

// builtinCommands returns the registrations always carried by the gateway.
// Anything community-facing beyond these arrives as external handler
// modules.
func (gw *Gateway) builtinCommands() []*command.Registration {
	return []*command.Registration{
		{
			Name:    "ping",
			Help:    "Check whether the bot is alive",
			Handler: cmdPing,
		},
		{
			Name:    "help",
			Aliases: []string{"commands"},
			Help:    "Show available commands",
			Handler: gw.cmdHelp,
		},
		{
			Name:            "birthday",
			Aliases:         []string{"bday"},
			RequiredFeature: "birthdays",
			Help:            "Register your birthday, e.g. birthday 05 December",
			Handler:         cmdBirthday,
		},
		{
			Name:       "prefix",
			Permission: command.AdminOnly,
			Help:       "Change the community command prefix",
			Handler:    gw.cmdPrefix,
		},
		{
			Name:       "feature",
			Permission: command.AdminOnly,
			Help:       "Toggle a feature flag: feature <name> on|off",
			Handler:    cmdFeature,
		},
		{
			Name:       "chrono",
			Aliases:    []string{"chronos"},
			Permission: command.AdminOnly,
			Help:       "Manage scheduled jobs: chrono list | run <handle> | enable <handle> | disable <handle>",
			Handler:    gw.cmdChrono,
		},
		{
			Name:       "reload",
			Permission: command.AdminOnly,
			Help:       "Drop the cached community configuration",
			Handler:    gw.cmdReload,
		},
	}
}

func cmdPing(ctx context.Context, req *command.Request) error {
	return req.Reply(ctx, "pong")
}

func (gw *Gateway) cmdHelp(ctx context.Context, req *command.Request) error {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, reg := range gw.table.List() {
		fmt.Fprintf(&b, "  %s%s - %s\n", req.Config.Prefix, reg.Name, reg.Help)
	}
	return req.Reply(ctx, b.String())
}

var monthsByName = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		monthsByName[strings.ToLower(m.String())] = m
	}
}

func cmdBirthday(ctx context.Context, req *command.Request) error {
	if len(req.Inv.Args) != 2 {
		return fmt.Errorf("usage: %sbirthday <day> <month>", req.Config.Prefix)
	}

	day, err := strconv.Atoi(req.Inv.Args[0])
	if err != nil || day < 1 || day > 31 {
		return fmt.Errorf("%q is not a valid day of the month", req.Inv.Args[0])
	}

	monthArg := strings.ToLower(req.Inv.Args[1])
	month, ok := monthsByName[monthArg]
	if !ok {
		if n, err := strconv.Atoi(monthArg); err == nil && n >= 1 && n <= 12 {
			month = time.Month(n)
		} else {
			return fmt.Errorf("%q is not a valid month", req.Inv.Args[1])
		}
	}

	err = req.Store.SetBirthday(ctx, &store.Birthday{
		CommunityID: req.Msg.CommunityID,
		UserID:      req.Msg.UserID,
		Month:       int(month),
		Day:         day,
	})
	if err != nil {
		return err
	}
	return req.Reply(ctx, fmt.Sprintf("Got it, your birthday is %d %s.", day, month))
}

func (gw *Gateway) cmdPrefix(ctx context.Context, req *command.Request) error {
	if len(req.Inv.Args) != 1 {
		return fmt.Errorf("usage: %sprefix <new-prefix>", req.Config.Prefix)
	}

	newPrefix := req.Inv.Args[0]
	if len(newPrefix) > 8 {
		return fmt.Errorf("prefix %q is too long", newPrefix)
	}

	if err := req.Store.SetPrefix(ctx, req.Msg.CommunityID, newPrefix); err != nil {
		return err
	}
	gw.dir.Invalidate()
	return req.Reply(ctx, fmt.Sprintf("Prefix changed to %s", newPrefix))
}

func cmdFeature(ctx context.Context, req *command.Request) error {
	if len(req.Inv.Args) != 2 {
		return fmt.Errorf("usage: %sfeature <name> on|off", req.Config.Prefix)
	}

	name := strings.ToLower(req.Inv.Args[0])
	var enabled bool
	switch strings.ToLower(req.Inv.Args[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("expected on or off, got %q", req.Inv.Args[1])
	}

	if err := req.Store.SetFeature(ctx, req.Msg.CommunityID, name, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return req.Reply(ctx, fmt.Sprintf("Feature %s is now %s.", name, state))
}

func (gw *Gateway) cmdChrono(ctx context.Context, req *command.Request) error {
	if len(req.Inv.Args) == 0 {
		return fmt.Errorf("usage: %schrono list | run <handle> | enable <handle> | disable <handle>", req.Config.Prefix)
	}

	switch req.Inv.Args[0] {
	case "list":
		var b strings.Builder
		b.WriteString("Scheduled jobs:\n")
		now := time.Now().UTC()
		for _, def := range gw.registry.List() {
			next, err := gw.registry.NextFire(def.Handle, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "  %s - %02d:00 UTC daily (next %s)\n",
				def.Handle, def.UTCHour, next.Format("2006-01-02 15:04"))
		}
		return req.Reply(ctx, b.String())

	case "run":
		if len(req.Inv.Args) != 2 {
			return fmt.Errorf("usage: %schrono run <handle>", req.Config.Prefix)
		}
		if gw.chronos == nil {
			return fmt.Errorf("scheduler is disabled")
		}
		handle := req.Inv.Args[1]
		if err := gw.chronos.RunNow(ctx, req.Msg.CommunityID, handle); err != nil {
			return err
		}
		return req.Reply(ctx, fmt.Sprintf("Chrono %s ran successfully.", handle))

	case "enable", "disable":
		if len(req.Inv.Args) != 2 {
			return fmt.Errorf("usage: %schrono %s <handle>", req.Config.Prefix, req.Inv.Args[0])
		}
		handle := req.Inv.Args[1]
		if _, ok := gw.registry.Get(handle); !ok {
			return fmt.Errorf("unknown chrono handle %q", handle)
		}
		enabled := req.Inv.Args[0] == "enable"
		if err := req.Store.SetChronoEnabled(ctx, req.Msg.CommunityID, handle, enabled); err != nil {
			if errors.Is(err, store.ErrChronoInstanceNotFound) {
				return fmt.Errorf("this community has no instance for %s", handle)
			}
			return err
		}
		return req.Reply(ctx, fmt.Sprintf("Chrono %s %sd.", handle, req.Inv.Args[0]))

	default:
		return fmt.Errorf("unknown chrono action %q", req.Inv.Args[0])
	}
}

func (gw *Gateway) cmdReload(ctx context.Context, req *command.Request) error {
	gw.dir.Invalidate()
	return req.Reply(ctx, "Community configuration cache cleared.")
}
