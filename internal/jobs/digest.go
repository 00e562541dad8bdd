package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/beaconlabs/beacon/internal/chrono"
)

// communityLocation resolves an IANA name, falling back to UTC for empty or
// unknown values.
func communityLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DailyDigest posts a short good-morning line into the announce channel.
func DailyDigest() chrono.Definition {
	return chrono.Definition{
		Handle:  "daily-digest",
		UTCHour: 9,
		Run:     runDailyDigest,
	}
}

func runDailyDigest(ctx context.Context, rc *chrono.RunContext) error {
	if rc.Config.AnnounceChannelID == "" {
		return fmt.Errorf("no announce channel configured")
	}

	local := rc.Now.In(communityLocation(rc.Config.Timezone))
	text := fmt.Sprintf("Good morning! Today is %s.", local.Format("Monday, 2 January 2006"))
	return rc.Sender.SendMessage(ctx, rc.Config.AnnounceChannelID, text)
}

// All returns every bundled chrono definition in registration order.
func All() []chrono.Definition {
	return []chrono.Definition{
		BirthdayAnnounce(),
		DailyDigest(),
	}
}
