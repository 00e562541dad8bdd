// Package jobs carries Beacon's bundled chrono definitions.
package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/beaconlabs/beacon/internal/chrono"
)

// BirthdayAnnounce posts today's birthdays into the community's announce
// channel every morning.
func BirthdayAnnounce() chrono.Definition {
	return chrono.Definition{
		Handle:          "birthday-announce",
		UTCHour:         7,
		RequiredFeature: "birthdays",
		Run:             runBirthdayAnnounce,
	}
}

func runBirthdayAnnounce(ctx context.Context, rc *chrono.RunContext) error {
	local := rc.Now.In(communityLocation(rc.Config.Timezone))
	month := int(local.Month())
	day := local.Day()

	users, err := rc.Store.BirthdaysOn(ctx, rc.CommunityID, month, day)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	if rc.Config.AnnounceChannelID == "" {
		return fmt.Errorf("no announce channel configured")
	}

	mentions := make([]string, 0, len(users))
	for _, id := range users {
		mentions = append(mentions, "@"+id)
	}

	text := fmt.Sprintf("Happy birthday %s! 🎂", strings.Join(mentions, ", "))
	return rc.Sender.SendMessage(ctx, rc.Config.AnnounceChannelID, text)
}
