package blocks

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// StatusReminder is the recurring nudge posted while a high-severity
// incident stays open.
func StatusReminder(severity string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf(":hourglass_flowing_sand: This is a *%s* incident and it is still open.\nPlease post a status update for stakeholders, and set the status to *Resolved* when the impact is over.", strings.ToUpper(severity)),
				false,
				false,
			),
			nil,
			nil,
		),
	}
}
