package blocks

import (
	"fmt"

	"github.com/slack-go/slack"
)

// RoleNotification is the direct message sent to a user who was given a role.
func RoleNotification(role, channelID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf("You have been assigned *%s* for the incident in <#%s>.\nPlease head over to the channel and introduce yourself.", RoleDisplayName(role), channelID),
				false,
				false,
			),
			nil,
			nil,
		),
	}
}
