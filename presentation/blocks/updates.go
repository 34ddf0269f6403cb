package blocks

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// RoleUpdate announces a role change in the incident channel.
func RoleUpdate(role, userName string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf(":wave: *%s* is now *%s* for this incident.", userName, RoleDisplayName(role)),
				false,
				false,
			),
			nil,
			nil,
		),
	}
}

func StatusUpdate(status string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf(":warning: The incident status is now *%s*.", RoleDisplayName(status)),
				false,
				false,
			),
			nil,
			nil,
		),
	}
}

func SeverityUpdate(severity string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf(":vertical_traffic_light: The incident severity is now *%s*.", strings.ToUpper(severity)),
				false,
				false,
			),
			nil,
			nil,
		),
	}
}
