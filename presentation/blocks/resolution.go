package blocks

import "github.com/slack-go/slack"

// ResolutionMessage is posted to the incident channel when the incident is
// marked resolved.
func ResolutionMessage() []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject("plain_text", ":white_check_mark: Incident resolved", false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				"This incident has been marked *Resolved*.\n\nAn RCA channel has been created for the follow-up. Responders holding a role have been invited; please continue the retrospective there.",
				false,
				false,
			),
			nil,
			nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				"If the incident recurs, set the status back and response handling resumes in this channel.",
				false,
				false,
			),
			nil,
			nil,
		),
	}
}
