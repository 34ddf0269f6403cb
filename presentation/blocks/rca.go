package blocks

import (
	"fmt"

	"github.com/slack-go/slack"
)

// RCAPlanning is the kickoff message posted to the RCA channel. The document
// button is only rendered when an RCA document was actually created.
func RCAPlanning(incidentChannelID, rcaLink, archiveLink string) []slack.Block {
	blockSet := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject("plain_text", ":memo: Root cause analysis", false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				"mrkdwn",
				fmt.Sprintf("This channel hosts the retrospective for the incident handled in <#%s>.\nCollect findings here and complete the RCA document.", incidentChannelID),
				false,
				false,
			),
			nil,
			nil,
		),
	}

	if rcaLink != "" {
		viewButton := slack.NewButtonBlockElement(
			"rca.view_document",
			rcaLink,
			slack.NewTextBlockObject("plain_text", "View RCA", false, false),
		).WithStyle(slack.StylePrimary)
		viewButton.URL = rcaLink
		blockSet = append(blockSet, slack.NewActionBlock("rca_links", viewButton))
	}

	if archiveLink != "" {
		blockSet = append(blockSet, slack.NewContextBlock(
			"rca_archive",
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Original channel: %s", archiveLink), false, false),
		))
	}
	return blockSet
}
