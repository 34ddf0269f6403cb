package blocks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

const (
	DigestStatusBlockID   = "digest_channel_status"
	DigestSeverityBlockID = "digest_channel_severity"
)

// attributePattern picks the emphasized value out of a digest attribute
// line, e.g. "Severity: *SEV2*".
var attributePattern = regexp.MustCompile(`\*(.*?)\*`)

func DigestStatusText(status string) string {
	return fmt.Sprintf("Status:\n*%s*", RoleDisplayName(status))
}

func DigestSeverityText(severity string) string {
	return fmt.Sprintf("Severity:\n*%s*", strings.ToUpper(severity))
}

// Digest renders the announcement posted to the digest channel. The status
// and severity sections carry stable block IDs so later lifecycle changes
// can rewrite them in place.
func Digest(channelName, channelID, description string, security bool, status, severity, bridge string) []slack.Block {
	header := fmt.Sprintf(":fire: %s", channelName)
	if security {
		header = fmt.Sprintf(":lock: %s", channelName)
	}

	blockSet := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, header, false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Description:*\n%s", description), false, false),
			nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, DigestStatusText(status), false, false),
			nil, nil,
			slack.SectionBlockOptionBlockID(DigestStatusBlockID),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, DigestSeverityText(severity), false, false),
			nil, nil,
			slack.SectionBlockOptionBlockID(DigestSeverityBlockID),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Respond in <#%s>", channelID), false, false),
			nil, nil,
		),
	}

	if bridge != "" {
		blockSet = append(blockSet,
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Conference bridge: %s", bridge), false, false),
				nil, nil,
			),
		)
	}
	return blockSet
}

// ExtractAttribute reads a lifecycle attribute back out of a rendered digest.
// It returns the emphasized value of the digest_channel_<attribute> section,
// lowercased, so rendered "SEV2" reads back as "sev2".
func ExtractAttribute(blockSet []slack.Block, attribute string) (string, error) {
	text, err := SectionText(blockSet, fmt.Sprintf("digest_channel_%s", attribute))
	if err != nil {
		return "", err
	}
	m := attributePattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("no emphasized %s value in digest", attribute)
	}
	return strings.ToLower(m[1]), nil
}
