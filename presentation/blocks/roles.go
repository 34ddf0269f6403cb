package blocks

import (
	"fmt"
	"strings"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/slack-go/slack"
)

func RoleBlockID(role string) string {
	return fmt.Sprintf("role_%s", role)
}

// RoleDisplayName turns a role key like incident_commander into
// "Incident Commander".
func RoleDisplayName(role string) string {
	words := strings.Split(role, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RoleText renders the body of a role section. The holder is either a user
// ID, referenced as a mention, or the unassigned sentinel rendered verbatim.
func RoleText(role, holder string) string {
	if holder == entity.UnassignedRole {
		return fmt.Sprintf("*%s*:\n %s", RoleDisplayName(role), entity.UnassignedRole)
	}
	return fmt.Sprintf("*%s*:\n <@%s>", RoleDisplayName(role), holder)
}

func RoleSection(role, holder string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, RoleText(role, holder), false, false),
		nil,
		slack.NewAccessory(
			slack.NewButtonBlockElement(
				"incident.claim_role",
				role,
				slack.NewTextBlockObject(slack.PlainTextType, "Claim", false, false),
			),
		),
		slack.SectionBlockOptionBlockID(RoleBlockID(role)),
	)
}

// ExtractRoleOwner reads the current holder back out of a rendered role
// section: the second line, stripped of spaces and mention markup.
func ExtractRoleOwner(blockSet []slack.Block, role string) (string, error) {
	text, err := SectionText(blockSet, RoleBlockID(role))
	if err != nil {
		return "", err
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("role block %s has no holder line", role)
	}
	holder := strings.ReplaceAll(lines[1], " ", "")
	holder = strings.NewReplacer("<", "", ">", "", "@", "").Replace(holder)
	return holder, nil
}
