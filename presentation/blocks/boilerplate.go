package blocks

import (
	"fmt"
	"strings"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/slack-go/slack"
)

const (
	StatusBlockID   = "status"
	SeverityBlockID = "severity"
)

// Boilerplate renders the pinned control message in the incident channel:
// status and severity selects, one claimable section per role, an assignment
// select per role, and the housekeeping buttons.
func Boilerplate(incident *entity.Incident, roles []string, severities []entity.Severity) []slack.Block {
	statusOptions := make([]*slack.OptionBlockObject, 0, len(entity.StatusList))
	for _, status := range entity.StatusList {
		statusOptions = append(statusOptions, slack.NewOptionBlockObject(
			status,
			slack.NewTextBlockObject(slack.PlainTextType, RoleDisplayName(status), false, false),
			nil,
		))
	}

	severityOptions := make([]*slack.OptionBlockObject, 0, len(severities))
	for _, severity := range severities {
		severityOptions = append(severityOptions, slack.NewOptionBlockObject(
			severity.ID,
			slack.NewTextBlockObject(slack.PlainTextType, strings.ToUpper(severity.ID), false, false),
			nil,
		))
	}

	blockSet := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf(":rotating_light: %s", incident.IncidentID), false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Description:*\n%s", incident.Description), false, false),
			nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Status*", false, false),
			nil,
			slack.NewAccessory(slack.NewOptionsSelectBlockElement(
				slack.OptTypeStatic,
				slack.NewTextBlockObject(slack.PlainTextType, "Set status", false, false),
				"incident.set_status",
				statusOptions...,
			)),
			slack.SectionBlockOptionBlockID(StatusBlockID),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Severity*", false, false),
			nil,
			slack.NewAccessory(slack.NewOptionsSelectBlockElement(
				slack.OptTypeStatic,
				slack.NewTextBlockObject(slack.PlainTextType, "Set severity", false, false),
				"incident.set_severity",
				severityOptions...,
			)),
			slack.SectionBlockOptionBlockID(SeverityBlockID),
		),
		slack.NewDividerBlock(),
	}

	for _, role := range roles {
		blockSet = append(blockSet,
			RoleSection(role, incident.RoleHolder(role)),
			slack.NewActionBlock(
				fmt.Sprintf("assign_%s", role),
				slack.NewOptionsSelectBlockElement(
					slack.OptTypeUser,
					slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf("Assign %s", RoleDisplayName(role)), false, false),
					"incident.assign_role",
				),
			),
		)
	}

	blockSet = append(blockSet,
		slack.NewDividerBlock(),
		slack.NewActionBlock(
			"incident_controls",
			slack.NewButtonBlockElement(
				"incident.export_chat_logs",
				"export",
				slack.NewTextBlockObject(slack.PlainTextType, "Export Chat Logs", false, false),
			),
			slack.NewButtonBlockElement(
				"incident.archive_channel",
				"archive",
				slack.NewTextBlockObject(slack.PlainTextType, "Archive Channel", false, false),
			),
		),
	)
	return blockSet
}
