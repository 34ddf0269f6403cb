package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/opsplane/incidentbot/presentation/blocks"
)

func testSeverities() []entity.Severity {
	return []entity.Severity{
		{ID: "sev1", Description: "critical", ReminderMinutes: 30},
		{ID: "sev2", Description: "high", ReminderMinutes: 30},
		{ID: "sev3", Description: "low"},
	}
}

func testIncident() *entity.Incident {
	return &entity.Incident{
		ChannelID:   "C1",
		ChannelName: "inc-test",
		IncidentID:  "inc-test",
		Description: "api errors",
		Status:      "investigating",
		Severity:    "sev2",
	}
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "Incident Commander", blocks.RoleDisplayName("incident_commander"))
	assert.Equal(t, "Technical Lead", blocks.RoleDisplayName("technical_lead"))
	assert.Equal(t, "Resolved", blocks.RoleDisplayName("resolved"))
}

func TestExtractAttributeRoundTrip(t *testing.T) {
	digest := blocks.Digest("inc-test", "C1", "api errors", false, "investigating", "sev2", "")

	severity, err := blocks.ExtractAttribute(digest, "severity")
	require.NoError(t, err)
	assert.Equal(t, "sev2", severity)

	status, err := blocks.ExtractAttribute(digest, "status")
	require.NoError(t, err)
	assert.Equal(t, "investigating", status)

	_, err = blocks.ExtractAttribute(digest, "owner")
	assert.Error(t, err)
}

func TestReplaceSectionText(t *testing.T) {
	digest := blocks.Digest("inc-test", "C1", "api errors", false, "investigating", "sev2", "")

	updated, err := blocks.ReplaceSectionText(digest, blocks.DigestSeverityBlockID, blocks.DigestSeverityText("sev1"))
	require.NoError(t, err)

	severity, err := blocks.ExtractAttribute(updated, "severity")
	require.NoError(t, err)
	assert.Equal(t, "sev1", severity)

	// untouched sections survive the rewrite
	status, err := blocks.ExtractAttribute(updated, "status")
	require.NoError(t, err)
	assert.Equal(t, "investigating", status)

	_, err = blocks.ReplaceSectionText(digest, "no_such_block", "text")
	assert.Error(t, err)
}

func TestRoleOwnerRoundTrip(t *testing.T) {
	roles := []string{entity.RoleIncidentCommander, "technical_lead"}
	blockSet := blocks.Boilerplate(testIncident(), roles, testSeverities())

	owner, err := blocks.ExtractRoleOwner(blockSet, entity.RoleIncidentCommander)
	require.NoError(t, err)
	assert.Equal(t, entity.UnassignedRole, owner)

	updated, err := blocks.ReplaceSectionText(blockSet,
		blocks.RoleBlockID(entity.RoleIncidentCommander),
		blocks.RoleText(entity.RoleIncidentCommander, "U123"))
	require.NoError(t, err)

	owner, err = blocks.ExtractRoleOwner(updated, entity.RoleIncidentCommander)
	require.NoError(t, err)
	assert.Equal(t, "U123", owner)

	// sibling role unaffected
	owner, err = blocks.ExtractRoleOwner(updated, "technical_lead")
	require.NoError(t, err)
	assert.Equal(t, entity.UnassignedRole, owner)
}

func TestWithStatusOption(t *testing.T) {
	blockSet := blocks.Boilerplate(testIncident(), []string{entity.RoleIncidentCommander}, testSeverities())

	updated, err := blocks.WithStatusOption(blockSet, "monitoring")
	require.NoError(t, err)
	assert.False(t, blocks.ResolutionGuarded(updated))

	updated, err = blocks.WithResolutionGuard(updated)
	require.NoError(t, err)
	assert.True(t, blocks.ResolutionGuarded(updated))
}

func TestWithSeverityOption(t *testing.T) {
	blockSet := blocks.Boilerplate(testIncident(), []string{entity.RoleIncidentCommander}, testSeverities())

	_, err := blocks.WithSeverityOption(blockSet, "sev1")
	require.NoError(t, err)

	_, err = blocks.WithSeverityOption(nil, "sev1")
	assert.Error(t, err)
}
