package entity

import "time"

// UnassignedRole marks a role slot that nobody holds yet.
const UnassignedRole = "_none_"

const RoleIncidentCommander = "incident_commander"

// StatusResolved is the only status with special semantics; every other
// status label is free-form and freely reachable.
const StatusResolved = "resolved"

// StatusList is the selectable lifecycle in display order. Resolved last.
var StatusList = []string{"investigating", "identified", "monitoring", StatusResolved}

type Incident struct {
	ChannelID            string            `json:"channel_id" dynamo:"channel_id,hash"`
	ChannelName          string            `json:"channel_name" dynamo:"channel_name"`
	IncidentID           string            `json:"incident_id" dynamo:"incident_id"`
	Description          string            `json:"description" dynamo:"description"`
	Status               string            `json:"status" dynamo:"status"`
	Severity             string            `json:"severity" dynamo:"severity"`
	Roles                map[string]string `json:"roles" dynamo:"roles"`
	BoilerplateMessageTS string            `json:"bp_message_ts" dynamo:"bp_message_ts"`
	DigestMessageTS      string            `json:"dig_message_ts" dynamo:"dig_message_ts"`
	IsSecurityIncident   bool              `json:"is_security_incident" dynamo:"is_security_incident"`
	ConferenceBridge     string            `json:"conference_bridge" dynamo:"conference_bridge"`
	RCALink              string            `json:"rca_link" dynamo:"rca_link"`
	PagerdutyIncidents   []string          `json:"pagerduty_incidents" dynamo:"pagerduty_incidents"`
	CreatedAt            time.Time         `json:"created_at" dynamo:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at" dynamo:"updated_at"`
	ClosedAt             time.Time         `json:"closed_at" dynamo:"closed_at"`
}

func (i *Incident) RoleHolder(role string) string {
	if i.Roles == nil {
		return UnassignedRole
	}
	if user, ok := i.Roles[role]; ok && user != "" {
		return user
	}
	return UnassignedRole
}

func (i *Incident) RoleAssigned(role string) bool {
	return i.RoleHolder(role) != UnassignedRole
}

func (i *Incident) SetRole(role, user string) {
	if i.Roles == nil {
		i.Roles = map[string]string{}
	}
	i.Roles[role] = user
}

func (i *Incident) Resolved() bool {
	return i.Status == StatusResolved
}

// Touch keeps updated_at monotonically non-decreasing.
func (i *Incident) Touch(now time.Time) {
	if now.After(i.UpdatedAt) {
		i.UpdatedAt = now
	}
}
