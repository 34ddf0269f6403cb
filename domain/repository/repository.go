package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opsplane/incidentbot/domain/entity"
)

// ErrIncidentNotFound marks a channel that has no incident record. Events in
// unrelated channels hit this constantly; callers treat it as a non-event.
var ErrIncidentNotFound = errors.New("incident not found")

type IncidentRepository interface {
	FindIncidentByChannel(context.Context, string) (*entity.Incident, error)
	SaveIncident(context.Context, *entity.Incident) error
	ActiveIncidents(context.Context) ([]entity.Incident, error)
}

type AuditRepository interface {
	AppendAuditEntry(context.Context, *entity.AuditEntry) error
	AuditTimeline(context.Context, string) ([]entity.AuditEntry, error)
}

type SeverityRepository interface {
	Severities(context.Context) []entity.Severity
	SeverityByID(context.Context, string) (*entity.Severity, error)
	ReminderCadence(context.Context, string) (time.Duration, bool)
	Roles(context.Context) []string
}

type Repository interface {
	IncidentRepository
	AuditRepository
	SeverityRepository
}

type RepositoryFacade struct {
	IncidentRepository
	AuditRepository
	SeverityRepository
}

// RCAExporter materializes an RCA document and returns a link to it.
type RCAExporter interface {
	ExportRCA(context.Context, string, string) (string, error)
}

func NewRepository(incidentRepository IncidentRepository, auditRepository AuditRepository, severityRepository SeverityRepository) Repository {
	return RepositoryFacade{
		IncidentRepository: incidentRepository,
		AuditRepository:    auditRepository,
		SeverityRepository: severityRepository,
	}
}
