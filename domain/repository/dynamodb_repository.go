package repository

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
	"github.com/opsplane/incidentbot/domain/entity"
)

var incidentsTable = "incidents"
var auditLogsTable = "audit_logs"

func init() {
	if os.Getenv("DYNAMO_INCIDENTS_TABLE") != "" {
		incidentsTable = os.Getenv("DYNAMO_INCIDENTS_TABLE")
	}
	if os.Getenv("DYNAMO_AUDIT_LOGS_TABLE") != "" {
		auditLogsTable = os.Getenv("DYNAMO_AUDIT_LOGS_TABLE")
	}
}

func NewDynamoDBRepository() (*DynamoDBRepository, error) {
	var db *dynamo.DB
	if os.Getenv("DYNAMO_LOCAL") != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("dummy"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}
		db = dynamo.New(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String("http://localhost:8000")
		},
		)

		err = setupDdbSchema(db)
		if err != nil {
			return nil, fmt.Errorf("failed to setup schema: %v", err)
		}
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}
		db = dynamo.New(cfg)
	}

	return &DynamoDBRepository{db: db}, nil
}

func setupDdbSchema(db *dynamo.DB) error {
	tables := map[string]interface{}{
		incidentsTable: entity.Incident{},
		auditLogsTable: entity.AuditEntry{},
	}
	for name, schema := range tables {
		t := db.Table(name)
		_, err := t.Describe().Run(context.TODO())
		if err != nil {
			input := db.CreateTable(name, schema).
				Provision(10, 10)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := input.Run(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

type DynamoDBRepository struct {
	db *dynamo.DB
}

func (r *DynamoDBRepository) FindIncidentByChannel(ctx context.Context, channel string) (*entity.Incident, error) {
	incident := &entity.Incident{}
	err := r.db.Table(incidentsTable).Get("channel_id", channel).One(ctx, incident)
	if err != nil {
		if err == dynamo.ErrNotFound {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	return incident, nil
}

func (r *DynamoDBRepository) SaveIncident(ctx context.Context, incident *entity.Incident) error {
	return r.db.Table(incidentsTable).Put(incident).Run(ctx)
}

// Incidents that have not reached the resolved status.
func (r *DynamoDBRepository) ActiveIncidents(ctx context.Context) ([]entity.Incident, error) {
	var incidents []entity.Incident
	err := r.db.Table(incidentsTable).Scan().Filter("'status' <> ?", entity.StatusResolved).All(ctx, &incidents)
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *DynamoDBRepository) AppendAuditEntry(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Table(auditLogsTable).Put(entry).Run(ctx)
}

func (r *DynamoDBRepository) AuditTimeline(ctx context.Context, incidentID string) ([]entity.AuditEntry, error) {
	var entries []entity.AuditEntry
	err := r.db.Table(auditLogsTable).Get("incident_id", incidentID).All(ctx, &entries)
	if err != nil {
		if err == dynamo.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
