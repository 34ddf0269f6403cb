package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PagerDuty/go-pagerduty"
	"github.com/Songmu/retry"
)

type PagerRepositoryer interface {
	ResolveIncident(ctx context.Context, incidentID string) error
}

type PagerDutyRepository struct {
	client *pagerduty.Client
	from   string
}

// NewPagerDutyRepository returns nil when the integration is not configured,
// matching the optional-integration pattern used elsewhere.
func NewPagerDutyRepository() (*PagerDutyRepository, error) {
	token := os.Getenv("PAGERDUTY_API_TOKEN")
	if token == "" {
		return nil, nil
	}
	from := os.Getenv("PAGERDUTY_FROM_EMAIL")
	if from == "" {
		return nil, fmt.Errorf("PAGERDUTY_FROM_EMAIL is required when PAGERDUTY_API_TOKEN is set")
	}

	return &PagerDutyRepository{
		client: pagerduty.NewClient(token),
		from:   from,
	}, nil
}

func (r *PagerDutyRepository) ResolveIncident(ctx context.Context, incidentID string) error {
	err := retry.Retry(3, 3*time.Second, func() error {
		_, err := r.client.ManageIncidentsWithContext(ctx, r.from, []pagerduty.ManageIncidentsOptions{
			{
				ID:     incidentID,
				Type:   "incident_reference",
				Status: "resolved",
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to resolve pagerduty incident %s: %w", incidentID, err)
	}
	return nil
}
