package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/opsplane/incidentbot/domain/repository"
	"github.com/opsplane/incidentbot/presentation/blocks"
	"github.com/opsplane/incidentbot/scheduler"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

func Handle(ctx context.Context, configPath string) error {
	webApi := slack.New(
		os.Getenv("SLACK_BOT_TOKEN"),
		slack.OptionAppLevelToken(os.Getenv("SLACK_APP_TOKEN")),
	)
	socketMode := socketmode.New(
		webApi,
	)
	authTest, authTestErr := webApi.AuthTest()
	if authTestErr != nil {
		fmt.Fprintf(os.Stderr, "SLACK_BOT_TOKEN is invalid: %v\n", authTestErr)
		os.Exit(1)
	}
	botID := authTest.UserID
	workspaceURL := authTest.URL
	slog.Info("Bot ID", slog.String("bot_id", botID))

	dynamoRepository, err := repository.NewDynamoDBRepository()
	if err != nil {
		return err
	}

	cfgRepository, err := repository.NewConfigRepository(configPath)
	if err != nil {
		return err
	}

	slackRepository := repository.NewSlackRepository(webApi)

	aiRepository, err := repository.NewAIRepository()
	if err != nil {
		return err
	}

	pagerRepository, err := repository.NewPagerDutyRepository()
	if err != nil {
		return err
	}

	repo := repository.NewRepository(dynamoRepository, dynamoRepository, cfgRepository)

	var rcaExporter repository.RCAExporter
	if os.Getenv("CONFLUENCE_USERNAME") != "" && os.Getenv("CONFLUENCE_PASSWORD") != "" && cfgRepository.Confluence.Domain != "" {
		r, err := repository.NewConfluenceRepository(
			cfgRepository.Confluence.Domain,
			os.Getenv("CONFLUENCE_USERNAME"),
			os.Getenv("CONFLUENCE_PASSWORD"),
			cfgRepository.Confluence.Space,
			cfgRepository.Confluence.AncestorID,
		)
		if err != nil {
			return err
		}
		rcaExporter = r
	}

	sched := scheduler.New(func(job scheduler.Job) {
		channel, err := slackRepository.GetChannelByID(job.ChannelID)
		if err != nil {
			slog.Error("Failed to get channel for reminder", slog.String("channel_id", job.ChannelID), slog.Any("err", err))
			return
		}
		if channel.IsArchived {
			return
		}
		if _, _, err := slackRepository.PostMessage(job.ChannelID, slack.MsgOptionBlocks(blocks.StatusReminder(job.Severity)...)); err != nil {
			slog.Error("Failed to post status reminder", slog.String("channel_id", job.ChannelID), slog.Any("err", err))
		}
	})
	defer sched.Stop()

	// restore reminder jobs for incidents that were open at the last shutdown
	incidents, err := repo.ActiveIncidents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active incidents: %w", err)
	}
	for _, incident := range incidents {
		cadence, ok := cfgRepository.ReminderCadence(ctx, incident.Severity)
		if !ok {
			continue
		}
		sched.Upsert(scheduler.Job{
			ID:          scheduler.ReminderJobID(incident.ChannelName),
			ChannelID:   incident.ChannelID,
			ChannelName: incident.ChannelName,
			Severity:    incident.Severity,
			Cadence:     cadence,
		})
	}
	slog.Info("Restored reminder jobs", slog.Int("count", len(sched.Jobs())))

	var pager repository.PagerRepositoryer
	if pagerRepository != nil {
		pager = pagerRepository
	}
	var ai repository.AIRepositoryer
	if aiRepository != nil {
		ai = aiRepository
	}

	actions := NewActionHandler(repo, slackRepository, sched, pager, rcaExporter, ai, cfgRepository, workspaceURL)
	dispatcher := NewDispatcher(actions)
	callbackHandler := NewCallbackHandler(dispatcher)
	eventHandler := NewEventHandler(actions)

	go func() {
		for envelope := range socketMode.Events {
			switch envelope.Type {
			case socketmode.EventTypeEventsAPI:
				socketMode.Ack(*envelope.Request)
				eventPayload, ok := envelope.Data.(slackevents.EventsAPIEvent)
				if !ok {
					slog.Error("Failed to cast to EventsAPIEvent")
					continue
				}

				switch eventPayload.Type {
				case slackevents.CallbackEvent:
					if err := eventHandler.Handle(ctx, &eventPayload); err != nil {
						slog.Error("Failed to handle event", slog.Any("err", err))
					}
				}
			case socketmode.EventTypeInteractive:
				socketMode.Ack(*envelope.Request)
				callback, ok := envelope.Data.(slack.InteractionCallback)
				if !ok {
					slog.Error("Failed to cast to InteractionCallback")
					continue
				}
				if err := callbackHandler.Handle(ctx, &callback); err != nil {
					slog.Error("Failed to handle callback", slog.Any("err", err))
				}
			}
		}
	}()

	return socketMode.Run()
}
