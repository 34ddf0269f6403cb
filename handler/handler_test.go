package handler_test

import (
	"context"
	"testing"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/opsplane/incidentbot/domain/repository"
	"github.com/opsplane/incidentbot/handler"
	"github.com/opsplane/incidentbot/presentation/blocks"
	"github.com/opsplane/incidentbot/scheduler"
)

// ------------------------
// Mock repositories
// ------------------------
type mockIncidentRepo struct {
	data      map[string]*entity.Incident
	saveCount int
}

func (m *mockIncidentRepo) FindIncidentByChannel(_ context.Context, ch string) (*entity.Incident, error) {
	if inc, ok := m.data[ch]; ok {
		return inc, nil
	}
	return nil, repository.ErrIncidentNotFound
}

func (m *mockIncidentRepo) SaveIncident(_ context.Context, inc *entity.Incident) error {
	m.data[inc.ChannelID] = inc
	m.saveCount++
	return nil
}

func (m *mockIncidentRepo) ActiveIncidents(_ context.Context) ([]entity.Incident, error) {
	var incidents []entity.Incident
	for _, inc := range m.data {
		if !inc.Resolved() {
			incidents = append(incidents, *inc)
		}
	}
	return incidents, nil
}

type mockAuditRepo struct {
	entries   []entity.AuditEntry
	appendErr error
}

func (m *mockAuditRepo) AppendAuditEntry(_ context.Context, entry *entity.AuditEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) AuditTimeline(_ context.Context, incidentID string) ([]entity.AuditEntry, error) {
	var entries []entity.AuditEntry
	for _, e := range m.entries {
		if e.IncidentID == incidentID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *mockAuditRepo) events() []string {
	var events []string
	for _, e := range m.entries {
		events = append(events, e.Event)
	}
	return events
}

type mockPagerRepo struct {
	resolved []string
}

func (m *mockPagerRepo) ResolveIncident(_ context.Context, incidentID string) error {
	m.resolved = append(m.resolved, incidentID)
	return nil
}

type mockRCAExporter struct {
	titles []string
	link   string
}

func (m *mockRCAExporter) ExportRCA(_ context.Context, title, markdown string) (string, error) {
	m.titles = append(m.titles, title)
	return m.link, nil
}

type mockSlackRepo struct {
	posts     []string
	updates   []string
	invites   map[string][]string
	created   []slack.CreateConversationParams
	createErr error
	byName    map[string]*slack.Channel
	archived  []string
	uploads   []string
	messages  map[string]*slack.Message
}

func newMockSlackRepo() *mockSlackRepo {
	return &mockSlackRepo{
		invites:  map[string][]string{},
		byName:   map[string]*slack.Channel{},
		messages: map[string]*slack.Message{},
	}
}

func (m *mockSlackRepo) GetUserByID(id string) (*slack.User, error) {
	return &slack.User{ID: id, Name: "testuser"}, nil
}

func (m *mockSlackRepo) GetUserPreferredName(user *slack.User) string {
	return user.Name
}

func (m *mockSlackRepo) GetChannelByName(name string) (*slack.Channel, error) {
	return m.byName[name], nil
}

func (m *mockSlackRepo) GetChannelByID(channelID string) (*slack.Channel, error) {
	return &slack.Channel{
		GroupConversation: slack.GroupConversation{
			Conversation: slack.Conversation{ID: channelID},
			Name:         "test-channel",
			IsArchived:   false,
		},
	}, nil
}

func (m *mockSlackRepo) PostMessage(channelID string, opts ...slack.MsgOption) (string, string, error) {
	m.posts = append(m.posts, channelID)
	return channelID, "123456.789", nil
}

func (m *mockSlackRepo) UpdateMessage(channelID, ts string, opts ...slack.MsgOption) error {
	m.updates = append(m.updates, channelID)
	return nil
}

func (m *mockSlackRepo) GetMessageByTS(channelID, ts string) (*slack.Message, error) {
	if msg, ok := m.messages[ts]; ok {
		return msg, nil
	}
	return nil, repository.ErrSlackNotFound
}

func (m *mockSlackRepo) GetChannelHistory(channelID, oldest string, limit int) ([]slack.Message, error) {
	return nil, nil
}

func (m *mockSlackRepo) GetFormattedChannelHistory(channelID, channelName string) (string, error) {
	return "transcript", nil
}

func (m *mockSlackRepo) GetPinnedMessages(channelID string) ([]slack.Message, error) {
	return nil, nil
}

func (m *mockSlackRepo) CreateConversation(params slack.CreateConversationParams) (*slack.Channel, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, params)
	return &slack.Channel{
		GroupConversation: slack.GroupConversation{
			Conversation: slack.Conversation{ID: "CRCA"},
			Name:         params.ChannelName,
		},
	}, nil
}

func (m *mockSlackRepo) ArchiveConversation(channelID string) error {
	m.archived = append(m.archived, channelID)
	return nil
}

func (m *mockSlackRepo) InviteUsersToConversation(channelID string, users ...string) error {
	m.invites[channelID] = append(m.invites[channelID], users...)
	return nil
}

func (m *mockSlackRepo) UploadFile(workspaceURL, userID, channelID, filename, title, content string) (string, error) {
	m.uploads = append(m.uploads, filename)
	return "http://example.com/file", nil
}

func (m *mockSlackRepo) FlushChannelCache() {}

// ------------------------
// Test fixture
// ------------------------
type testEnv struct {
	incRepo   *mockIncidentRepo
	auditRepo *mockAuditRepo
	slackRepo *mockSlackRepo
	pager     *mockPagerRepo
	exporter  *mockRCAExporter
	sched     *scheduler.Scheduler
	actions   *handler.ActionHandler
	config    *repository.Config
}

const (
	testChannelID = "CINC"
	testBPTS      = "111.222"
	testDigestTS  = "999.888"
)

func testConfig() *repository.Config {
	return &repository.Config{
		DigestChannelID: "CDIGEST",
		RoleList:        []string{entity.RoleIncidentCommander, "technical_lead"},
		SeverityList: []entity.Severity{
			{ID: "sev1", Description: "critical", ReminderMinutes: 30},
			{ID: "sev2", Description: "high", ReminderMinutes: 30},
			{ID: "sev3", Description: "low"},
		},
	}
}

func newTestEnv(t *testing.T, incident *entity.Incident) *testEnv {
	t.Helper()

	cfg := testConfig()
	incRepo := &mockIncidentRepo{data: map[string]*entity.Incident{}}
	if incident != nil {
		incRepo.data[incident.ChannelID] = incident
	}
	auditRepo := &mockAuditRepo{}
	slackRepo := newMockSlackRepo()
	sched := scheduler.New(func(scheduler.Job) {})
	t.Cleanup(sched.Stop)

	if incident != nil {
		slackRepo.messages[testBPTS] = &slack.Message{Msg: slack.Msg{
			Timestamp: testBPTS,
			Blocks:    slack.Blocks{BlockSet: blocks.Boilerplate(incident, cfg.RoleList, cfg.SeverityList)},
		}}
		slackRepo.messages[testDigestTS] = &slack.Message{Msg: slack.Msg{
			Timestamp: testDigestTS,
			Blocks: slack.Blocks{BlockSet: blocks.Digest(
				incident.ChannelName, incident.ChannelID, incident.Description,
				incident.IsSecurityIncident, incident.Status, incident.Severity, "")},
		}}
	}

	pager := &mockPagerRepo{}
	exporter := &mockRCAExporter{link: "https://wiki.example.com/rca/1"}
	repo := repository.NewRepository(incRepo, auditRepo, cfg)
	actions := handler.NewActionHandler(repo, slackRepo, sched, pager, exporter, nil, cfg, "https://example.slack.com")
	return &testEnv{
		incRepo:   incRepo,
		auditRepo: auditRepo,
		slackRepo: slackRepo,
		pager:     pager,
		exporter:  exporter,
		sched:     sched,
		actions:   actions,
		config:    cfg,
	}
}

func testIncident() *entity.Incident {
	return &entity.Incident{
		ChannelID:            testChannelID,
		ChannelName:          "inc-200",
		IncidentID:           "inc-200",
		Description:          "api errors",
		Status:               "investigating",
		Severity:             "sev2",
		BoilerplateMessageTS: testBPTS,
		DigestMessageTS:      testDigestTS,
	}
}

func controlMessageRef(env *testEnv) handler.MessageRef {
	return handler.MessageRef{
		TS:     testBPTS,
		Blocks: env.slackRepo.messages[testBPTS].Blocks.BlockSet,
	}
}

// ------------------------
// Role engine
// ------------------------
func TestClaimRoleUnassigned(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.ClaimRole(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionClaimRole,
		Origin:    handler.OriginChat,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     entity.RoleIncidentCommander,
		Message:   controlMessageRef(env),
	})
	require.NoError(t, err)

	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "U123", incident.RoleHolder(entity.RoleIncidentCommander))
	assert.Equal(t, 1, env.incRepo.saveCount)
	assert.Contains(t, env.auditRepo.events(), "role_assigned")

	// control message patched, public update posted, DM sent, user invited
	assert.Contains(t, env.slackRepo.updates, testChannelID)
	assert.Contains(t, env.slackRepo.posts, testChannelID)
	assert.Contains(t, env.slackRepo.posts, "U123")
	assert.Contains(t, env.slackRepo.invites[testChannelID], "U123")

	owner, err := blocks.ExtractRoleOwner(env.slackRepo.messages[testBPTS].Blocks.BlockSet, entity.RoleIncidentCommander)
	require.NoError(t, err)
	assert.Equal(t, "U123", owner)
}

func TestClaimRoleAlreadyTaken(t *testing.T) {
	incident := testIncident()
	incident.SetRole(entity.RoleIncidentCommander, "UFIRST")
	env := newTestEnv(t, incident)

	err := env.actions.ClaimRole(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionClaimRole,
		ChannelID: testChannelID,
		ActorID:   "USECOND",
		Value:     entity.RoleIncidentCommander,
		Message:   controlMessageRef(env),
	})
	require.NoError(t, err)

	// refused: holder kept, nothing written, a notice posted in channel
	assert.Equal(t, "UFIRST", incident.RoleHolder(entity.RoleIncidentCommander))
	assert.Zero(t, env.incRepo.saveCount)
	assert.NotContains(t, env.auditRepo.events(), "role_assigned")
	assert.Equal(t, []string{testChannelID}, env.slackRepo.posts)
}

func TestAssignRoleOverwrites(t *testing.T) {
	incident := testIncident()
	incident.SetRole("technical_lead", "UFIRST")
	env := newTestEnv(t, incident)

	err := env.actions.AssignRole(context.Background(), handler.ActionEvent{
		Kind:       handler.ActionAssignRole,
		ChannelID:  testChannelID,
		ActorID:    "UADMIN",
		Role:       "technical_lead",
		TargetUser: "USECOND",
		Message:    controlMessageRef(env),
	})
	require.NoError(t, err)

	assert.Equal(t, "USECOND", incident.RoleHolder("technical_lead"))
	assert.Contains(t, env.auditRepo.events(), "role_assigned")
	assert.Contains(t, env.slackRepo.posts, "USECOND")
}

// ------------------------
// Status engine
// ------------------------
func TestSetStatusNonResolved(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.SetStatus(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetStatus,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     "monitoring",
	})
	require.NoError(t, err)

	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "monitoring", incident.Status)
	assert.Equal(t, 1, env.incRepo.saveCount)
	assert.Contains(t, env.auditRepo.events(), "status_changed")

	// digest and control message rewritten
	assert.Contains(t, env.slackRepo.updates, "CDIGEST")
	assert.Contains(t, env.slackRepo.updates, testChannelID)

	status, err := blocks.ExtractAttribute(env.slackRepo.messages[testDigestTS].Blocks.BlockSet, "status")
	require.NoError(t, err)
	assert.Equal(t, "monitoring", status)

	// no resolution machinery for ordinary transitions
	assert.Empty(t, env.slackRepo.created)
}

func TestResolveWithoutCommander(t *testing.T) {
	env := newTestEnv(t, testIncident())
	jobID := scheduler.ReminderJobID("inc-200")
	env.sched.Upsert(scheduler.Job{ID: jobID, ChannelID: testChannelID, ChannelName: "inc-200", Severity: "sev2"})

	err := env.actions.SetStatus(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetStatus,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     entity.StatusResolved,
	})
	require.NoError(t, err)

	// aborted before any mutation
	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "investigating", incident.Status)
	assert.Zero(t, env.incRepo.saveCount)
	assert.Empty(t, env.auditRepo.entries)
	_, ok := env.sched.Get(jobID)
	assert.True(t, ok)

	// the actor got told
	assert.Equal(t, []string{testChannelID}, env.slackRepo.posts)
	assert.Empty(t, env.slackRepo.created)
}

func TestResolveWithCommander(t *testing.T) {
	incident := testIncident()
	incident.SetRole(entity.RoleIncidentCommander, "UCMD")
	incident.PagerdutyIncidents = []string{"PD1", "PD2"}
	env := newTestEnv(t, incident)
	jobID := scheduler.ReminderJobID("inc-200")
	env.sched.Upsert(scheduler.Job{ID: jobID, ChannelID: testChannelID, ChannelName: "inc-200", Severity: "sev2"})

	err := env.actions.SetStatus(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetStatus,
		ChannelID: testChannelID,
		ActorID:   "UCMD",
		Value:     entity.StatusResolved,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusResolved, incident.Status)
	assert.True(t, incident.Resolved())

	// reminder job removed
	_, ok := env.sched.Get(jobID)
	assert.False(t, ok)

	// RCA channel named after the incident, role holders invited
	require.Len(t, env.slackRepo.created, 1)
	assert.Equal(t, "inc-200-rca", env.slackRepo.created[0].ChannelName)
	assert.Contains(t, env.slackRepo.invites["CRCA"], "UCMD")

	events := env.auditRepo.events()
	assert.Contains(t, events, "status_changed")
	assert.Contains(t, events, "reminder_removed")
	assert.Contains(t, events, "rca_channel_created")
	assert.Contains(t, events, "rca_document_created")

	// linked paging incidents closed out
	assert.Equal(t, []string{"PD1", "PD2"}, env.pager.resolved)

	// RCA document exported and its link written back to the record
	assert.Equal(t, []string{"RCA: inc-200"}, env.exporter.titles)
	assert.Equal(t, "https://wiki.example.com/rca/1", incident.RCALink)

	// RCA channel set up before anything lands in the incident channel,
	// kickoff there first, then the resolution note
	require.NotEmpty(t, env.slackRepo.posts)
	assert.Equal(t, "CRCA", env.slackRepo.posts[0])
	assert.Contains(t, env.slackRepo.posts, testChannelID)

	// digest reflects the terminal status
	status, err := blocks.ExtractAttribute(env.slackRepo.messages[testDigestTS].Blocks.BlockSet, "status")
	require.NoError(t, err)
	assert.Equal(t, "resolved", status)
}

func TestResolveReusesExistingRCAChannel(t *testing.T) {
	incident := testIncident()
	incident.SetRole(entity.RoleIncidentCommander, "UCMD")
	env := newTestEnv(t, incident)
	env.slackRepo.createErr = assert.AnError
	env.slackRepo.byName["inc-200-rca"] = &slack.Channel{
		GroupConversation: slack.GroupConversation{
			Conversation: slack.Conversation{ID: "CEXIST"},
			Name:         "inc-200-rca",
		},
	}

	err := env.actions.SetStatus(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetStatus,
		ChannelID: testChannelID,
		ActorID:   "UCMD",
		Value:     entity.StatusResolved,
	})
	require.NoError(t, err)

	// the channel from an earlier attempt is picked up instead of failing
	assert.Empty(t, env.slackRepo.created)
	assert.Contains(t, env.slackRepo.invites["CEXIST"], "UCMD")
	assert.Contains(t, env.slackRepo.posts, "CEXIST")
	assert.Contains(t, env.auditRepo.events(), "rca_channel_created")
	assert.Equal(t, entity.StatusResolved, incident.Status)
}

// ------------------------
// Severity engine and reminder lifecycle
// ------------------------
func TestSetSeverityCreatesReminder(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.SetSeverity(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetSeverity,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     "sev1",
	})
	require.NoError(t, err)

	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "sev1", incident.Severity)

	job, ok := env.sched.Get(scheduler.ReminderJobID("inc-200"))
	require.True(t, ok)
	assert.Equal(t, "sev1", job.Severity)

	events := env.auditRepo.events()
	assert.Contains(t, events, "reminder_created")
	assert.Contains(t, events, "severity_changed")

	severity, err := blocks.ExtractAttribute(env.slackRepo.messages[testDigestTS].Blocks.BlockSet, "severity")
	require.NoError(t, err)
	assert.Equal(t, "sev1", severity)
}

func TestSetSeverityTwiceKeepsOneJob(t *testing.T) {
	env := newTestEnv(t, testIncident())

	for range 2 {
		err := env.actions.SetSeverity(context.Background(), handler.ActionEvent{
			Kind:      handler.ActionSetSeverity,
			ChannelID: testChannelID,
			ActorID:   "U123",
			Value:     "sev1",
		})
		require.NoError(t, err)
	}

	assert.Len(t, env.sched.Jobs(), 1)
	assert.Contains(t, env.auditRepo.events(), "reminder_replaced")
}

func TestSetSeverityDowngradeCancelsReminder(t *testing.T) {
	env := newTestEnv(t, testIncident())
	jobID := scheduler.ReminderJobID("inc-200")
	env.sched.Upsert(scheduler.Job{ID: jobID, ChannelID: testChannelID, ChannelName: "inc-200", Severity: "sev2"})

	err := env.actions.SetSeverity(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetSeverity,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     "sev3",
	})
	require.NoError(t, err)

	_, ok := env.sched.Get(jobID)
	assert.False(t, ok)
	assert.Contains(t, env.auditRepo.events(), "reminder_removed")
}

func TestSetSeverityUnknown(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.SetSeverity(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionSetSeverity,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     "sev9",
	})
	assert.Error(t, err)
	assert.Empty(t, env.sched.Jobs())
	assert.Empty(t, env.auditRepo.entries)
}

// ------------------------
// Housekeeping actions
// ------------------------
func TestArchiveChannel(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.ArchiveChannel(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionArchiveChannel,
		ChannelID: testChannelID,
		ActorID:   "U123",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testChannelID}, env.slackRepo.archived)
	assert.Contains(t, env.auditRepo.events(), "channel_archived")
}

func TestExportChatLog(t *testing.T) {
	env := newTestEnv(t, testIncident())

	err := env.actions.ExportChatLog(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionExportChatLog,
		ChannelID: testChannelID,
		ActorID:   "U123",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"inc-200_transcript.txt"}, env.slackRepo.uploads)
	assert.Contains(t, env.auditRepo.events(), "chat_log_exported")
}

func TestAuditFailureDoesNotBlockAction(t *testing.T) {
	env := newTestEnv(t, testIncident())
	env.auditRepo.appendErr = assert.AnError

	err := env.actions.ClaimRole(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionClaimRole,
		ChannelID: testChannelID,
		ActorID:   "U123",
		Value:     entity.RoleIncidentCommander,
		Message:   controlMessageRef(env),
	})
	require.NoError(t, err)

	// the user-facing effect landed even though the trail write failed
	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "U123", incident.RoleHolder(entity.RoleIncidentCommander))
	assert.Equal(t, 1, env.incRepo.saveCount)
	assert.Empty(t, env.auditRepo.entries)
}

// ------------------------
// Dispatcher and adapters
// ------------------------
func TestDispatcherUnknownKind(t *testing.T) {
	env := newTestEnv(t, testIncident())
	dispatcher := handler.NewDispatcher(env.actions)

	err := dispatcher.Dispatch(context.Background(), handler.ActionEvent{
		Kind:      handler.ActionUnknown,
		ChannelID: testChannelID,
	})
	assert.NoError(t, err)
	assert.Empty(t, env.slackRepo.posts)
	assert.Empty(t, env.auditRepo.entries)
}

func TestCallbackHandlerBlockActions(t *testing.T) {
	env := newTestEnv(t, testIncident())
	cbHandler := handler.NewCallbackHandler(handler.NewDispatcher(env.actions))

	callback := &slack.InteractionCallback{
		Type: slack.InteractionTypeBlockActions,
		Channel: slack.Channel{
			GroupConversation: slack.GroupConversation{
				Conversation: slack.Conversation{ID: testChannelID},
			},
		},
		User: slack.User{ID: "U123"},
		Message: slack.Message{
			Msg: slack.Msg{
				Timestamp: testBPTS,
				Blocks:    slack.Blocks{BlockSet: env.slackRepo.messages[testBPTS].Blocks.BlockSet},
			},
		},
		ActionCallback: slack.ActionCallbacks{
			BlockActions: []*slack.BlockAction{
				{
					ActionID:       "incident.set_severity",
					SelectedOption: slack.OptionBlockObject{Value: "sev1"},
				},
			},
		},
	}

	err := cbHandler.Handle(context.Background(), callback)
	require.NoError(t, err)

	_, ok := env.sched.Get(scheduler.ReminderJobID("inc-200"))
	assert.True(t, ok)
}

func TestCallbackHandlerClaimButton(t *testing.T) {
	env := newTestEnv(t, testIncident())
	cbHandler := handler.NewCallbackHandler(handler.NewDispatcher(env.actions))

	callback := &slack.InteractionCallback{
		Type: slack.InteractionTypeBlockActions,
		Channel: slack.Channel{
			GroupConversation: slack.GroupConversation{
				Conversation: slack.Conversation{ID: testChannelID},
			},
		},
		User: slack.User{ID: "U123"},
		Message: slack.Message{
			Msg: slack.Msg{
				Timestamp: testBPTS,
				Blocks:    slack.Blocks{BlockSet: env.slackRepo.messages[testBPTS].Blocks.BlockSet},
			},
		},
		ActionCallback: slack.ActionCallbacks{
			BlockActions: []*slack.BlockAction{
				{ActionID: "incident.claim_role", Value: entity.RoleIncidentCommander},
			},
		},
	}

	err := cbHandler.Handle(context.Background(), callback)
	require.NoError(t, err)

	incident := env.incRepo.data[testChannelID]
	assert.Equal(t, "U123", incident.RoleHolder(entity.RoleIncidentCommander))
}

func TestCallbackHandlerUnknownAction(t *testing.T) {
	env := newTestEnv(t, testIncident())
	cbHandler := handler.NewCallbackHandler(handler.NewDispatcher(env.actions))

	callback := &slack.InteractionCallback{
		Type: slack.InteractionTypeBlockActions,
		ActionCallback: slack.ActionCallbacks{
			BlockActions: []*slack.BlockAction{
				{ActionID: "mystery_button", Value: "v"},
			},
		},
	}

	err := cbHandler.Handle(context.Background(), callback)
	assert.NoError(t, err)
	assert.Empty(t, env.slackRepo.posts)
}

func TestWebHandler(t *testing.T) {
	env := newTestEnv(t, testIncident())
	webHandler := handler.NewWebHandler(handler.NewDispatcher(env.actions), env.actions)

	err := webHandler.Handle(context.Background(), handler.WebRequest{
		Action:    "set_severity",
		ChannelID: testChannelID,
		ActorID:   "U123",
		Severity:  "sev1",
	})
	require.NoError(t, err)

	_, ok := env.sched.Get(scheduler.ReminderJobID("inc-200"))
	assert.True(t, ok)

	err = webHandler.Handle(context.Background(), handler.WebRequest{
		Action:    "explode",
		ChannelID: testChannelID,
	})
	assert.Error(t, err)
}

// ------------------------
// Workspace events
// ------------------------
func TestEventHandlerChannelArchive(t *testing.T) {
	env := newTestEnv(t, testIncident())
	jobID := scheduler.ReminderJobID("inc-200")
	env.sched.Upsert(scheduler.Job{ID: jobID, ChannelID: testChannelID, ChannelName: "inc-200", Severity: "sev2"})
	evHandler := handler.NewEventHandler(env.actions)

	err := evHandler.Handle(context.Background(), &slackevents.EventsAPIEvent{
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Data: &slackevents.ChannelArchiveEvent{Channel: testChannelID},
		},
	})
	require.NoError(t, err)

	incident := env.incRepo.data[testChannelID]
	assert.False(t, incident.ClosedAt.IsZero())
	_, ok := env.sched.Get(jobID)
	assert.False(t, ok)
	assert.Contains(t, env.auditRepo.events(), "channel_archived")
}

func TestEventHandlerChannelArchiveUnknownChannel(t *testing.T) {
	env := newTestEnv(t, testIncident())
	evHandler := handler.NewEventHandler(env.actions)

	err := evHandler.Handle(context.Background(), &slackevents.EventsAPIEvent{
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Data: &slackevents.ChannelArchiveEvent{Channel: "CUNRELATED"},
		},
	})
	assert.NoError(t, err)
	assert.Empty(t, env.auditRepo.entries)
}
