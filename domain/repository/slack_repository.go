package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Songmu/retry"
	ttlcache "github.com/jellydator/ttlcache/v3"
	"github.com/slack-go/slack"
)

var ErrSlackNotFound = fmt.Errorf("not found")

type SlackRepositoryer interface {
	GetUserByID(id string) (*slack.User, error)
	GetUserPreferredName(user *slack.User) string
	GetChannelByName(name string) (*slack.Channel, error)
	GetChannelByID(channelID string) (*slack.Channel, error)
	PostMessage(channelID string, opts ...slack.MsgOption) (string, string, error)
	UpdateMessage(channelID, ts string, opts ...slack.MsgOption) error
	GetMessageByTS(channelID, ts string) (*slack.Message, error)
	GetChannelHistory(channelID, oldest string, limit int) ([]slack.Message, error)
	GetFormattedChannelHistory(channelID, channelName string) (string, error)
	GetPinnedMessages(channelID string) ([]slack.Message, error)
	CreateConversation(params slack.CreateConversationParams) (*slack.Channel, error)
	ArchiveConversation(channelID string) error
	InviteUsersToConversation(channelID string, users ...string) error
	UploadFile(workspaceURL, userID, channelID, filename, title, content string) (string, error)
	FlushChannelCache()
}

type SlackRepository struct {
	client        *slack.Client
	channelsCache *ttlcache.Cache[string, []slack.Channel]
	usersCache    *ttlcache.Cache[string, []slack.User]
}

func NewSlackRepository(client *slack.Client) *SlackRepository {

	r := &SlackRepository{
		client:        client,
		channelsCache: ttlcache.New(ttlcache.WithTTL[string, []slack.Channel](time.Hour)),
		usersCache:    ttlcache.New(ttlcache.WithTTL[string, []slack.User](time.Hour)),
	}
	go r.channelsCache.Start()
	go r.usersCache.Start()

	go func() {
		_, err := r.getChannels()
		if err != nil {
			slog.Error("Failed to get channels", slog.Any("err", err))
		}
		slog.Info("Channels cache initialized")
		_, err = r.getUsers()
		if err != nil {
			slog.Error("Failed to get users", slog.Any("err", err))
		}
		slog.Info("Users cache initialized")
	}()
	// refresh expired caches automatically
	r.channelsCache.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, _ *ttlcache.Item[string, []slack.Channel]) {
		slog.Info("Refreshing channels cache")
		_, err := r.getChannels()
		if err != nil {
			slog.Error("Failed to refresh channels cache", slog.Any("err", err))
		}
	})

	r.usersCache.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, _ *ttlcache.Item[string, []slack.User]) {
		slog.Info("Refreshing users cache")
		_, err := r.getUsers()
		if err != nil {
			slog.Error("Failed to refresh users cache", slog.Any("err", err))
		}
	})
	return r
}

func (h *SlackRepository) FlushChannelCache() {
	h.channelsCache.DeleteAll()
}

func (h *SlackRepository) GetUserByID(id string) (*slack.User, error) {
	users, err := h.getUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrSlackNotFound
}

func (h *SlackRepository) GetUserPreferredName(user *slack.User) string {
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	if user.RealName != "" {
		return user.RealName
	}
	return user.Name
}

func (h *SlackRepository) getUsers() ([]slack.User, error) {
	cacheKey := "users"
	if users := h.usersCache.Get(cacheKey); users != nil {
		return users.Value(), nil
	}
	users, err := h.client.GetUsers()
	if err != nil {
		return nil, err
	}
	h.usersCache.Set(cacheKey, users, ttlcache.DefaultTTL)

	return users, nil
}

func (h *SlackRepository) getChannels() ([]slack.Channel, error) {
	cacheKey := "channels"
	if channels := h.channelsCache.Get(cacheKey); channels != nil {
		return channels.Value(), nil
	}
	nextCursor := ""
	channels := make([]slack.Channel, 0)
	for {
		cs, next, err := h.client.GetConversations(&slack.GetConversationsParameters{
			Limit:           1000,
			Cursor:          nextCursor,
			ExcludeArchived: false,
		})
		if err != nil {
			return nil, err
		}
		channels = append(channels, cs...)
		if next == "" {
			break
		}
		nextCursor = next
	}

	h.channelsCache.Set(cacheKey, channels, ttlcache.DefaultTTL)
	return channels, nil
}

func (h *SlackRepository) GetChannelByID(channelID string) (*slack.Channel, error) {
	channels, err := h.getChannels()
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		if c.ID == channelID {
			return &c, nil
		}
	}
	return nil, ErrSlackNotFound
}

func (h *SlackRepository) GetChannelByName(name string) (*slack.Channel, error) {
	channels, err := h.getChannels()
	if err != nil {
		return nil, err
	}
	for _, c := range channels {
		if c.Name == strings.TrimPrefix(name, "#") {
			return &c, nil
		}
	}
	return nil, nil
}

func (h *SlackRepository) PostMessage(channelID string, opts ...slack.MsgOption) (string, string, error) {
	var channel, ts string
	err := retry.Retry(3, 3*time.Second, func() error {
		var err error
		channel, ts, err = h.client.PostMessage(channelID, opts...)
		if err != nil {
			slog.Warn("PostMessage", slog.Any("channelID", channelID), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to PostMessage", slog.Any("err", err))
	}
	return channel, ts, err
}

func (h *SlackRepository) UpdateMessage(channelID, ts string, opts ...slack.MsgOption) error {
	err := retry.Retry(3, 3*time.Second, func() error {
		_, _, _, err := h.client.UpdateMessage(channelID, ts, opts...)
		if err != nil {
			slog.Warn("UpdateMessage", slog.Any("channelID", channelID), slog.Any("ts", ts), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to UpdateMessage", slog.Any("err", err))
	}
	return err
}

// GetMessageByTS fetches exactly one message, typically a pinned control
// message addressed by its stored timestamp.
func (h *SlackRepository) GetMessageByTS(channelID, ts string) (*slack.Message, error) {
	resp, err := h.client.GetConversationHistory(&slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 {
		return nil, ErrSlackNotFound
	}
	return &resp.Messages[0], nil
}

func (h *SlackRepository) GetChannelHistory(channelID, oldest string, limit int) ([]slack.Message, error) {
	var messages []slack.Message
	cursor := ""
	for {
		resp, err := h.client.GetConversationHistory(&slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Oldest:    oldest,
			Cursor:    cursor,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, resp.Messages...)
		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}
	return messages, nil
}

// GetFormattedChannelHistory renders the full channel history as a plain-text
// transcript, oldest first, with user IDs resolved to preferred names.
func (h *SlackRepository) GetFormattedChannelHistory(channelID, channelName string) (string, error) {
	messages, err := h.GetChannelHistory(channelID, "0", 1000)
	if err != nil {
		return "", err
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Chat transcript for %s\n\n", channelName))
	nameCache := map[string]string{}
	for _, m := range messages {
		if m.Text == "" {
			continue
		}
		name, ok := nameCache[m.User]
		if !ok {
			user, err := h.GetUserByID(m.User)
			if err != nil {
				name = m.User
			} else {
				name = h.GetUserPreferredName(user)
			}
			nameCache[m.User] = name
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", formatSlackTimestamp(m.Timestamp), name, m.Text))
	}
	return b.String(), nil
}

func formatSlackTimestamp(ts string) string {
	parts := strings.Split(ts, ".")
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ts
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04:05")
}

func (h *SlackRepository) GetPinnedMessages(channelID string) ([]slack.Message, error) {
	items, _, err := h.client.ListPins(channelID)
	if err != nil {
		return nil, err
	}

	var messages []slack.Message
	for _, item := range items {
		if item.Message == nil {
			continue
		}
		messages = append(messages, *item.Message)
	}

	return messages, nil
}

func (h *SlackRepository) CreateConversation(params slack.CreateConversationParams) (*slack.Channel, error) {
	var channel *slack.Channel
	err := retry.Retry(3, 3*time.Second, func() error {
		var err error
		channel, err = h.client.CreateConversation(params)
		if err != nil {
			slog.Warn("CreateConversation", slog.Any("params", params), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to CreateConversation", slog.Any("err", err))
	}
	return channel, err
}

func (h *SlackRepository) ArchiveConversation(channelID string) error {
	err := retry.Retry(3, 3*time.Second, func() error {
		err := h.client.ArchiveConversation(channelID)
		if err != nil {
			slog.Warn("ArchiveConversation", slog.Any("channelID", channelID), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to ArchiveConversation", slog.Any("err", err))
	}
	return err
}

func (h *SlackRepository) InviteUsersToConversation(channelID string, users ...string) error {
	err := retry.Retry(3, 3*time.Second, func() error {
		_, err := h.client.InviteUsersToConversation(channelID, users...)
		if err != nil {
			// inviting a user twice is not a failure
			if strings.Contains(err.Error(), "already_in_channel") {
				return nil
			}
			slog.Warn("InviteUsersToConversation", slog.Any("channelID", channelID), slog.Any("users", users), slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to InviteUsersToConversation", slog.Any("err", err))
	}
	return err
}

func (h *SlackRepository) UploadFile(workspaceURL, userID, channelID, filename, title, content string) (string, error) {
	f, err := h.client.UploadFileV2(slack.UploadFileV2Parameters{
		Channel:  channelID,
		Filename: filename,
		Title:    title,
		AltTxt:   title,
		Content:  content,
		FileSize: len(content),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files/%s/%s", workspaceURL, userID, f.ID), nil
}
