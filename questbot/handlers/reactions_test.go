package handlers

import (
	"context"
	"testing"

	"github.com/questcord/questbot/questbot/database/models"
)

// memSettings is an in-memory SettingsRepository for handler tests.
type memSettings struct {
	settings map[string]*models.GuildSettings
	channels map[string][]*models.WhitelistedChannel
}

func newMemSettings() *memSettings {
	return &memSettings{
		settings: make(map[string]*models.GuildSettings),
		channels: make(map[string][]*models.WhitelistedChannel),
	}
}

func (m *memSettings) GetGuildSettings(_ context.Context, guildID string) (*models.GuildSettings, error) {
	if s, ok := m.settings[guildID]; ok {
		return s, nil
	}
	return &models.GuildSettings{GuildID: guildID}, nil
}

func (m *memSettings) UpsertGuildSettings(_ context.Context, settings *models.GuildSettings) error {
	m.settings[settings.GuildID] = settings
	return nil
}

func (m *memSettings) AddWhitelistedChannel(_ context.Context, ch *models.WhitelistedChannel) error {
	m.channels[ch.GuildID] = append(m.channels[ch.GuildID], ch)
	return nil
}

func (m *memSettings) RemoveWhitelistedChannel(_ context.Context, guildID, channelID string) (bool, error) {
	list := m.channels[guildID]
	for i, ch := range list {
		if ch.ChannelID == channelID {
			m.channels[guildID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memSettings) ClearWhitelistedChannels(_ context.Context, guildID string) (int64, error) {
	n := int64(len(m.channels[guildID]))
	delete(m.channels, guildID)
	return n, nil
}

func (m *memSettings) ListWhitelistedChannels(_ context.Context, guildID string) ([]*models.WhitelistedChannel, error) {
	return m.channels[guildID], nil
}

func (m *memSettings) IsChannelWhitelisted(_ context.Context, guildID, channelID string) (bool, error) {
	for _, ch := range m.channels[guildID] {
		if ch.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

func TestChannelAllowedWithoutWhitelist(t *testing.T) {
	repo := newMemSettings()

	if !channelAllowed(context.Background(), repo, "guild-1", "chan-1") {
		t.Error("with no whitelist configured every channel should be allowed")
	}
}

func TestChannelAllowedRespectsWhitelist(t *testing.T) {
	repo := newMemSettings()
	ctx := context.Background()

	if err := repo.AddWhitelistedChannel(ctx, &models.WhitelistedChannel{
		GuildID:   "guild-1",
		ChannelID: "chan-allowed",
	}); err != nil {
		t.Fatal(err)
	}

	if !channelAllowed(ctx, repo, "guild-1", "chan-allowed") {
		t.Error("whitelisted channel should be allowed")
	}
	if channelAllowed(ctx, repo, "guild-1", "chan-other") {
		t.Error("unlisted channel should be silenced while a whitelist exists")
	}

	// Clearing the whitelist reopens every channel.
	if _, err := repo.ClearWhitelistedChannels(ctx, "guild-1"); err != nil {
		t.Fatal(err)
	}
	if !channelAllowed(ctx, repo, "guild-1", "chan-other") {
		t.Error("after clearing the whitelist every channel should be allowed")
	}
}
