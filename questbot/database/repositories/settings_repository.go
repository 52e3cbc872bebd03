package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type SettingsRepository interface {
	GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)
	UpsertGuildSettings(ctx context.Context, settings *models.GuildSettings) error

	AddWhitelistedChannel(ctx context.Context, channel *models.WhitelistedChannel) error
	RemoveWhitelistedChannel(ctx context.Context, guildID, channelID string) (bool, error)
	ClearWhitelistedChannels(ctx context.Context, guildID string) (int64, error)
	ListWhitelistedChannels(ctx context.Context, guildID string) ([]*models.WhitelistedChannel, error)
	IsChannelWhitelisted(ctx context.Context, guildID, channelID string) (bool, error)
}

type settingsRepository struct {
	*BaseRepository
}

func NewSettingsRepository(db *bun.DB) SettingsRepository {
	return &settingsRepository{BaseRepository: NewBaseRepository(db)}
}

// GetGuildSettings returns the guild's settings, or a zero-valued row when
// the guild has never been configured.
func (r *settingsRepository) GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	settings := new(models.GuildSettings)
	err := r.GetDB().NewSelect().
		Model(settings).
		Where("guild_id = ?", guildID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.GuildSettings{GuildID: guildID}, nil
		}
		return nil, r.HandleErrorWithID("get", "guild_settings", guildID, err)
	}
	return settings, nil
}

func (r *settingsRepository) UpsertGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	settings.UpdatedAt = time.Now()

	_, err := r.GetDB().NewInsert().
		Model(settings).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("quest_ping_role_id = EXCLUDED.quest_ping_role_id").
		Set("quest_channel_id = EXCLUDED.quest_channel_id").
		Set("optin_message_id = EXCLUDED.optin_message_id").
		Set("optin_channel_id = EXCLUDED.optin_channel_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return r.HandleErrorWithID("upsert", "guild_settings", settings.GuildID, err)
}

func (r *settingsRepository) AddWhitelistedChannel(ctx context.Context, channel *models.WhitelistedChannel) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if channel.CreatedAt.IsZero() {
		channel.CreatedAt = time.Now()
	}

	_, err := r.GetDB().NewInsert().
		Model(channel).
		On("CONFLICT (guild_id, channel_id) DO UPDATE").
		Set("channel_name = EXCLUDED.channel_name").
		Exec(ctx)
	return r.HandleErrorWithID("add", "whitelisted_channel", channel.ChannelID, err)
}

func (r *settingsRepository) RemoveWhitelistedChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.GetDB().NewDelete().
		Model((*models.WhitelistedChannel)(nil)).
		Where("guild_id = ?", guildID).
		Where("channel_id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("remove", "whitelisted_channel", channelID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("remove", "whitelisted_channel", channelID, err)
	}
	return affected > 0, nil
}

func (r *settingsRepository) ClearWhitelistedChannels(ctx context.Context, guildID string) (int64, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.GetDB().NewDelete().
		Model((*models.WhitelistedChannel)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return 0, r.HandleErrorWithID("clear", "whitelisted_channel", guildID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, r.HandleErrorWithID("clear", "whitelisted_channel", guildID, err)
	}
	return affected, nil
}

func (r *settingsRepository) ListWhitelistedChannels(ctx context.Context, guildID string) ([]*models.WhitelistedChannel, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var channels []*models.WhitelistedChannel
	err := r.GetDB().NewSelect().
		Model(&channels).
		Where("guild_id = ?", guildID).
		Order("channel_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list", "whitelisted_channel", err)
	}
	return channels, nil
}

func (r *settingsRepository) IsChannelWhitelisted(ctx context.Context, guildID, channelID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.GetDB().NewSelect().
		Model((*models.WhitelistedChannel)(nil)).
		Where("guild_id = ?", guildID).
		Where("channel_id = ?", channelID).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("is_whitelisted", "whitelisted_channel", err)
	}
	return exists, nil
}
