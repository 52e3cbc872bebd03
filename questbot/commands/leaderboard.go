package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/utils"
	"github.com/questcord/questbot/questbot/xp"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 View the community XP leaderboard",
}

func LeaderboardHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := b.Leaderboard.Rank(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to build the leaderboard. Please try again later.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody is on the leaderboard yet. React on the opt-in message to join!")
		}

		totalPages := int(math.Ceil(float64(len(entries)) / float64(config.LeaderboardPageSize)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.LeaderboardPageSize
				endIdx := min(startIdx+config.LeaderboardPageSize, len(entries))

				var description strings.Builder
				for _, entry := range entries[startIdx:endIdx] {
					description.WriteString(formatLeaderboardEntry(entry))
				}

				embed.
					SetTitle("🏆 XP Leaderboard").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total Members: %d", page+1, totalPages, len(entries)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func formatLeaderboardEntry(entry xp.LeaderboardEntry) string {
	medal := fmt.Sprintf("`#%d`", entry.Rank)
	switch entry.Rank {
	case 1:
		medal = "🥇"
	case 2:
		medal = "🥈"
	case 3:
		medal = "🥉"
	}
	return fmt.Sprintf("%s <@%s> — **%d XP** (Level %d)\n", medal, entry.UserID, entry.TotalXP, entry.Level)
}
