package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/leveling"
	"github.com/questcord/questbot/questbot/utils"
)

var CheckXP = discord.SlashCommandCreate{
	Name:        "checkxp",
	Description: "📊 View your XP, level and progress",
}

var CheckMemberXP = discord.SlashCommandCreate{
	Name:        "checkmemberxp",
	Description: "📊 View another member's XP and level",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "The member to look up",
			Required:    true,
		},
	},
}

func CheckXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return respondWithXP(b, e, e.User().ID.String(), e.User().Username)
	}
}

func CheckMemberXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.SlashCommandInteractionData().User("member")
		return respondWithXP(b, e, member.ID.String(), member.Username)
	}
}

func respondWithXP(b *questbot.Bot, e *handler.CommandEvent, userID, username string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := b.Ledger.Record(ctx, userID)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to fetch the XP record. Please try again later.")
	}

	total := rec.TotalXP()
	level := leveling.LevelFor(total)
	progressBar := createProgressBar(leveling.Progress(total))

	var nextLine string
	if toNext := leveling.XPToNext(total); toNext > 0 {
		nextLine = fmt.Sprintf("\x1b[1;35mNext level:\x1b[0m %d XP to go\n", toNext)
	} else {
		nextLine = "\x1b[1;35mMax level reached!\x1b[0m\n"
	}

	description := fmt.Sprintf("```ansi\n"+
		"\x1b[1;36mLevel %d\x1b[0m — %d XP total\n"+
		"\x1b[0;37m%s\x1b[0m\n"+
		"%s"+
		"\n"+
		"Quest XP:  %d\n"+
		"Badge XP:  %d\n"+
		"Streak XP: %d\n"+
		"```",
		level, total,
		progressBar,
		nextLine,
		rec.QuestXP,
		rec.BadgeXP,
		rec.StreakXP,
	)

	if !rec.OptedIn {
		description += "\n*Not opted in — react on the opt-in message to join the leaderboard.*"
	}

	now := time.Now()
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       fmt.Sprintf("📊 %s's XP", username),
			Description: description,
			Color:       config.InfoColor,
			Footer: &discord.EmbedFooter{
				Text: fmt.Sprintf("Requested by %s", e.User().Username),
			},
			Timestamp: &now,
		}},
	})
}

func createProgressBar(percent float64) string {
	const barLength = 10

	filled := int(percent / 100 * float64(barLength))
	if filled > barLength {
		filled = barLength
	}

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < barLength; i++ {
		if i < filled {
			bar.WriteString("■")
		} else {
			bar.WriteString("□")
		}
	}
	bar.WriteString(fmt.Sprintf("] %.1f%%", percent))

	return bar.String()
}
