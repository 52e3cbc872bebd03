package commands

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	CheckXP,
	CheckMemberXP,
	Leaderboard,
	AddXP,
	RemoveXP,
	SetXP,
	AssignRoleXP,
	AssignBadgeXP,
	AssignStreakXP,
	UnassignRoleXP,
	CheckRoleXP,
	AddQuest,
	RemoveQuest,
	DeleteAllQuests,
	AllQuests,
	QuestPing,
	QuestChannel,
	QuestOptin,
	Whitelist,
}
