package discord

import "github.com/bwmarrin/discordgo"

// readCountOption is shared by the history-seeded commands
func readCountOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "read_count",
		Description: "Read messages count. default is 3",
		Required:    false,
		MaxValue:    100,
	}
}

// ChatCommand answers from the most recent channel message
func ChatCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "chat",
		Type:        discordgo.ChatApplicationCommand,
		Description: "ChatGPT command",
	}
}

// ChatsCommand answers from the last N channel messages
func ChatsCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "chats",
		Type:        discordgo.ChatApplicationCommand,
		Description: "ChatGPT command",
		Options:     []*discordgo.ApplicationCommandOption{readCountOption()},
	}
}

// ChataCommand answers from thread history; only valid inside a thread
func ChataCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "chata",
		Type:        discordgo.ChatApplicationCommand,
		Description: "ChatGPT command in a thread",
		Options:     []*discordgo.ApplicationCommandOption{readCountOption()},
	}
}

// AllCommands returns every command this bot registers
func AllCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		ChatCommand(),
		ChatsCommand(),
		ChataCommand(),
	}
}
