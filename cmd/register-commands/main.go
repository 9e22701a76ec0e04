package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	appconfig "github.com/cashewnuts/discord-chatbot/pkg/config"
	discordclient "github.com/cashewnuts/discord-chatbot/pkg/discord"
)

func main() {
	guildID := flag.String("guild", "", "register commands for a single guild instead of globally")
	list := flag.Bool("list", false, "list registered commands and exit")
	deleteID := flag.String("delete", "", "delete the command with the given id and exit")
	flag.Parse()

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	discord, err := discordclient.NewClient(cfg.DiscordBotToken, cfg.DiscordApplicationID)
	if err != nil {
		log.Fatalf("Failed to create Discord client: %v", err)
	}

	ctx := context.Background()

	switch {
	case *list:
		commands, err := discord.Commands(ctx, *guildID)
		if err != nil {
			log.Fatalf("Failed to list commands: %v", err)
		}
		for _, cmd := range commands {
			fmt.Printf("%s\t%s\t%s\n", cmd.ID, cmd.Name, cmd.Description)
		}
	case *deleteID != "":
		if err := discord.DeleteCommand(ctx, *guildID, *deleteID); err != nil {
			log.Fatalf("Failed to delete command %s: %v", *deleteID, err)
		}
		log.Printf("Deleted command %s", *deleteID)
	default:
		for _, cmd := range discordclient.AllCommands() {
			registered, err := discord.RegisterCommand(ctx, *guildID, cmd)
			if err != nil {
				log.Fatalf("Failed to register command %s: %v", cmd.Name, err)
			}
			log.Printf("Registered command %s as %s", registered.Name, registered.ID)
		}
	}
}
