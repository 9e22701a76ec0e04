package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/cashewnuts/discord-chatbot/pkg/chatgpt"
	appconfig "github.com/cashewnuts/discord-chatbot/pkg/config"
	"github.com/cashewnuts/discord-chatbot/pkg/consumer"
	discordclient "github.com/cashewnuts/discord-chatbot/pkg/discord"
	"github.com/cashewnuts/discord-chatbot/pkg/dynamodb"
	"github.com/cashewnuts/discord-chatbot/pkg/relay"
)

func main() {
	ctx := context.Background()

	// Load application configuration
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateStream(); err != nil {
		log.Fatalf("Invalid stream config: %v", err)
	}

	// Initialize AWS SDK
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	// Initialize clients
	ddbClient := dynamodb.NewClientWithConfig(awsCfg)
	repo := dynamodb.NewCommandRepository(ddbClient, cfg.CommandsTable)

	discord, err := discordclient.NewClient(cfg.DiscordBotToken, cfg.DiscordApplicationID)
	if err != nil {
		log.Fatalf("Failed to create Discord client: %v", err)
	}

	completions := chatgpt.NewClient(cfg.ChatGPTAPIKey, cfg.ChatGPTModel)
	messageRelay := relay.New(discord, cfg.StreamBatchSize)
	processor := consumer.NewChatProcessor(completions, messageRelay)

	c := consumer.New(repo, processor, cfg.GetRelayTimeout())
	lambda.Start(c.HandleEvent)
}
