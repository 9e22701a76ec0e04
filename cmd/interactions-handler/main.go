package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	appconfig "github.com/cashewnuts/discord-chatbot/pkg/config"
	discordclient "github.com/cashewnuts/discord-chatbot/pkg/discord"
	"github.com/cashewnuts/discord-chatbot/pkg/dynamodb"
	"github.com/cashewnuts/discord-chatbot/pkg/handler"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// Handler is the Lambda handler for Discord interaction webhooks
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received %s %s", request.HTTPMethod, request.Path)

	// Load configuration
	cfg, err := appconfig.Load()
	if err != nil {
		return internalError("Failed to load config", err)
	}
	if err := cfg.ValidateWebhook(); err != nil {
		return internalError("Invalid webhook config", err)
	}

	publicKey, err := handler.ParsePublicKey(cfg.DiscordPublicKey)
	if err != nil {
		return internalError("Invalid bot public key", err)
	}

	body, err := requestBody(request)
	if err != nil {
		return textResponse(http.StatusBadRequest, "invalid request body"), nil
	}

	// Validate the request signature before anything else touches the body.
	// The signature covers the exact bytes as received.
	if err := handler.VerifyInteraction(
		publicKey,
		headerValue(request.Headers, "X-Signature-Timestamp"),
		headerValue(request.Headers, "X-Signature-Ed25519"),
		body,
	); err != nil {
		log.Printf("Invalid request signature: %v", err)
		return textResponse(http.StatusUnauthorized, "invalid request signature"), nil
	}

	switch {
	case request.HTTPMethod == http.MethodGet && request.Path == "/":
		return textResponse(http.StatusOK, "Hello world!"), nil
	case request.HTTPMethod == http.MethodPost && request.Path == "/api/interactions":
		return handleInteractions(ctx, cfg, body)
	default:
		log.Printf("Unknown route: %s %s", request.HTTPMethod, request.Path)
		return textResponse(http.StatusNotFound, "Not found"), nil
	}
}

// handleInteractions decodes the verified body and dispatches it
func handleInteractions(ctx context.Context, cfg *appconfig.Config, body []byte) (events.APIGatewayProxyResponse, error) {
	var interaction models.InteractionRequest
	if err := json.Unmarshal(body, &interaction); err != nil {
		log.Printf("Failed to parse interaction: %v", err)
		return textResponse(http.StatusBadRequest, "invalid interaction payload"), nil
	}

	// Initialize AWS SDK
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return internalError("Failed to load AWS config", err)
	}

	// Initialize clients
	discord, err := discordclient.NewClient(cfg.DiscordBotToken, cfg.DiscordApplicationID)
	if err != nil {
		return internalError("Failed to create Discord client", err)
	}
	ddbClient := dynamodb.NewClientWithConfig(awsCfg)
	repo := dynamodb.NewCommandRepository(ddbClient, cfg.CommandsTable)

	router := handler.NewRouter(discord, repo, cfg.DiscordApplicationID)
	resp, err := router.Route(ctx, &interaction)
	if err != nil {
		return internalError("Failed to route interaction", err)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    map[string]string{"Content-Type": resp.ContentType},
	}, nil
}

// requestBody returns the raw body bytes, decoding the API Gateway base64
// wrapping when present
func requestBody(request events.APIGatewayProxyRequest) ([]byte, error) {
	if request.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(request.Body)
	}
	return []byte(request.Body), nil
}

// headerValue looks a header up case-insensitively; API Gateway forwards
// HTTP/2 headers lowercased
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	return headers[strings.ToLower(name)]
}

// internalError returns a 500 error response
func internalError(message string, err error) (events.APIGatewayProxyResponse, error) {
	log.Printf("ERROR: %s: %v", message, err)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       fmt.Sprintf(`{"error":"%s"}`, message),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

// textResponse returns a plain-text response
func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

func main() {
	lambda.Start(Handler)
}
