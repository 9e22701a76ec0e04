package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// ErrAlreadyProcessed is returned by MarkProcessed when another consumer
// invocation has already claimed the record
var ErrAlreadyProcessed = errors.New("command record already processed")

// CommandRepository handles DynamoDB operations for command records
type CommandRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewCommandRepository creates a new command repository
func NewCommandRepository(client *dynamodb.Client, tableName string) *CommandRepository {
	return &CommandRepository{
		client:    client,
		tableName: tableName,
	}
}

// Save stores a command record. The interactions handler must only return a
// deferred ack after this write succeeds.
func (r *CommandRepository) Save(ctx context.Context, record *models.CommandRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal command record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}

	log.Printf("Saved command record %s to DynamoDB", record.ID)
	return nil
}

// GetByID retrieves a command record by interaction id
func (r *CommandRepository) GetByID(ctx context.Context, id string) (*models.CommandRecord, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("command record not found: %s", id)
	}

	var record models.CommandRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshal command record: %w", err)
	}

	return &record, nil
}

// MarkProcessed claims a record for processing. The stream delivers records
// at least once, so the claim is a conditional write: it succeeds only when
// no consumer has set ProcessedAt yet, and bumps UpdatedAt on pickup. A
// duplicate delivery gets ErrAlreadyProcessed and must be skipped.
func (r *CommandRepository) MarkProcessed(ctx context.Context, id string, now time.Time) error {
	ts := strconv.FormatInt(now.Unix(), 10)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    stringPtr("SET ProcessedAt = :now, UpdatedAt = :now"),
		ConditionExpression: stringPtr("attribute_not_exists(ProcessedAt)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: ts},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("mark processed: %w", err)
	}

	return nil
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}
