package consumer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cashewnuts/discord-chatbot/pkg/dynamodb"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// CommandStore claims command records for exclusive processing
type CommandStore interface {
	MarkProcessed(ctx context.Context, id string, now time.Time) error
}

// CommandProcessor handles one claimed command record
type CommandProcessor interface {
	Process(ctx context.Context, record *models.CommandRecord) error
}

// Consumer fans a DynamoDB stream batch out to one task per inserted command
// record and joins the batch before acknowledging. A failing record is
// reported through batchItemFailures without aborting its siblings.
type Consumer struct {
	store     CommandStore
	processor CommandProcessor
	timeout   time.Duration
}

// New creates a consumer. The timeout bounds each record's processing so a
// hung upstream stream cannot block the worker past the interaction token's
// validity window.
func New(store CommandStore, processor CommandProcessor, timeout time.Duration) *Consumer {
	return &Consumer{
		store:     store,
		processor: processor,
		timeout:   timeout,
	}
}

// HandleEvent is the Lambda handler for one stream batch
func (c *Consumer) HandleEvent(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	log.Printf("Received stream batch with %d records", len(event.Records))

	var (
		mu       sync.Mutex
		failures []events.DynamoDBBatchItemFailure
		wg       sync.WaitGroup
	)

	for _, record := range event.Records {
		if record.EventName != string(events.DynamoDBOperationTypeInsert) {
			log.Printf("Ignoring %s event %s", record.EventName, record.EventID)
			continue
		}

		cmd, err := decodeRecord(record.Change.NewImage)
		if err != nil {
			// Unrecognized records support schema evolution across deploys;
			// they are skipped, not failed
			log.Printf("Skipping undecodable record %s: %v", record.EventID, err)
			continue
		}
		if cmd.CommandType != models.CommandTypeChat || cmd.Chat == nil {
			log.Printf("Skipping record %s with unknown command type %q", cmd.ID, cmd.CommandType)
			continue
		}

		wg.Add(1)
		go func(sequenceNumber string, cmd *models.CommandRecord) {
			defer wg.Done()
			if err := c.processRecord(ctx, cmd); err != nil {
				log.Printf("ERROR: processing command %s failed: %v", cmd.ID, err)
				mu.Lock()
				failures = append(failures, events.DynamoDBBatchItemFailure{
					ItemIdentifier: sequenceNumber,
				})
				mu.Unlock()
			}
		}(record.Change.SequenceNumber, cmd)
	}

	wg.Wait()

	return events.DynamoDBEventResponse{BatchItemFailures: failures}, nil
}

func (c *Consumer) processRecord(ctx context.Context, cmd *models.CommandRecord) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// The stream delivers at least once; the conditional claim makes sure a
	// redelivered command does not produce a second completion call
	err := c.store.MarkProcessed(ctx, cmd.ID, time.Now())
	if errors.Is(err, dynamodb.ErrAlreadyProcessed) {
		log.Printf("Command %s already processed, skipping duplicate delivery", cmd.ID)
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Processing command %s for channel %s", cmd.ID, cmd.Chat.ChannelID)
	return c.processor.Process(ctx, cmd)
}
