package consumer

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// decodeRecord unmarshals a stream image into a command record. The stream
// event types and the SDK attribute types are distinct, so the image is
// converted first and then unmarshaled through the usual dynamodbav tags.
func decodeRecord(image map[string]events.DynamoDBAttributeValue) (*models.CommandRecord, error) {
	converted, err := convertImage(image)
	if err != nil {
		return nil, err
	}

	var record models.CommandRecord
	if err := attributevalue.UnmarshalMap(converted, &record); err != nil {
		return nil, fmt.Errorf("unmarshal command record: %w", err)
	}
	if record.ID == "" {
		return nil, fmt.Errorf("command record has no Id")
	}

	return &record, nil
}

func convertImage(image map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(image))
	for key, value := range image {
		converted, err := convertAttribute(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", key, err)
		}
		out[key] = converted
	}
	return out, nil
}

func convertAttribute(av events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch av.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: av.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: av.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: av.Boolean()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: av.IsNull()}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: av.Binary()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: av.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: av.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: av.BinarySet()}, nil
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(av.List()))
		for _, item := range av.List() {
			converted, err := convertAttribute(item)
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case events.DataTypeMap:
		converted, err := convertImage(av.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: converted}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %v", av.DataType())
	}
}
