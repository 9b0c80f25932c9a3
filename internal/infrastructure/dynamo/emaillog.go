package dynamo

import (
	"context"
	"fmt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EmailLogRepo records every send attempt the dispatcher makes.
type EmailLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEmailLogRepo(client *dynamodb.Client, tableName string) *EmailLogRepo {
	return &EmailLogRepo{client: client, tableName: tableName}
}

func (r *EmailLogRepo) Put(ctx context.Context, e *domain.EmailLogEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal email log entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByRecipient queries the to-address GSI, newest first by ULID ordering.
func (r *EmailLogRepo) ListByRecipient(ctx context.Context, to string) ([]domain.EmailLogEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("to-index"),
		KeyConditionExpression:   aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{"#t": "to"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: to},
		},
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.EmailLogEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
