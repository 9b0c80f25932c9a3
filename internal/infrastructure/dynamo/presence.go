package dynamo

import (
	"context"
	"fmt"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// PresenceRepo provides typed DynamoDB operations for the admin_presence table.
// One record per admin UID, merged on write and never hard-deleted; stale
// records are reinterpreted as offline by age, not removed.
type PresenceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPresenceRepo(client *dynamodb.Client, tableName string) *PresenceRepo {
	return &PresenceRepo{client: client, tableName: tableName}
}

// Merge upserts the given fields on the admin's record without touching
// unrelated attributes. UpdateItem creates the item when it is missing, which
// gives the same semantics as a merge-write.
func (r *PresenceRepo) Merge(ctx context.Context, userID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *PresenceRepo) Get(ctx context.Context, userID string) (*domain.PresenceRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("presence for %s: %w", userID, domain.ErrNotFound)
	}
	var p domain.PresenceRecord
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Scan returns every presence record. The admin set is small, so a full table
// scan is fine here.
func (r *PresenceRepo) Scan(ctx context.Context) ([]domain.PresenceRecord, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var records []domain.PresenceRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, err
	}
	return records, nil
}
