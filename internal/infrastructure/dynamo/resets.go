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

// PasswordResetRepo manages single-use password reset codes.
// ExpiresAt is a Unix timestamp; expiry is checked at consumption time.
// Consumed records stay (used=true) and unconsumed expired ones are not swept.
type PasswordResetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPasswordResetRepo(client *dynamodb.Client, tableName string) *PasswordResetRepo {
	return &PasswordResetRepo{client: client, tableName: tableName}
}

func (r *PasswordResetRepo) Put(ctx context.Context, rec *domain.PasswordResetRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal password reset: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// GetByEmailAndCode queries the email GSI and filters for the given code.
func (r *PasswordResetRepo) GetByEmailAndCode(ctx context.Context, email, code string) (*domain.PasswordResetRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("email-index"),
		KeyConditionExpression:   aws.String("#e = :e"),
		FilterExpression:         aws.String("code = :c"),
		ExpressionAttributeNames: map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":c": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("reset code: %w", domain.ErrNotFound)
	}
	var rec domain.PasswordResetRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkUsed consumes the code. Once set, the record must never authorize a
// second reset.
func (r *PasswordResetRepo) MarkUsed(ctx context.Context, resetID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"used": true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("reset_id", resetID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
