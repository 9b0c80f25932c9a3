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

// EmailVerificationRepo manages single-use email verification codes, with the
// same consumption and retention rules as password resets.
type EmailVerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEmailVerificationRepo(client *dynamodb.Client, tableName string) *EmailVerificationRepo {
	return &EmailVerificationRepo{client: client, tableName: tableName}
}

func (r *EmailVerificationRepo) Put(ctx context.Context, rec *domain.EmailVerificationRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal email verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *EmailVerificationRepo) GetByEmailAndCode(ctx context.Context, email, code string) (*domain.EmailVerificationRecord, error) {
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
		return nil, fmt.Errorf("verification code: %w", domain.ErrNotFound)
	}
	var rec domain.EmailVerificationRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *EmailVerificationRepo) MarkVerified(ctx context.Context, verificationID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"verified": true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("verification_id", verificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
