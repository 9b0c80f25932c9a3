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

// CredentialRepo provides typed DynamoDB operations for the credentials table.
// It is the identity backend behind every account class; callers discriminate
// on domain.ErrUserNotFound / domain.ErrEmailExists.
type CredentialRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCredentialRepo(client *dynamodb.Client, tableName string) *CredentialRepo {
	return &CredentialRepo{client: client, tableName: tableName}
}

func (r *CredentialRepo) Put(ctx context.Context, c *domain.Credential) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CredentialRepo) Get(ctx context.Context, credentialID string) (*domain.Credential, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("credential_id", credentialID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("credential %s: %w", credentialID, domain.ErrUserNotFound)
	}
	var c domain.Credential
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#e = :v"),
		ExpressionAttributeNames:  map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("credential for %s: %w", email, domain.ErrUserNotFound)
	}
	var c domain.Credential
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepo) Update(ctx context.Context, credentialID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("credential_id", credentialID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// Delete removes the credential record entirely. Account deletion revokes
// identity first, so this is a hard delete.
func (r *CredentialRepo) Delete(ctx context.Context, credentialID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("credential_id", credentialID),
	})
	return err
}
