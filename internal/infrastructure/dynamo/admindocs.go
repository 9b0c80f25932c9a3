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

// AdminDocumentRepo provides typed DynamoDB operations for the admin_documents table.
type AdminDocumentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAdminDocumentRepo(client *dynamodb.Client, tableName string) *AdminDocumentRepo {
	return &AdminDocumentRepo{client: client, tableName: tableName}
}

func (r *AdminDocumentRepo) Put(ctx context.Context, d *domain.AdminDocument) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal admin document: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AdminDocumentRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.AdminDocument, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("customer_id-index"),
		KeyConditionExpression: aws.String("customer_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: customerID},
		},
	})
	if err != nil {
		return nil, err
	}
	var docs []domain.AdminDocument
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *AdminDocumentRepo) Delete(ctx context.Context, documentID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("document_id", documentID),
	})
	return err
}
