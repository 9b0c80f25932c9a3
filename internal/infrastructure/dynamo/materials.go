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

// MaterialRepo provides typed DynamoDB operations for the marketing_materials table.
type MaterialRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMaterialRepo(client *dynamodb.Client, tableName string) *MaterialRepo {
	return &MaterialRepo{client: client, tableName: tableName}
}

func (r *MaterialRepo) Put(ctx context.Context, m *domain.MarketingMaterial) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal material: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MaterialRepo) Get(ctx context.Context, materialID string) (*domain.MarketingMaterial, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("material_id", materialID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	var m domain.MarketingMaterial
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns every material record. The library is small and admin-only.
func (r *MaterialRepo) List(ctx context.Context) ([]domain.MarketingMaterial, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var materials []domain.MarketingMaterial
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// ListByCustomer queries the customer GSI for customer-specific materials.
func (r *MaterialRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.MarketingMaterial, error) {
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
	var materials []domain.MarketingMaterial
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *MaterialRepo) Delete(ctx context.Context, materialID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("material_id", materialID),
	})
	return err
}
