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

// B2CCustomerRepo provides typed DynamoDB operations for the b2c_customers table.
type B2CCustomerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewB2CCustomerRepo(client *dynamodb.Client, tableName string) *B2CCustomerRepo {
	return &B2CCustomerRepo{client: client, tableName: tableName}
}

func (r *B2CCustomerRepo) Put(ctx context.Context, c *domain.B2CCustomer) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal b2c customer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *B2CCustomerRepo) Get(ctx context.Context, customerID string) (*domain.B2CCustomer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("customer_id", customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("b2c customer %s: %w", customerID, domain.ErrNotFound)
	}
	var c domain.B2CCustomer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *B2CCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.B2CCustomer, error) {
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
		return nil, fmt.Errorf("b2c customer for %s: %w", email, domain.ErrNotFound)
	}
	var c domain.B2CCustomer
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *B2CCustomerRepo) Update(ctx context.Context, customerID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("customer_id", customerID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *B2CCustomerRepo) Delete(ctx context.Context, customerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("customer_id", customerID),
	})
	return err
}
