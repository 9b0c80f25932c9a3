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

// AffiliateRepo provides typed DynamoDB operations for the affiliates table.
type AffiliateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAffiliateRepo(client *dynamodb.Client, tableName string) *AffiliateRepo {
	return &AffiliateRepo{client: client, tableName: tableName}
}

func (r *AffiliateRepo) Put(ctx context.Context, a *domain.Affiliate) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal affiliate: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AffiliateRepo) Get(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("affiliate_id", affiliateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("affiliate %s: %w", affiliateID, domain.ErrNotFound)
	}
	var a domain.Affiliate
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AffiliateRepo) GetByEmail(ctx context.Context, email string) (*domain.Affiliate, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *AffiliateRepo) GetByCode(ctx context.Context, code string) (*domain.Affiliate, error) {
	return r.queryGSI(ctx, "affiliate_code-index", "affiliate_code", code)
}

func (r *AffiliateRepo) Update(ctx context.Context, affiliateID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("affiliate_id", affiliateID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *AffiliateRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Affiliate, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("affiliate by %s: %w", attr, domain.ErrNotFound)
	}
	var a domain.Affiliate
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
