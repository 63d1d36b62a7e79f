package store

import (
	"context"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamoTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	KindTransfer = "transfer"
	KindBoard    = "board"
)

// ResourceRecord is what we remember about a transfer or board we created.
type ResourceRecord struct {
	ID         string     `dynamodbav:"id" json:"id"`
	Kind       string     `dynamodbav:"kind" json:"kind"`
	Name       string     `dynamodbav:"name,omitempty" json:"name,omitempty"`
	State      string     `dynamodbav:"state" json:"state"`
	URL        string     `dynamodbav:"url,omitempty" json:"url,omitempty"`
	ExpiresAt  *time.Time `dynamodbav:"expires_at,omitempty" json:"expires_at,omitempty"`
	Files      int        `dynamodbav:"files" json:"files"`
	RecordedAt time.Time  `dynamodbav:"recorded_at" json:"recorded_at"`
}

type ResourceStore interface {
	Save(ctx context.Context, rec ResourceRecord) error
	Get(ctx context.Context, id string) (*ResourceRecord, error)
}

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type DynamoDbResourceStore struct {
	Client    DynamoAPI
	TableName string
}

func NewResourceStore(dbClient DynamoAPI, tableName string) *DynamoDbResourceStore {
	return &DynamoDbResourceStore{
		Client:    dbClient,
		TableName: tableName,
	}
}

func (s *DynamoDbResourceStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})

	return err
}

func (s *DynamoDbResourceStore) Name() string {
	return "ResourceStore[" + s.TableName + "]"
}

func (s *DynamoDbResourceStore) Save(ctx context.Context, rec ResourceRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.TableName),
		Item:      item,
	})
	return err
}

func (s *DynamoDbResourceStore) Get(ctx context.Context, id string) (*ResourceRecord, error) {
	res, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]dynamoTypes.AttributeValue{
			"id": &dynamoTypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, err
	}
	if res.Item == nil {
		return nil, apperror.ErrRecordNotFound
	}

	var rec ResourceRecord
	if err := attributevalue.UnmarshalMap(res.Item, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

type NullResourceStore struct {
	// do nothing
}

func NewNullResourceStore() *NullResourceStore {
	return &NullResourceStore{}
}

func (s *NullResourceStore) Save(ctx context.Context, rec ResourceRecord) error {
	return nil
}

func (s *NullResourceStore) Get(ctx context.Context, id string) (*ResourceRecord, error) {
	return nil, apperror.ErrRecordNotFound
}
