package storage

import (
	"context"
	"errors"

	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type BugTypeStorage interface {
	Get(ctx context.Context, name string) (*BugType, error)
	GetAll(ctx context.Context) ([]*BugType, error)
	Create(ctx context.Context, bugType *BugType) error
	Update(ctx context.Context, bugType *BugType) error
}

// DynamoBugTypeStorage keys bug types by name, so name uniqueness falls
// out of the table key.
type DynamoBugTypeStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoBugTypeStorage) Get(ctx context.Context, name string) (*BugType, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": name})
	if err != nil {
		logging.Log.Errorf("BUGTYPE: failed to marshal key for %s: %v", name, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("BUGTYPE: GetItem for %s failed: %v", name, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var bt BugType
	if err := attributevalue.UnmarshalMap(out.Item, &bt); err != nil {
		logging.Log.Errorf("BUGTYPE: failed to unmarshal bug type: %v", err)
		return nil, err
	}
	return &bt, nil
}

func (s *DynamoBugTypeStorage) GetAll(ctx context.Context) ([]*BugType, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("BUGTYPE: scan failed: %v", err)
		return nil, err
	}

	var bugTypes []*BugType
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &bugTypes); err != nil {
		logging.Log.Errorf("BUGTYPE: failed to unmarshal bug type list: %v", err)
		return nil, err
	}
	return bugTypes, nil
}

func (s *DynamoBugTypeStorage) Create(ctx context.Context, bugType *BugType) error {
	item, err := attributevalue.MarshalMap(bugType)
	if err != nil {
		logging.Log.Errorf("BUGTYPE: failed to marshal bug type: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("BUGTYPE: bug type %s already exists", bugType.Name)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("BUGTYPE: failed to create bug type: %v", err)
		return err
	}
	return nil
}

func (s *DynamoBugTypeStorage) Update(ctx context.Context, bugType *BugType) error {
	item, err := attributevalue.MarshalMap(bugType)
	if err != nil {
		logging.Log.Errorf("BUGTYPE: failed to marshal updated bug type: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("BUGTYPE: failed to update bug type: %v", err)
		return err
	}
	return nil
}
