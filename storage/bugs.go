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

type BugStorage interface {
	Get(ctx context.Context, id string) (*Bug, error)
	GetAll(ctx context.Context) ([]*Bug, error)
	Create(ctx context.Context, bug *Bug) error
	Update(ctx context.Context, bug *Bug) error
}

type DynamoBugStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoBugStorage) Get(ctx context.Context, id string) (*Bug, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("BUGS: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("BUGS: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var bug Bug
	if err := attributevalue.UnmarshalMap(out.Item, &bug); err != nil {
		logging.Log.Errorf("BUGS: failed to unmarshal bug: %v", err)
		return nil, err
	}
	return &bug, nil
}

func (s *DynamoBugStorage) GetAll(ctx context.Context) ([]*Bug, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("BUGS: scan failed: %v", err)
		return nil, err
	}

	var bugs []*Bug
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &bugs); err != nil {
		logging.Log.Errorf("BUGS: failed to unmarshal bug list: %v", err)
		return nil, err
	}
	return bugs, nil
}

func (s *DynamoBugStorage) Create(ctx context.Context, bug *Bug) error {
	item, err := attributevalue.MarshalMap(bug)
	if err != nil {
		logging.Log.Errorf("BUGS: failed to marshal bug: %v", err)
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
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("BUGS: failed to create bug: %v", err)
		return err
	}
	return nil
}

func (s *DynamoBugStorage) Update(ctx context.Context, bug *Bug) error {
	item, err := attributevalue.MarshalMap(bug)
	if err != nil {
		logging.Log.Errorf("BUGS: failed to marshal updated bug: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("BUGS: failed to update bug: %v", err)
		return err
	}
	return nil
}
