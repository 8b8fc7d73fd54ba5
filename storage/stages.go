package storage

import (
	"context"
	"errors"
	"time"

	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type StageStorage interface {
	Get(ctx context.Context, id string) (*Stage, error)
	GetAll(ctx context.Context) ([]*Stage, error)
	Create(ctx context.Context, stage *Stage) error
	Update(ctx context.Context, stage *Stage) error
	Delete(ctx context.Context, id string) error
	FindOpenByKind(ctx context.Context, kind StageKind) (*Stage, error)
	FindByKind(ctx context.Context, kind StageKind) (*Stage, error)
	FindPrevious(ctx context.Context, kind StageKind) (*Stage, error)
}

type DynamoStageStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoStageStorage) Get(ctx context.Context, id string) (*Stage, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("STAGE: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("STAGE: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var stage Stage
	if err := attributevalue.UnmarshalMap(out.Item, &stage); err != nil {
		logging.Log.Errorf("STAGE: failed to unmarshal stage: %v", err)
		return nil, err
	}
	return &stage, nil
}

func (s *DynamoStageStorage) GetAll(ctx context.Context) ([]*Stage, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("STAGE: scan failed: %v", err)
		return nil, err
	}

	var stages []*Stage
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &stages); err != nil {
		logging.Log.Errorf("STAGE: failed to unmarshal stage list: %v", err)
		return nil, err
	}
	return stages, nil
}

func (s *DynamoStageStorage) Create(ctx context.Context, stage *Stage) error {
	item, err := attributevalue.MarshalMap(stage)
	if err != nil {
		logging.Log.Errorf("STAGE: failed to marshal stage: %v", err)
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
			logging.Log.Warnf("STAGE: stage with ID %s already exists", stage.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("STAGE: failed to create stage: %v", err)
		return err
	}
	return nil
}

func (s *DynamoStageStorage) Update(ctx context.Context, stage *Stage) error {
	item, err := attributevalue.MarshalMap(stage)
	if err != nil {
		logging.Log.Errorf("STAGE: failed to marshal updated stage: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("STAGE: failed to update stage: %v", err)
		return err
	}
	return nil
}

func (s *DynamoStageStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("STAGE: failed to marshal delete key for ID %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("STAGE: failed to delete stage with ID %s: %v", id, err)
		return err
	}
	return nil
}

// FindOpenByKind returns a stage of the given kind whose window has not
// closed yet, or ErrNotFound.
func (s *DynamoStageStorage) FindOpenByKind(ctx context.Context, kind StageKind) (*Stage, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("Kind = :kind AND EndDate >= :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberN{Value: itoa(int(kind))},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		logging.Log.Errorf("STAGE: open-window scan for kind %s failed: %v", kind, err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var stage Stage
	if err := attributevalue.UnmarshalMap(out.Items[0], &stage); err != nil {
		logging.Log.Errorf("STAGE: failed to unmarshal open stage: %v", err)
		return nil, err
	}
	return &stage, nil
}

// FindByKind returns any stage of the given kind, regardless of its window.
func (s *DynamoStageStorage) FindByKind(ctx context.Context, kind StageKind) (*Stage, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("Kind = :kind"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberN{Value: itoa(int(kind))},
		},
	})
	if err != nil {
		logging.Log.Errorf("STAGE: scan for kind %s failed: %v", kind, err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var stage Stage
	if err := attributevalue.UnmarshalMap(out.Items[0], &stage); err != nil {
		logging.Log.Errorf("STAGE: failed to unmarshal stage: %v", err)
		return nil, err
	}
	return &stage, nil
}

// FindPrevious returns the stage with the greatest kind strictly below the
// given one, or ErrNotFound when the given kind is first in the order.
func (s *DynamoStageStorage) FindPrevious(ctx context.Context, kind StageKind) (*Stage, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("Kind < :kind"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberN{Value: itoa(int(kind))},
		},
	})
	if err != nil {
		logging.Log.Errorf("STAGE: previous-stage scan for kind %s failed: %v", kind, err)
		return nil, err
	}

	var stages []*Stage
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &stages); err != nil {
		logging.Log.Errorf("STAGE: failed to unmarshal previous candidates: %v", err)
		return nil, err
	}

	var prev *Stage
	for _, st := range stages {
		if prev == nil || st.Kind > prev.Kind {
			prev = st
		}
	}
	if prev == nil {
		return nil, ErrNotFound
	}
	return prev, nil
}
