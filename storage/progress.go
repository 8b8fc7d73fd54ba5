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

type ProgressStorage interface {
	GetByTeam(ctx context.Context, teamID string) (*Progress, error)
	Create(ctx context.Context, progress *Progress) error
	RebindStage(ctx context.Context, teamID, stageID string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

// DynamoProgressStorage keys progress records by team ID: the one-per-team
// invariant falls out of the table key.
type DynamoProgressStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoProgressStorage) GetByTeam(ctx context.Context, teamID string) (*Progress, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": teamID})
	if err != nil {
		logging.Log.Errorf("PROGRESS: failed to marshal key for team %s: %v", teamID, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("PROGRESS: GetItem for team %s failed: %v", teamID, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var progress Progress
	if err := attributevalue.UnmarshalMap(out.Item, &progress); err != nil {
		logging.Log.Errorf("PROGRESS: failed to unmarshal progress: %v", err)
		return nil, err
	}
	return &progress, nil
}

func (s *DynamoProgressStorage) Create(ctx context.Context, progress *Progress) error {
	progress.ID = progress.TeamID
	item, err := attributevalue.MarshalMap(progress)
	if err != nil {
		logging.Log.Errorf("PROGRESS: failed to marshal progress: %v", err)
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
			logging.Log.Warnf("PROGRESS: progress for team %s already exists", progress.TeamID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("PROGRESS: failed to create progress: %v", err)
		return err
	}
	return nil
}

// RebindStage points the team's progress at a different stage. This is the
// only way progress moves through the pipeline; admin submission decisions
// call it with the finals or qualifiers stage.
func (s *DynamoProgressStorage) RebindStage(ctx context.Context, teamID, stageID string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: teamID},
		},
		UpdateExpression:    aws.String("SET StageID = :stage, StageBoundAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":stage": &types.AttributeValueMemberS{Value: stageID},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("PROGRESS: failed to rebind stage for team %s: %v", teamID, err)
		return err
	}
	return nil
}

func (s *DynamoProgressStorage) DeleteByTeam(ctx context.Context, teamID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": teamID})
	if err != nil {
		logging.Log.Errorf("PROGRESS: failed to marshal delete key for team %s: %v", teamID, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("PROGRESS: failed to delete progress for team %s: %v", teamID, err)
		return err
	}
	return nil
}
