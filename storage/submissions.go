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

type SubmissionStorage interface {
	Get(ctx context.Context, id string) (*Submission, error)
	GetByTeam(ctx context.Context, teamID string) (*Submission, error)
	GetAll(ctx context.Context) ([]*Submission, error)
	Create(ctx context.Context, submission *Submission) error
	UpdateStatus(ctx context.Context, id string, status SubmissionStatus) error
	Delete(ctx context.Context, id string) error
}

type DynamoSubmissionStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoSubmissionStorage) Get(ctx context.Context, id string) (*Submission, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var submission Submission
	if err := attributevalue.UnmarshalMap(out.Item, &submission); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to unmarshal submission: %v", err)
		return nil, err
	}
	return &submission, nil
}

// GetByTeam is the one-active-record-per-team lookup. Enforcement of the
// one-per-team rule lives in the controller as an existence check.
func (s *DynamoSubmissionStorage) GetByTeam(ctx context.Context, teamID string) (*Submission, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("TeamID = :team"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":team": &types.AttributeValueMemberS{Value: teamID},
		},
	})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: scan by team %s failed: %v", teamID, err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var submission Submission
	if err := attributevalue.UnmarshalMap(out.Items[0], &submission); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to unmarshal submission: %v", err)
		return nil, err
	}
	return &submission, nil
}

func (s *DynamoSubmissionStorage) GetAll(ctx context.Context) ([]*Submission, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: scan failed: %v", err)
		return nil, err
	}

	var submissions []*Submission
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &submissions); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to unmarshal submission list: %v", err)
		return nil, err
	}
	return submissions, nil
}

func (s *DynamoSubmissionStorage) Create(ctx context.Context, submission *Submission) error {
	item, err := attributevalue.MarshalMap(submission)
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to marshal submission: %v", err)
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
		logging.Log.Errorf("SUBMISSION: failed to create submission: %v", err)
		return err
	}
	return nil
}

func (s *DynamoSubmissionStorage) UpdateStatus(ctx context.Context, id string, status SubmissionStatus) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #st = :status, UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{
			"#st": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":now":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("SUBMISSION: failed to update status for ID %s: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoSubmissionStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to marshal delete key for ID %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to delete submission with ID %s: %v", id, err)
		return err
	}
	return nil
}
