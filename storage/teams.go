package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TeamStorage interface {
	Get(ctx context.Context, id string) (*Team, error)
	GetAll(ctx context.Context) ([]*Team, error)
	Create(ctx context.Context, team *Team) error
	Update(ctx context.Context, team *Team) error
	Delete(ctx context.Context, id string) error

	// Ledger operations. Each call is a single UpdateItem so the write is
	// atomic at the document level even under concurrent scorers.
	PrependBugLedgerEntry(ctx context.Context, teamID string, entry BugLedgerEntry) error
	IncrementBugLedgerHead(ctx context.Context, teamID string, scoreDelta int) error
	TruncateBugLedger(ctx context.Context, teamID string, fromIndex int) error

	UpsertJudgeScore(ctx context.Context, teamID, judgeID, roundID, categoryID string, score int) error
}

type DynamoTeamStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func (s *DynamoTeamStorage) Get(ctx context.Context, id string) (*Team, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("TEAM: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var team Team
	if err := attributevalue.UnmarshalMap(out.Item, &team); err != nil {
		logging.Log.Errorf("TEAM: failed to unmarshal team: %v", err)
		return nil, err
	}
	return &team, nil
}

func (s *DynamoTeamStorage) GetAll(ctx context.Context) ([]*Team, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("TEAM: scan failed: %v", err)
		return nil, err
	}

	var teams []*Team
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &teams); err != nil {
		logging.Log.Errorf("TEAM: failed to unmarshal team list: %v", err)
		return nil, err
	}
	return teams, nil
}

func (s *DynamoTeamStorage) Create(ctx context.Context, team *Team) error {
	item, err := attributevalue.MarshalMap(team)
	if err != nil {
		logging.Log.Errorf("TEAM: failed to marshal team: %v", err)
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
			logging.Log.Warnf("TEAM: team with ID %s already exists", team.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("TEAM: failed to create team: %v", err)
		return err
	}
	return nil
}

func (s *DynamoTeamStorage) Update(ctx context.Context, team *Team) error {
	item, err := attributevalue.MarshalMap(team)
	if err != nil {
		logging.Log.Errorf("TEAM: failed to marshal updated team: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to update team: %v", err)
		return err
	}
	return nil
}

func (s *DynamoTeamStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to marshal delete key for ID %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to delete team with ID %s: %v", id, err)
		return err
	}
	logging.Log.Infof("TEAM: deleted team with ID %s", id)
	return nil
}

// PrependBugLedgerEntry pushes a new snapshot to the head of the ledger in
// one UpdateItem call.
func (s *DynamoTeamStorage) PrependBugLedgerEntry(ctx context.Context, teamID string, entry BugLedgerEntry) error {
	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		logging.Log.Errorf("TEAM: failed to marshal ledger entry: %v", err)
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: teamID},
		},
		UpdateExpression:    aws.String("SET Bugs = list_append(:entry, if_not_exists(Bugs, :empty))"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":entry": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: av}}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("TEAM: failed to prepend ledger entry for team %s: %v", teamID, err)
		return err
	}
	return nil
}

// IncrementBugLedgerHead adjusts the current head score in place. Used for
// manual admin point corrections only; scoring events go through
// PrependBugLedgerEntry so history is preserved.
func (s *DynamoTeamStorage) IncrementBugLedgerHead(ctx context.Context, teamID string, scoreDelta int) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: teamID},
		},
		UpdateExpression:    aws.String("SET Bugs[0].Score = Bugs[0].Score + :delta"),
		ConditionExpression: aws.String("attribute_exists(Bugs[0])"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: itoa(scoreDelta)},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("TEAM: failed to increment ledger head for team %s: %v", teamID, err)
		return err
	}
	return nil
}

// TruncateBugLedger restores the ledger to a checkpoint: fromIndex -1 clears
// it entirely, fromIndex k keeps only entries at index >= k.
func (s *DynamoTeamStorage) TruncateBugLedger(ctx context.Context, teamID string, fromIndex int) error {
	if fromIndex == -1 {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(s.TableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: teamID},
			},
			UpdateExpression:    aws.String("SET Bugs = :empty"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			},
		})
		if err != nil {
			var cce *types.ConditionalCheckFailedException
			if errors.As(err, &cce) {
				return ErrNotFound
			}
			logging.Log.Errorf("TEAM: failed to clear ledger for team %s: %v", teamID, err)
			return err
		}
		return nil
	}

	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if fromIndex <= 0 || fromIndex > len(team.Bugs) {
		if fromIndex < 0 {
			return fmt.Errorf("invalid ledger restore index %d", fromIndex)
		}
		if fromIndex == 0 {
			return nil
		}
		fromIndex = len(team.Bugs)
	}

	expr := "REMOVE Bugs[0]"
	for i := 1; i < fromIndex; i++ {
		expr += fmt.Sprintf(", Bugs[%d]", i)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: teamID},
		},
		UpdateExpression: aws.String(expr),
	})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to truncate ledger for team %s: %v", teamID, err)
		return err
	}
	return nil
}

// UpsertJudgeScore writes one (judge, round, category) cell of the score
// matrix. Re-submitting an existing cell overwrites the score in place; the
// final write always targets a single path so it cannot duplicate entries.
func (s *DynamoTeamStorage) UpsertJudgeScore(ctx context.Context, teamID, judgeID, roundID, categoryID string, score int) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}

	judgeIdx := -1
	for i, js := range team.JudgeScore {
		if js.JudgeID == judgeID {
			judgeIdx = i
			break
		}
	}

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: teamID},
	}

	if judgeIdx == -1 {
		entry := JudgeScore{
			JudgeID: judgeID,
			Scores: []RoundScore{
				{RoundID: roundID, CategoryScores: []CategoryScore{{CategoryID: categoryID, Score: score}}},
			},
		}
		av, err := attributevalue.MarshalMap(entry)
		if err != nil {
			logging.Log.Errorf("TEAM: failed to marshal judge entry: %v", err)
			return err
		}
		_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(s.TableName),
			Key:              key,
			UpdateExpression: aws.String("SET JudgeScore = list_append(if_not_exists(JudgeScore, :empty), :entry)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":entry": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: av}}},
				":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			},
		})
		if err != nil {
			logging.Log.Errorf("TEAM: failed to append judge entry for team %s: %v", teamID, err)
		}
		return err
	}

	roundIdx := -1
	for i, rs := range team.JudgeScore[judgeIdx].Scores {
		if rs.RoundID == roundID {
			roundIdx = i
			break
		}
	}

	if roundIdx == -1 {
		entry := RoundScore{RoundID: roundID, CategoryScores: []CategoryScore{{CategoryID: categoryID, Score: score}}}
		av, err := attributevalue.MarshalMap(entry)
		if err != nil {
			logging.Log.Errorf("TEAM: failed to marshal round entry: %v", err)
			return err
		}
		_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(s.TableName),
			Key:              key,
			UpdateExpression: aws.String(fmt.Sprintf("SET JudgeScore[%d].Scores = list_append(JudgeScore[%d].Scores, :entry)", judgeIdx, judgeIdx)),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":entry": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: av}}},
			},
		})
		if err != nil {
			logging.Log.Errorf("TEAM: failed to append round entry for team %s: %v", teamID, err)
		}
		return err
	}

	catIdx := -1
	for i, cs := range team.JudgeScore[judgeIdx].Scores[roundIdx].CategoryScores {
		if cs.CategoryID == categoryID {
			catIdx = i
			break
		}
	}

	if catIdx == -1 {
		entry := CategoryScore{CategoryID: categoryID, Score: score}
		av, err := attributevalue.MarshalMap(entry)
		if err != nil {
			logging.Log.Errorf("TEAM: failed to marshal category entry: %v", err)
			return err
		}
		path := fmt.Sprintf("JudgeScore[%d].Scores[%d].CategoryScores", judgeIdx, roundIdx)
		_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(s.TableName),
			Key:              key,
			UpdateExpression: aws.String(fmt.Sprintf("SET %s = list_append(%s, :entry)", path, path)),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":entry": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: av}}},
			},
		})
		if err != nil {
			logging.Log.Errorf("TEAM: failed to append category entry for team %s: %v", teamID, err)
		}
		return err
	}

	path := fmt.Sprintf("JudgeScore[%d].Scores[%d].CategoryScores[%d].Score", judgeIdx, roundIdx, catIdx)
	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.TableName),
		Key:              key,
		UpdateExpression: aws.String(fmt.Sprintf("SET %s = :score", path)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":score": &types.AttributeValueMemberN{Value: itoa(score)},
		},
	})
	if err != nil {
		logging.Log.Errorf("TEAM: failed to overwrite category score for team %s: %v", teamID, err)
	}
	return err
}
