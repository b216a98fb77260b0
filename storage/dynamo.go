package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"sort"
	"strconv"
)

// DynamoLedgerStorage keeps one table per record kind. Elections are keyed by
// PK only; candidates, voters and ballots by (PK = election id, SK).
type DynamoLedgerStorage struct {
	Client              *dynamodb.Client
	TableNameElections  string
	TableNameCandidates string
	TableNameVoters     string
	TableNameBallots    string
}

func (s *DynamoLedgerStorage) Load(ctx context.Context) (*Snapshot, error) {
	var err error
	snap := &Snapshot{}

	if snap.Elections, err = scanTable[Election](ctx, s.Client, s.TableNameElections); err != nil {
		return nil, err
	}
	if snap.Candidates, err = scanTable[Candidate](ctx, s.Client, s.TableNameCandidates); err != nil {
		return nil, err
	}
	if snap.Voters, err = scanTable[Voter](ctx, s.Client, s.TableNameVoters); err != nil {
		return nil, err
	}
	if snap.Ballots, err = scanTable[Ballot](ctx, s.Client, s.TableNameBallots); err != nil {
		return nil, err
	}

	sort.Slice(snap.Elections, func(i, j int) bool { return snap.Elections[i].ID < snap.Elections[j].ID })
	return snap, nil
}

func scanTable[T any](ctx context.Context, client *dynamodb.Client, table string) ([]*T, error) {
	var records []*T
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("STORAGE: scan of %s failed: %v", table, err)
			return nil, err
		}

		var page []*T
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("STORAGE: failed to unmarshal %s page: %v", table, err)
			return nil, err
		}
		records = append(records, page...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
}

// EnsureTables creates any missing table. It is meant for local stacks and
// tests; production tables are provisioned outside the service.
func (s *DynamoLedgerStorage) EnsureTables(ctx context.Context) error {
	specs := []struct {
		name   string
		skType types.ScalarAttributeType
	}{
		{s.TableNameElections, ""},
		{s.TableNameCandidates, types.ScalarAttributeTypeN},
		{s.TableNameVoters, types.ScalarAttributeTypeS},
		{s.TableNameBallots, types.ScalarAttributeTypeS},
	}

	for _, spec := range specs {
		input := &dynamodb.CreateTableInput{
			TableName:   aws.String(spec.name),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			},
		}
		if spec.skType != "" {
			input.AttributeDefinitions = append(input.AttributeDefinitions,
				types.AttributeDefinition{AttributeName: aws.String("SK"), AttributeType: spec.skType})
			input.KeySchema = append(input.KeySchema,
				types.KeySchemaElement{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange})
		}

		if _, err := s.Client.CreateTable(ctx, input); err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				continue
			}
			logging.Log.Errorf("STORAGE: failed to create table %s: %v", spec.name, err)
			return err
		}
		logging.Log.Infof("STORAGE: created table %s", spec.name)
	}
	return nil
}

func (s *DynamoLedgerStorage) CreateElection(ctx context.Context, election *Election) error {
	item, err := attributevalue.MarshalMap(election)
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to marshal election: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableNameElections),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("STORAGE: election with ID %d already exists", election.ID)
			return ErrItemWithIDAlreadyExists
		}
		logging.Log.Errorf("STORAGE: failed to create election: %v", err)
		return err
	}
	return nil
}

func (s *DynamoLedgerStorage) DeactivateElection(ctx context.Context, id uint64) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableNameElections),
		Key: map[string]types.AttributeValue{
			"PK": numberValue(id),
		},
		UpdateExpression:          aws.String("SET Active = :val"),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":val": &types.AttributeValueMemberBOOL{Value: false}},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return fmt.Errorf("%w: election %d", ErrNotFound, id)
		}
		logging.Log.Errorf("STORAGE: failed to deactivate election %d: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoLedgerStorage) AddCandidate(ctx context.Context, candidate *Candidate) error {
	item, err := attributevalue.MarshalMap(candidate)
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to marshal candidate: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableNameCandidates),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrItemWithIDAlreadyExists
		}
		logging.Log.Errorf("STORAGE: failed to add candidate %d to election %d: %v", candidate.ID, candidate.ElectionID, err)
		return err
	}
	return nil
}

func (s *DynamoLedgerStorage) RegisterVoter(ctx context.Context, voter *Voter) error {
	item, err := attributevalue.MarshalMap(voter)
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to marshal voter: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.TableNameVoters),
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to register voter %s for election %d: %v", voter.Principal, voter.ElectionID, err)
		return err
	}
	return nil
}

// CastVote writes the ballot and bumps the tally in one transaction, so a
// crash can never leave one without the other.
func (s *DynamoLedgerStorage) CastVote(ctx context.Context, ballot *Ballot) error {
	item, err := attributevalue.MarshalMap(ballot)
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to marshal ballot: %v", err)
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.TableNameBallots),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName: aws.String(s.TableNameCandidates),
					Key: map[string]types.AttributeValue{
						"PK": numberValue(ballot.ElectionID),
						"SK": numberValue(ballot.CandidateID),
					},
					UpdateExpression:          aws.String("ADD VoteCount :one"),
					ConditionExpression:       aws.String("attribute_exists(PK)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{":one": numberValue(1)},
				},
			},
		},
	})
	if err == nil {
		return nil
	}

	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) && len(tce.CancellationReasons) == 2 {
		if aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed" {
			return ErrBallotAlreadyExists
		}
		if aws.ToString(tce.CancellationReasons[1].Code) == "ConditionalCheckFailed" {
			return fmt.Errorf("%w: candidate %d in election %d", ErrNotFound, ballot.CandidateID, ballot.ElectionID)
		}
	}
	logging.Log.Errorf("STORAGE: vote transaction for election %d failed: %v", ballot.ElectionID, err)
	return err
}

func (s *DynamoLedgerStorage) Close() error {
	return nil
}

func numberValue(n uint64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatUint(n, 10)}
}
