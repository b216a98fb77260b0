package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/election-ledger/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"os"
	"path/filepath"
)

var modelsToMigrate = []any{
	&Election{},
	&Candidate{},
	&Voter{},
	&Ballot{},
}

type SQLiteLedgerStorage struct {
	DB *gorm.DB
}

// NewSQLiteLedgerStorage opens (creating if needed) the database file at path
// and migrates the schema.
func NewSQLiteLedgerStorage(path string) (*SQLiteLedgerStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to open sqlite database %s: %v", path, err)
		return nil, err
	}

	// SQLite allows one writer; a single connection turns lock contention into queueing.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(modelsToMigrate...); err != nil {
		logging.Log.Errorf("STORAGE: sqlite migration failed: %v", err)
		return nil, err
	}

	logging.Log.Infof("STORAGE: sqlite database ready at %s", path)
	return &SQLiteLedgerStorage{DB: db}, nil
}

func (s *SQLiteLedgerStorage) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	db := s.DB.WithContext(ctx)

	if err := db.Order("id").Find(&snap.Elections).Error; err != nil {
		logging.Log.Errorf("STORAGE: failed to load elections: %v", err)
		return nil, err
	}
	if err := db.Order("election_id, id").Find(&snap.Candidates).Error; err != nil {
		logging.Log.Errorf("STORAGE: failed to load candidates: %v", err)
		return nil, err
	}
	if err := db.Order("election_id, seq").Find(&snap.Voters).Error; err != nil {
		logging.Log.Errorf("STORAGE: failed to load voters: %v", err)
		return nil, err
	}
	if err := db.Find(&snap.Ballots).Error; err != nil {
		logging.Log.Errorf("STORAGE: failed to load ballots: %v", err)
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteLedgerStorage) CreateElection(ctx context.Context, election *Election) error {
	err := s.DB.WithContext(ctx).Create(election).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		logging.Log.Warnf("STORAGE: election with ID %d already exists", election.ID)
		return ErrItemWithIDAlreadyExists
	}
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to create election %d: %v", election.ID, err)
	}
	return err
}

func (s *SQLiteLedgerStorage) DeactivateElection(ctx context.Context, id uint64) error {
	res := s.DB.WithContext(ctx).Model(&Election{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		logging.Log.Errorf("STORAGE: failed to deactivate election %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: election %d", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteLedgerStorage) AddCandidate(ctx context.Context, candidate *Candidate) error {
	err := s.DB.WithContext(ctx).Create(candidate).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrItemWithIDAlreadyExists
	}
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to add candidate %d to election %d: %v", candidate.ID, candidate.ElectionID, err)
	}
	return err
}

func (s *SQLiteLedgerStorage) RegisterVoter(ctx context.Context, voter *Voter) error {
	err := s.DB.WithContext(ctx).Save(voter).Error
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to register voter %s for election %d: %v", voter.Principal, voter.ElectionID, err)
	}
	return err
}

func (s *SQLiteLedgerStorage) CastVote(ctx context.Context, ballot *Ballot) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Ballot{}).
			Where("election_id = ? AND voter = ?", ballot.ElectionID, ballot.Voter).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrBallotAlreadyExists
		}

		res := tx.Model(&Candidate{}).
			Where("election_id = ? AND id = ?", ballot.ElectionID, ballot.CandidateID).
			Update("vote_count", gorm.Expr("vote_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: candidate %d in election %d", ErrNotFound, ballot.CandidateID, ballot.ElectionID)
		}

		if err := tx.Create(ballot).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrBallotAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (s *SQLiteLedgerStorage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
