package storage

import "time"

// Records are shared by every backend: dynamodbav tags describe the DynamoDB
// item layout, gorm tags the SQLite schema.

type Election struct {
	ID        uint64    `dynamodbav:"PK" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `dynamodbav:"Name" gorm:"not null"`
	StartTime time.Time `dynamodbav:"StartTime" gorm:"not null"`
	EndTime   time.Time `dynamodbav:"EndTime" gorm:"not null"`
	Active    bool      `dynamodbav:"Active" gorm:"not null"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}

type Candidate struct {
	ElectionID uint64 `dynamodbav:"PK" gorm:"primaryKey;autoIncrement:false"`
	ID         uint64 `dynamodbav:"SK" gorm:"primaryKey;autoIncrement:false"`
	Name       string `dynamodbav:"Name" gorm:"not null"`
	VoteCount  uint64 `dynamodbav:"VoteCount" gorm:"not null;default:0"`
}

type Voter struct {
	ElectionID   uint64    `dynamodbav:"PK" gorm:"primaryKey;autoIncrement:false"`
	Principal    string    `dynamodbav:"SK" gorm:"primaryKey"`
	Seq          uint64    `dynamodbav:"Seq" gorm:"not null"`
	RegisteredAt time.Time `dynamodbav:"RegisteredAt"`
}

// Ballot is the vote-cast fact for one (election, voter) pair. Its key is what
// makes a second vote by the same voter impossible in every backend.
type Ballot struct {
	ElectionID  uint64    `dynamodbav:"PK" gorm:"primaryKey;autoIncrement:false"`
	Voter       string    `dynamodbav:"SK" gorm:"primaryKey"`
	CandidateID uint64    `dynamodbav:"CandidateID" gorm:"not null"`
	ReceiptID   string    `dynamodbav:"ReceiptID" gorm:"not null"`
	CastAt      time.Time `dynamodbav:"CastAt"`
}

// Snapshot is the full persisted state, used to rebuild the ledger on start.
type Snapshot struct {
	Elections  []*Election
	Candidates []*Candidate
	Voters     []*Voter
	Ballots    []*Ballot
}
