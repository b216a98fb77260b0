package ledger

import (
	"github.com/alex-pricope/election-ledger/guard"
	"time"
)

type ElectionSummary struct {
	ID     uint64
	Name   string
	Active bool
}

type ElectionDetails struct {
	ID        uint64
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Active    bool
}

type CandidateTally struct {
	ID        uint64
	Name      string
	VoteCount uint64
}

type Results struct {
	ElectionID uint64
	Candidates []CandidateTally
	TotalVotes uint64
	// Leaders holds every candidate sharing the highest count; empty while no vote was cast.
	Leaders []uint64
}

type VoteReceipt struct {
	ReceiptID   string
	ElectionID  uint64
	CandidateID uint64
	Voter       guard.Principal
	CastAt      time.Time
}

// VoteCast is published to subscribers once a vote is durably committed.
type VoteCast struct {
	ElectionID  uint64
	CandidateID uint64
	Voter       guard.Principal
	ReceiptID   string
	CastAt      time.Time
}
