package storage

import "context"

// LedgerStorage is the durable backing store of the election ledger. Every
// write must be durable when it returns nil.
type LedgerStorage interface {
	Load(ctx context.Context) (*Snapshot, error)
	CreateElection(ctx context.Context, election *Election) error
	DeactivateElection(ctx context.Context, id uint64) error
	AddCandidate(ctx context.Context, candidate *Candidate) error
	RegisterVoter(ctx context.Context, voter *Voter) error
	// CastVote stores the ballot and increments the chosen candidate's
	// VoteCount as one atomic write. It returns ErrBallotAlreadyExists when the
	// voter already has a ballot for the election.
	CastVote(ctx context.Context, ballot *Ballot) error
	Close() error
}
