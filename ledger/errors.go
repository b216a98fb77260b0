package ledger

import (
	"errors"
	"github.com/alex-pricope/election-ledger/guard"
)

var (
	ErrUnauthorized           = guard.ErrUnauthorized
	ErrInvalidPrincipal       = guard.ErrInvalidPrincipal
	ErrNotFound               = errors.New("election not found")
	ErrInvalidTimeRange       = errors.New("start time must be before end time")
	ErrInvalidName            = errors.New("name must not be empty")
	ErrElectionAlreadyStarted = errors.New("election already started")
	ErrVotingClosed           = errors.New("voting is closed")
	ErrAlreadyVoted           = errors.New("voter already voted in this election")
	ErrAlreadyInactive        = errors.New("election is already inactive")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrStorage                = errors.New("ledger storage failure")
	ErrInternal               = errors.New("internal ledger error")
)

type Kind string

const (
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindInvalidPrincipal       Kind = "INVALID_PRINCIPAL"
	KindNotFound               Kind = "NOT_FOUND"
	KindInvalidTimeRange       Kind = "INVALID_TIME_RANGE"
	KindInvalidName            Kind = "INVALID_NAME"
	KindElectionAlreadyStarted Kind = "ELECTION_ALREADY_STARTED"
	KindVotingClosed           Kind = "VOTING_CLOSED"
	KindAlreadyVoted           Kind = "ALREADY_VOTED"
	KindAlreadyInactive        Kind = "ALREADY_INACTIVE"
	KindCandidateNotFound      Kind = "CANDIDATE_NOT_FOUND"
	KindStorage                Kind = "STORAGE_UNAVAILABLE"
	KindInternal               Kind = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthorized, KindUnauthorized},
	{ErrInvalidPrincipal, KindInvalidPrincipal},
	{ErrCandidateNotFound, KindCandidateNotFound},
	{ErrNotFound, KindNotFound},
	{ErrInvalidTimeRange, KindInvalidTimeRange},
	{ErrInvalidName, KindInvalidName},
	{ErrElectionAlreadyStarted, KindElectionAlreadyStarted},
	{ErrVotingClosed, KindVotingClosed},
	{ErrAlreadyVoted, KindAlreadyVoted},
	{ErrAlreadyInactive, KindAlreadyInactive},
	{ErrStorage, KindStorage},
}

// KindOf maps any error returned by the ledger onto its taxonomy kind.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
