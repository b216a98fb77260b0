package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type candidateKey struct {
	electionID uint64
	id         uint64
}

type principalKey struct {
	electionID uint64
	principal  string
}

// MemoryLedgerStorage keeps records in process memory. It survives ledger
// restarts within one process, which is what the tests rely on.
type MemoryLedgerStorage struct {
	mu         sync.RWMutex
	elections  map[uint64]Election
	candidates map[candidateKey]Candidate
	voters     map[principalKey]Voter
	ballots    map[principalKey]Ballot
}

func NewMemoryLedgerStorage() *MemoryLedgerStorage {
	return &MemoryLedgerStorage{
		elections:  make(map[uint64]Election),
		candidates: make(map[candidateKey]Candidate),
		voters:     make(map[principalKey]Voter),
		ballots:    make(map[principalKey]Ballot),
	}
}

func (s *MemoryLedgerStorage) Load(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Elections:  make([]*Election, 0, len(s.elections)),
		Candidates: make([]*Candidate, 0, len(s.candidates)),
		Voters:     make([]*Voter, 0, len(s.voters)),
		Ballots:    make([]*Ballot, 0, len(s.ballots)),
	}
	for _, e := range s.elections {
		e := e
		snap.Elections = append(snap.Elections, &e)
	}
	for _, c := range s.candidates {
		c := c
		snap.Candidates = append(snap.Candidates, &c)
	}
	for _, v := range s.voters {
		v := v
		snap.Voters = append(snap.Voters, &v)
	}
	for _, b := range s.ballots {
		b := b
		snap.Ballots = append(snap.Ballots, &b)
	}
	sort.Slice(snap.Elections, func(i, j int) bool { return snap.Elections[i].ID < snap.Elections[j].ID })
	return snap, nil
}

func (s *MemoryLedgerStorage) CreateElection(_ context.Context, election *Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[election.ID]; ok {
		return ErrItemWithIDAlreadyExists
	}
	s.elections[election.ID] = *election
	return nil
}

func (s *MemoryLedgerStorage) DeactivateElection(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return fmt.Errorf("%w: election %d", ErrNotFound, id)
	}
	e.Active = false
	s.elections[id] = e
	return nil
}

func (s *MemoryLedgerStorage) AddCandidate(_ context.Context, candidate *Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := candidateKey{electionID: candidate.ElectionID, id: candidate.ID}
	if _, ok := s.candidates[key]; ok {
		return ErrItemWithIDAlreadyExists
	}
	s.candidates[key] = *candidate
	return nil
}

func (s *MemoryLedgerStorage) RegisterVoter(_ context.Context, voter *Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[principalKey{electionID: voter.ElectionID, principal: voter.Principal}] = *voter
	return nil
}

func (s *MemoryLedgerStorage) CastVote(_ context.Context, ballot *Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bk := principalKey{electionID: ballot.ElectionID, principal: ballot.Voter}
	if _, ok := s.ballots[bk]; ok {
		return ErrBallotAlreadyExists
	}
	ck := candidateKey{electionID: ballot.ElectionID, id: ballot.CandidateID}
	candidate, ok := s.candidates[ck]
	if !ok {
		return fmt.Errorf("%w: candidate %d in election %d", ErrNotFound, ballot.CandidateID, ballot.ElectionID)
	}

	candidate.VoteCount++
	s.candidates[ck] = candidate
	s.ballots[bk] = *ballot
	return nil
}

func (s *MemoryLedgerStorage) Close() error {
	return nil
}
