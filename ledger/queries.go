package ledger

import (
	"github.com/alex-pricope/election-ledger/guard"
)

// Admin returns the administrator fixed for this instance.
func (l *Ledger) Admin() guard.Principal {
	return l.guard.Admin()
}

// GetElections lists every election ever created, inactive ones included,
// in id order.
func (l *Ledger) GetElections() []ElectionSummary {
	l.mu.RLock()
	ids := make([]uint64, len(l.order))
	copy(ids, l.order)
	elections := make([]*election, 0, len(ids))
	for _, id := range ids {
		elections = append(elections, l.elections[id])
	}
	l.mu.RUnlock()

	summaries := make([]ElectionSummary, 0, len(elections))
	for _, e := range elections {
		e.mu.RLock()
		summaries = append(summaries, ElectionSummary{
			ID:     e.record.ID,
			Name:   e.record.Name,
			Active: e.record.Active,
		})
		e.mu.RUnlock()
	}
	return summaries
}

func (l *Ledger) GetElection(id uint64) (ElectionDetails, error) {
	e, err := l.lookup(id)
	if err != nil {
		return ElectionDetails{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ElectionDetails{
		ID:        e.record.ID,
		Name:      e.record.Name,
		StartTime: e.record.StartTime,
		EndTime:   e.record.EndTime,
		Active:    e.record.Active,
	}, nil
}

// GetCandidates returns the tally in insertion order.
func (l *Ledger) GetCandidates(id uint64) ([]CandidateTally, error) {
	e, err := l.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tally(), nil
}

func (e *election) tally() []CandidateTally {
	out := make([]CandidateTally, 0, len(e.candidates))
	for _, c := range e.candidates {
		out = append(out, CandidateTally{ID: c.ID, Name: c.Name, VoteCount: c.VoteCount})
	}
	return out
}

// GetRegisteredVoters returns the allowlist in registration order.
func (l *Ledger) GetRegisteredVoters(id uint64) ([]guard.Principal, error) {
	e, err := l.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]guard.Principal, len(e.voterOrder))
	copy(out, e.voterOrder)
	return out, nil
}

// IsRegisteredVoter makes the ledger usable as a guard.VoterRegistry outside
// the vote path.
func (l *Ledger) IsRegisteredVoter(electionID uint64, p guard.Principal) bool {
	e, err := l.lookup(electionID)
	if err != nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.voters[p]
	return ok
}

func (l *Ledger) HasVoted(id uint64, voter guard.Principal) (bool, error) {
	e, err := l.lookup(id)
	if err != nil {
		return false, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.ballots[voter]
	return ok, nil
}

func (l *Ledger) GetResults(id uint64) (Results, error) {
	e, err := l.lookup(id)
	if err != nil {
		return Results{}, err
	}
	e.mu.RLock()
	tally := e.tally()
	e.mu.RUnlock()

	results := Results{ElectionID: id, Candidates: tally, Leaders: []uint64{}}
	var best uint64
	for _, c := range tally {
		results.TotalVotes += c.VoteCount
		switch {
		case c.VoteCount == 0:
		case c.VoteCount > best:
			best = c.VoteCount
			results.Leaders = []uint64{c.ID}
		case c.VoteCount == best:
			results.Leaders = append(results.Leaders, c.ID)
		}
	}
	return results, nil
}
