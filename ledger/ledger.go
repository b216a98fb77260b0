package ledger

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/alex-pricope/election-ledger/storage"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"sort"
	"strings"
	"sync"
	"time"
)

// election is the in-memory state of one election. Its mutex is the
// serialization point for every mutation that targets the election.
type election struct {
	mu         sync.RWMutex
	record     storage.Election
	candidates []storage.Candidate
	voters     map[guard.Principal]struct{}
	voterOrder []guard.Principal
	ballots    map[guard.Principal]struct{}
}

func newElection(record storage.Election) *election {
	return &election{
		record:  record,
		voters:  make(map[guard.Principal]struct{}),
		ballots: make(map[guard.Principal]struct{}),
	}
}

func (e *election) candidate(id uint64) (int, bool) {
	if id == 0 || id > uint64(len(e.candidates)) {
		return 0, false
	}
	return int(id - 1), true
}

// lockedRegistry answers guard lookups for an election whose lock the caller
// already holds.
type lockedRegistry struct {
	e *election
}

func (r lockedRegistry) IsRegisteredVoter(electionID uint64, p guard.Principal) bool {
	if r.e.record.ID != electionID {
		return false
	}
	_, ok := r.e.voters[p]
	return ok
}

// Ledger owns all election state. Reads see a consistent per-election view,
// writes are committed to the store before they become visible.
type Ledger struct {
	mu        sync.RWMutex
	elections map[uint64]*election
	order     []uint64
	nextID    uint64

	guard *guard.Guard
	store storage.LedgerStorage
	clock Clock

	subsMu      sync.RWMutex
	subscribers map[int]func(VoteCast)
	nextSubID   int
}

// New rebuilds the ledger from the store's persisted state.
func New(ctx context.Context, g *guard.Guard, store storage.LedgerStorage, clock Clock) (*Ledger, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Ledger{
		elections:   make(map[uint64]*election),
		nextID:      1,
		guard:       g,
		store:       store,
		clock:       clock,
		subscribers: make(map[int]func(VoteCast)),
	}

	snap, err := store.Load(ctx)
	if err != nil {
		logging.Log.Errorf("LEDGER: failed to load state: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	l.restore(snap)

	logging.Log.Infof("LEDGER: loaded %d elections, next id %d, admin %s", len(l.order), l.nextID, g.Admin())
	return l, nil
}

func (l *Ledger) restore(snap *storage.Snapshot) {
	for _, rec := range snap.Elections {
		l.elections[rec.ID] = newElection(*rec)
		l.order = append(l.order, rec.ID)
		if rec.ID >= l.nextID {
			l.nextID = rec.ID + 1
		}
	}
	sort.Slice(l.order, func(i, j int) bool { return l.order[i] < l.order[j] })

	sort.Slice(snap.Candidates, func(i, j int) bool {
		a, b := snap.Candidates[i], snap.Candidates[j]
		if a.ElectionID != b.ElectionID {
			return a.ElectionID < b.ElectionID
		}
		return a.ID < b.ID
	})
	for _, c := range snap.Candidates {
		if e, ok := l.elections[c.ElectionID]; ok {
			e.candidates = append(e.candidates, *c)
		}
	}

	sort.Slice(snap.Voters, func(i, j int) bool {
		a, b := snap.Voters[i], snap.Voters[j]
		if a.ElectionID != b.ElectionID {
			return a.ElectionID < b.ElectionID
		}
		return a.Seq < b.Seq
	})
	for _, v := range snap.Voters {
		if e, ok := l.elections[v.ElectionID]; ok {
			p := guard.Principal(v.Principal)
			if _, dup := e.voters[p]; !dup {
				e.voters[p] = struct{}{}
				e.voterOrder = append(e.voterOrder, p)
			}
		}
	}

	for _, b := range snap.Ballots {
		if e, ok := l.elections[b.ElectionID]; ok {
			e.ballots[guard.Principal(b.Voter)] = struct{}{}
		}
	}
}

func (l *Ledger) lookup(id uint64) (*election, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.elections[id]
	if !ok {
		return nil, fmt.Errorf("%w: election %d", ErrNotFound, id)
	}
	return e, nil
}

func (l *Ledger) now() time.Time {
	return l.clock.Now().UTC()
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func (l *Ledger) authorizeAdmin(caller guard.Principal, op string) error {
	if err := l.guard.AuthorizeAdmin(caller); err != nil {
		logging.Log.Warnf("LEDGER: %s denied (%s) for %s", op, guard.ReasonOf(err), caller)
		return err
	}
	return nil
}

func (l *Ledger) CreateElection(ctx context.Context, caller guard.Principal, name string, start, end time.Time) (uint64, error) {
	if err := l.authorizeAdmin(caller, "create election"); err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("%w: start %s, end %s", ErrInvalidTimeRange, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Ids are consumed even when the write fails, so an id is never handed out twice.
	id := l.nextID
	l.nextID++

	record := storage.Election{
		ID:        id,
		Name:      name,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Active:    true,
		CreatedAt: l.clock.Now().UTC(),
	}
	if err := l.store.CreateElection(ctx, &record); err != nil {
		logging.Log.Errorf("ELECTION: failed to persist election %d: %v", id, err)
		return 0, storageError(err)
	}

	l.elections[id] = newElection(record)
	l.order = append(l.order, id)

	logging.Log.Infof("ELECTION: created election %d %q [%s, %s]", id, name, record.StartTime.Format(time.RFC3339), record.EndTime.Format(time.RFC3339))
	return id, nil
}

func (l *Ledger) DeleteElection(ctx context.Context, caller guard.Principal, id uint64) error {
	if err := l.authorizeAdmin(caller, "delete election"); err != nil {
		return err
	}
	e, err := l.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.record.Active {
		return fmt.Errorf("%w: election %d", ErrAlreadyInactive, id)
	}
	if err := l.store.DeactivateElection(ctx, id); err != nil {
		logging.Log.Errorf("ELECTION: failed to persist deletion of election %d: %v", id, err)
		return storageError(err)
	}
	e.record.Active = false

	logging.Log.Infof("ELECTION: election %d deactivated", id)
	return nil
}

func (l *Ledger) AddCandidate(ctx context.Context, caller guard.Principal, id uint64, name string) (uint64, error) {
	if err := l.authorizeAdmin(caller, "add candidate"); err != nil {
		return 0, err
	}
	e, err := l.lookup(id)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.record.Active {
		return 0, fmt.Errorf("%w: election %d is inactive", ErrNotFound, id)
	}
	if !l.now().Before(e.record.StartTime) {
		return 0, fmt.Errorf("%w: election %d started at %s", ErrElectionAlreadyStarted, id, e.record.StartTime.Format(time.RFC3339))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}

	candidate := storage.Candidate{
		ElectionID: id,
		ID:         uint64(len(e.candidates)) + 1,
		Name:       name,
	}
	if err := l.store.AddCandidate(ctx, &candidate); err != nil {
		logging.Log.Errorf("ELECTION: failed to persist candidate for election %d: %v", id, err)
		return 0, storageError(err)
	}
	e.candidates = append(e.candidates, candidate)

	logging.Log.Infof("ELECTION: candidate %d %q added to election %d", candidate.ID, name, id)
	return candidate.ID, nil
}

// RegisterVoter is idempotent: registering a principal twice succeeds and
// leaves the set unchanged.
func (l *Ledger) RegisterVoter(ctx context.Context, caller guard.Principal, id uint64, voter guard.Principal) error {
	if err := l.authorizeAdmin(caller, "register voter"); err != nil {
		return err
	}
	if voter == "" {
		return fmt.Errorf("%w: empty voter", ErrInvalidPrincipal)
	}
	e, err := l.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.record.Active {
		return fmt.Errorf("%w: election %d is inactive", ErrNotFound, id)
	}
	if _, ok := e.voters[voter]; ok {
		logging.Log.Debugf("ELECTION: voter %s already registered for election %d", voter, id)
		return nil
	}

	record := storage.Voter{
		ElectionID:   id,
		Principal:    voter.String(),
		Seq:          uint64(len(e.voterOrder)) + 1,
		RegisteredAt: l.clock.Now().UTC(),
	}
	if err := l.store.RegisterVoter(ctx, &record); err != nil {
		logging.Log.Errorf("ELECTION: failed to persist voter %s for election %d: %v", voter, id, err)
		return storageError(err)
	}
	e.voters[voter] = struct{}{}
	e.voterOrder = append(e.voterOrder, voter)

	logging.Log.Infof("ELECTION: voter %s registered for election %d", voter, id)
	return nil
}

// Vote records a single vote. The already-voted check, the durable write and
// the tally increment all happen under the election lock.
func (l *Ledger) Vote(ctx context.Context, voter guard.Principal, id uint64, candidateID uint64) (VoteReceipt, error) {
	e, err := l.lookup(id)
	if err != nil {
		return VoteReceipt{}, err
	}

	receipt, err := l.commitVote(ctx, e, voter, candidateID)
	if err != nil {
		return VoteReceipt{}, err
	}

	l.publish(VoteCast{
		ElectionID:  receipt.ElectionID,
		CandidateID: receipt.CandidateID,
		Voter:       receipt.Voter,
		ReceiptID:   receipt.ReceiptID,
		CastAt:      receipt.CastAt,
	})
	return receipt, nil
}

func (l *Ledger) commitVote(ctx context.Context, e *election, voter guard.Principal, candidateID uint64) (VoteReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.record.ID
	if err := l.guard.AuthorizeVoter(lockedRegistry{e: e}, voter, id); err != nil {
		logging.Log.Warnf("VOTE: denied (%s) for %s in election %d", guard.ReasonOf(err), voter, id)
		return VoteReceipt{}, err
	}
	if !e.record.Active {
		return VoteReceipt{}, fmt.Errorf("%w: election %d is inactive", ErrVotingClosed, id)
	}
	now := l.now()
	if now.Before(e.record.StartTime) || now.After(e.record.EndTime) {
		return VoteReceipt{}, fmt.Errorf("%w: election %d is open from %s to %s", ErrVotingClosed, id,
			e.record.StartTime.Format(time.RFC3339), e.record.EndTime.Format(time.RFC3339))
	}
	idx, ok := e.candidate(candidateID)
	if !ok {
		return VoteReceipt{}, fmt.Errorf("%w: candidate %d in election %d", ErrCandidateNotFound, candidateID, id)
	}
	if _, voted := e.ballots[voter]; voted {
		logging.Log.Warnf("VOTE: duplicate vote attempt by %s in election %d", voter, id)
		return VoteReceipt{}, fmt.Errorf("%w: %s in election %d", ErrAlreadyVoted, voter, id)
	}

	receiptID, err := gonanoid.New()
	if err != nil {
		logging.Log.Errorf("VOTE: failed to generate receipt id: %v", err)
		return VoteReceipt{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	ballot := storage.Ballot{
		ElectionID:  id,
		Voter:       voter.String(),
		CandidateID: candidateID,
		ReceiptID:   receiptID,
		CastAt:      l.clock.Now().UTC(),
	}
	if err := l.store.CastVote(ctx, &ballot); err != nil {
		if errors.Is(err, storage.ErrBallotAlreadyExists) {
			e.ballots[voter] = struct{}{}
			return VoteReceipt{}, fmt.Errorf("%w: %s in election %d", ErrAlreadyVoted, voter, id)
		}
		logging.Log.Errorf("VOTE: failed to persist vote by %s in election %d: %v", voter, id, err)
		return VoteReceipt{}, storageError(err)
	}

	e.ballots[voter] = struct{}{}
	e.candidates[idx].VoteCount++

	logging.Log.Infof("VOTE: %s voted for candidate %d in election %d (receipt %s)", voter, candidateID, id, receiptID)
	return VoteReceipt{
		ReceiptID:   receiptID,
		ElectionID:  id,
		CandidateID: candidateID,
		Voter:       voter,
		CastAt:      ballot.CastAt,
	}, nil
}
