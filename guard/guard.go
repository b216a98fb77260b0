package guard

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("unauthorized")

type DenialReason string

const (
	ReasonNotAdmin           DenialReason = "not_admin"
	ReasonNotRegisteredVoter DenialReason = "not_registered_voter"
)

// DenialError tells apart the two ways a principal can be refused. Callers that
// only care about the outcome match it with errors.Is(err, ErrUnauthorized).
type DenialError struct {
	Reason     DenialReason
	Principal  Principal
	ElectionID uint64
}

func (e *DenialError) Error() string {
	switch e.Reason {
	case ReasonNotRegisteredVoter:
		return fmt.Sprintf("unauthorized: %s is not a registered voter for election %d", e.Principal, e.ElectionID)
	default:
		return fmt.Sprintf("unauthorized: %s is not the administrator", e.Principal)
	}
}

func (e *DenialError) Unwrap() error {
	return ErrUnauthorized
}

// ReasonOf returns the denial reason carried by err, or "" when err is not a denial.
func ReasonOf(err error) DenialReason {
	var denial *DenialError
	if errors.As(err, &denial) {
		return denial.Reason
	}
	return ""
}

// VoterRegistry is the read-only slice of ledger state the guard consults.
type VoterRegistry interface {
	IsRegisteredVoter(electionID uint64, p Principal) bool
}

type Guard struct {
	admin Principal
}

func New(admin Principal) *Guard {
	return &Guard{admin: admin}
}

func (g *Guard) Admin() Principal {
	return g.admin
}

func (g *Guard) AuthorizeAdmin(p Principal) error {
	if p == "" || p != g.admin {
		return &DenialError{Reason: ReasonNotAdmin, Principal: p}
	}
	return nil
}

// AuthorizeVoter checks registration only. Whether the voter already voted is
// decided by the ledger under the same lock that records the vote.
func (g *Guard) AuthorizeVoter(registry VoterRegistry, p Principal, electionID uint64) error {
	if p == "" || !registry.IsRegisteredVoter(electionID, p) {
		return &DenialError{Reason: ReasonNotRegisteredVoter, Principal: p, ElectionID: electionID}
	}
	return nil
}
