package models

import (
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
)

// Times on the wire are unix seconds, matching how election windows are set.

type CreateElectionRequest struct {
	Name      string `json:"name"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

type CreateElectionResponse struct {
	ID uint64 `json:"id"`
}

type ElectionSummaryResponse struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type ElectionResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	Active    bool   `json:"active"`
}

type AddCandidateRequest struct {
	Name string `json:"name"`
}

type AddCandidateResponse struct {
	ElectionID  uint64 `json:"electionId"`
	CandidateID uint64 `json:"candidateId"`
}

type CandidateResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"voteCount"`
}

type RegisterVoterRequest struct {
	Voter string `json:"voter"`
}

type VotersResponse struct {
	ElectionID uint64   `json:"electionId"`
	Voters     []string `json:"voters"`
}

type ResultsResponse struct {
	ElectionID uint64              `json:"electionId"`
	Candidates []CandidateResponse `json:"candidates"`
	TotalVotes uint64              `json:"totalVotes"`
	Leaders    []uint64            `json:"leaders"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func TransformElectionSummaries(summaries []ledger.ElectionSummary) []ElectionSummaryResponse {
	out := make([]ElectionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, ElectionSummaryResponse{ID: s.ID, Name: s.Name, Active: s.Active})
	}
	return out
}

func TransformElectionFromLedger(d ledger.ElectionDetails) ElectionResponse {
	return ElectionResponse{
		ID:        d.ID,
		Name:      d.Name,
		StartTime: d.StartTime.Unix(),
		EndTime:   d.EndTime.Unix(),
		Active:    d.Active,
	}
}

func TransformCandidatesFromLedger(tally []ledger.CandidateTally) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(tally))
	for _, c := range tally {
		out = append(out, CandidateResponse{ID: c.ID, Name: c.Name, VoteCount: c.VoteCount})
	}
	return out
}

func TransformVotersFromLedger(electionID uint64, voters []guard.Principal) VotersResponse {
	out := VotersResponse{ElectionID: electionID, Voters: make([]string, 0, len(voters))}
	for _, v := range voters {
		out.Voters = append(out.Voters, v.String())
	}
	return out
}

func TransformResultsFromLedger(r ledger.Results) ResultsResponse {
	return ResultsResponse{
		ElectionID: r.ElectionID,
		Candidates: TransformCandidatesFromLedger(r.Candidates),
		TotalVotes: r.TotalVotes,
		Leaders:    r.Leaders,
	}
}
