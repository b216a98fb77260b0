package models

import (
	"github.com/alex-pricope/election-ledger/ledger"
	"time"
)

type CastVoteRequest struct {
	CandidateID uint64 `json:"candidateId"`
}

type VoteReceiptResponse struct {
	ReceiptID   string    `json:"receiptId"`
	ElectionID  uint64    `json:"electionId"`
	CandidateID uint64    `json:"candidateId"`
	Voter       string    `json:"voter"`
	CastAt      time.Time `json:"castAt"`
}

type HasVotedResponse struct {
	ElectionID uint64 `json:"electionId"`
	Voter      string `json:"voter"`
	Voted      bool   `json:"voted"`
}

func TransformReceiptFromLedger(r ledger.VoteReceipt) VoteReceiptResponse {
	return VoteReceiptResponse{
		ReceiptID:   r.ReceiptID,
		ElectionID:  r.ElectionID,
		CandidateID: r.CandidateID,
		Voter:       r.Voter.String(),
		CastAt:      r.CastAt,
	}
}
