package controllers

import (
	"context"
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"net/http"
)

type VoteLedger interface {
	Vote(ctx context.Context, voter guard.Principal, id uint64, candidateID uint64) (ledger.VoteReceipt, error)
	HasVoted(id uint64, voter guard.Principal) (bool, error)
}

type VotingController struct {
	ledger VoteLedger
	caller gin.HandlerFunc
}

func NewVotingController(l VoteLedger, caller gin.HandlerFunc) *VotingController {
	return &VotingController{
		ledger: l,
		caller: caller,
	}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/elections")

	group.POST("/:id/votes", c.caller, c.vote)
	group.GET("/:id/votes/:voter", c.hasVoted)
}

// @Security Principal
// vote godoc
// @Summary Cast the caller's single vote in an election
// @Tags voting
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body models.CastVoteRequest true "Cast Vote Request"
// @Success 201 {object} models.VoteReceiptResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/elections/{id}/votes [post]
func (c *VotingController) vote(g *gin.Context) {
	voter, ok := callerPrincipal(g)
	if !ok {
		return
	}
	id, ok := electionIDParam(g)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}

	receipt, err := c.ledger.Vote(g.Request.Context(), voter, id, req.CandidateID)
	if err != nil {
		logging.Log.Warnf("VOTE: vote by %s in election %d rejected: %v", voter, id, err)
		writeLedgerError(g, err)
		return
	}

	g.JSON(http.StatusCreated, models.TransformReceiptFromLedger(receipt))
}

// hasVoted godoc
// @Summary Check whether a voter already voted
// @Tags voting
// @Produce json
// @Param id path int true "Election ID"
// @Param voter path string true "Voter address"
// @Success 200 {object} models.HasVotedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id}/votes/{voter} [get]
func (c *VotingController) hasVoted(g *gin.Context) {
	id, ok := electionIDParam(g)
	if !ok {
		return
	}
	voter, err := guard.ParsePrincipal(g.Param("voter"))
	if err != nil {
		writeLedgerError(g, err)
		return
	}

	voted, err := c.ledger.HasVoted(id, voter)
	if err != nil {
		writeLedgerError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.HasVotedResponse{ElectionID: id, Voter: voter.String(), Voted: voted})
}
