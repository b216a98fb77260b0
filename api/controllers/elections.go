package controllers

import (
	"context"
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

type ElectionLedger interface {
	Admin() guard.Principal
	GetElections() []ledger.ElectionSummary
	GetElection(id uint64) (ledger.ElectionDetails, error)
	GetCandidates(id uint64) ([]ledger.CandidateTally, error)
	GetRegisteredVoters(id uint64) ([]guard.Principal, error)
	GetResults(id uint64) (ledger.Results, error)
	CreateElection(ctx context.Context, caller guard.Principal, name string, start, end time.Time) (uint64, error)
	DeleteElection(ctx context.Context, caller guard.Principal, id uint64) error
	AddCandidate(ctx context.Context, caller guard.Principal, id uint64, name string) (uint64, error)
	RegisterVoter(ctx context.Context, caller guard.Principal, id uint64, voter guard.Principal) error
}

type ElectionController struct {
	ledger ElectionLedger
	caller gin.HandlerFunc
}

// NewElectionController wires the election routes; caller resolves the
// acting principal on every mutating route.
func NewElectionController(l ElectionLedger, caller gin.HandlerFunc) *ElectionController {
	return &ElectionController{
		ledger: l,
		caller: caller,
	}
}

func (c *ElectionController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/admin", c.getAdmin)
	group.GET("/elections", c.listElections)
	group.GET("/elections/:id", c.getElection)
	group.GET("/elections/:id/candidates", c.getCandidates)
	group.GET("/elections/:id/voters", c.getVoters)
	group.GET("/elections/:id/results", c.getResults)

	admin := engine.Group("/api/elections", c.caller)
	admin.POST("", c.createElection)
	admin.DELETE("/:id", c.deleteElection)
	admin.POST("/:id/candidates", c.addCandidate)
	admin.POST("/:id/voters", c.registerVoter)
}

// getAdmin godoc
// @Summary Get the administrator principal
// @Tags elections
// @Produce json
// @Success 200 {object} models.AdminResponse
// @Router /api/admin [get]
func (c *ElectionController) getAdmin(g *gin.Context) {
	g.JSON(http.StatusOK, models.AdminResponse{Admin: c.ledger.Admin().String()})
}

// listElections godoc
// @Summary List all elections, inactive ones included
// @Tags elections
// @Produce json
// @Success 200 {array} models.ElectionSummaryResponse
// @Router /api/elections [get]
func (c *ElectionController) listElections(g *gin.Context) {
	g.JSON(http.StatusOK, models.TransformElectionSummaries(c.ledger.GetElections()))
}

// getElection godoc
// @Summary Get one election
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.ElectionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id} [get]
func (c *ElectionController) getElection(g *gin.Context) {
	id, ok := electionIDParam(g)
	if !ok {
		return
	}
	details, err := c.ledger.GetElection(id)
	if err != nil {
		writeLedgerError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.TransformElectionFromLedger(details))
}

// getCandidates godoc
// @Summary List the candidates of an election with their tallies
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {array} models.CandidateResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id}/candidates [get]
func (c *ElectionController) getCandidates(g *gin.Context) {
	id, ok := electionIDParam(g)
	if !ok {
		return
	}
	tally, err := c.ledger.GetCandidates(id)
	if err != nil {
		writeLedgerError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.TransformCandidatesFromLedger(tally))
}

// getVoters godoc
// @Summary List the registered voters of an election
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.VotersResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id}/voters [get]
func (c *ElectionController) getVoters(g *gin.Context) {
	id, ok := electionIDParam(g)
	if !ok {
		return
	}
	voters, err := c.ledger.GetRegisteredVoters(id)
	if err != nil {
		writeLedgerError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.TransformVotersFromLedger(id, voters))
}

// getResults godoc
// @Summary Get the tally, total and leaders of an election
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.ResultsResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id}/results [get]
func (c *ElectionController) getResults(g *gin.Context) {
	id, ok := electionIDParam(g)
	if !ok {
		return
	}
	results, err := c.ledger.GetResults(id)
	if err != nil {
		writeLedgerError(g, err)
		return
	}
	g.JSON(http.StatusOK, models.TransformResultsFromLedger(results))
}

// @Security Principal
// createElection godoc
// @Summary Create an election
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CreateElectionRequest true "Create Election Request"
// @Success 201 {object} models.CreateElectionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/elections [post]
func (c *ElectionController) createElection(g *gin.Context) {
	caller, ok := callerPrincipal(g)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}

	id, err := c.ledger.CreateElection(g.Request.Context(), caller, req.Name,
		time.Unix(req.StartTime, 0).UTC(), time.Unix(req.EndTime, 0).UTC())
	if err != nil {
		logging.Log.Warnf("ADMIN: create election by %s failed: %v", caller, err)
		writeLedgerError(g, err)
		return
	}

	logging.Log.Infof("ADMIN: %s created election %d", caller, id)
	g.JSON(http.StatusCreated, models.CreateElectionResponse{ID: id})
}

// @Security Principal
// deleteElection godoc
// @Summary Deactivate an election
// @Tags admin
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/elections/{id} [delete]
func (c *ElectionController) deleteElection(g *gin.Context) {
	caller, ok := callerPrincipal(g)
	if !ok {
		return
	}
	id, ok := electionIDParam(g)
	if !ok {
		return
	}

	if err := c.ledger.DeleteElection(g.Request.Context(), caller, id); err != nil {
		logging.Log.Warnf("ADMIN: delete election %d by %s failed: %v", id, caller, err)
		writeLedgerError(g, err)
		return
	}

	logging.Log.Infof("ADMIN: %s deactivated election %d", caller, id)
	g.JSON(http.StatusOK, models.MessageResponse{Message: "election deactivated"})
}

// @Security Principal
// addCandidate godoc
// @Summary Add a candidate before the election starts
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body models.AddCandidateRequest true "Add Candidate Request"
// @Success 201 {object} models.AddCandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/elections/{id}/candidates [post]
func (c *ElectionController) addCandidate(g *gin.Context) {
	caller, ok := callerPrincipal(g)
	if !ok {
		return
	}
	id, ok := electionIDParam(g)
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}

	candidateID, err := c.ledger.AddCandidate(g.Request.Context(), caller, id, req.Name)
	if err != nil {
		logging.Log.Warnf("ADMIN: add candidate to election %d by %s failed: %v", id, caller, err)
		writeLedgerError(g, err)
		return
	}

	g.JSON(http.StatusCreated, models.AddCandidateResponse{ElectionID: id, CandidateID: candidateID})
}

// @Security Principal
// registerVoter godoc
// @Summary Register a voter for an election
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body models.RegisterVoterRequest true "Register Voter Request"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/elections/{id}/voters [post]
func (c *ElectionController) registerVoter(g *gin.Context) {
	caller, ok := callerPrincipal(g)
	if !ok {
		return
	}
	id, ok := electionIDParam(g)
	if !ok {
		return
	}

	var req models.RegisterVoterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	voter, err := guard.ParsePrincipal(req.Voter)
	if err != nil {
		writeLedgerError(g, err)
		return
	}

	if err := c.ledger.RegisterVoter(g.Request.Context(), caller, id, voter); err != nil {
		logging.Log.Warnf("ADMIN: register voter %s in election %d by %s failed: %v", voter, id, caller, err)
		writeLedgerError(g, err)
		return
	}

	g.JSON(http.StatusOK, models.MessageResponse{Message: "voter registered"})
}
