package controllers

import (
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/api/transport"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

var statusByKind = map[ledger.Kind]int{
	ledger.KindUnauthorized:           http.StatusForbidden,
	ledger.KindInvalidPrincipal:       http.StatusBadRequest,
	ledger.KindNotFound:               http.StatusNotFound,
	ledger.KindCandidateNotFound:      http.StatusNotFound,
	ledger.KindInvalidTimeRange:       http.StatusBadRequest,
	ledger.KindInvalidName:            http.StatusBadRequest,
	ledger.KindElectionAlreadyStarted: http.StatusConflict,
	ledger.KindVotingClosed:           http.StatusConflict,
	ledger.KindAlreadyVoted:           http.StatusConflict,
	ledger.KindAlreadyInactive:        http.StatusConflict,
	ledger.KindStorage:                http.StatusServiceUnavailable,
}

func writeLedgerError(g *gin.Context, err error) {
	kind := ledger.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	g.JSON(status, models.ErrorResponse{Code: string(kind), Error: err.Error()})
}

func badRequest(g *gin.Context, msg string) {
	g.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "INVALID_REQUEST", Error: msg})
}

func electionIDParam(g *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(g.Param("id"), 10, 64)
	if err != nil {
		badRequest(g, "invalid election id")
		return 0, false
	}
	return id, true
}

// callerPrincipal answers 401 when no principal was resolved for the request.
func callerPrincipal(g *gin.Context) (guard.Principal, bool) {
	p, ok := transport.Caller(g)
	if !ok {
		logging.Log.Warnf("ADMIN: no caller principal on %s", g.Request.URL.Path)
		g.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHENTICATED", Error: "missing caller principal"})
		return "", false
	}
	return p, true
}
