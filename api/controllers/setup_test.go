package controllers

import (
	"context"
	"fmt"
	testutils "github.com/alex-pricope/election-ledger/api/controllers/testing"
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/api/transport"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/ledger"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/alex-pricope/election-ledger/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"
)

const (
	adminAddr = "0xC92dD829502E98df4014676836f97aeFcdEc25E3"
	voterAddr = "0x1111111111111111111111111111111111111111"
	otherAddr = "0x2222222222222222222222222222222222222222"
)

var (
	electionStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	electionEnd   = electionStart.Add(time.Hour)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupLedger(t *testing.T) (*ledger.Ledger, *testClock) {
	t.Helper()
	logging.Log = logrus.New()
	logging.Log.SetOutput(io.Discard)
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: electionStart.Add(-24 * time.Hour)}
	l, err := ledger.New(context.Background(), guard.New(guard.MustParsePrincipal(adminAddr)), storage.NewMemoryLedgerStorage(), clock)
	require.NoError(t, err)
	return l, clock
}

func setupRouter(t *testing.T) (*gin.Engine, *testClock) {
	t.Helper()
	l, clock := setupLedger(t)

	r := transport.NewRouter(gin.TestMode)
	caller := transport.CallerMiddleware("")
	NewElectionController(l, caller).RegisterRoutes(r)
	NewVotingController(l, caller).RegisterRoutes(r)
	return r, clock
}

// seedElection creates an election with candidates and voters through the API.
func seedElection(t *testing.T, r *gin.Engine, candidates []string, voters ...string) uint64 {
	t.Helper()
	res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
		Name:      "Board Seat",
		StartTime: electionStart.Unix(),
		EndTime:   electionEnd.Unix(),
	}, testutils.As(adminAddr))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	id := testutils.DecodeBody[models.CreateElectionResponse](res).ID

	for _, name := range candidates {
		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/candidates"),
			models.AddCandidateRequest{Name: name}, testutils.As(adminAddr))
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	}
	for _, v := range voters {
		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/voters"),
			models.RegisterVoterRequest{Voter: v}, testutils.As(adminAddr))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	}
	return id
}

func electionPath(id uint64, suffix string) string {
	return fmt.Sprintf("/api/elections/%d%s", id, suffix)
}
