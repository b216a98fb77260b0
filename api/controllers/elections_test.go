package controllers

import (
	testutils "github.com/alex-pricope/election-ledger/api/controllers/testing"
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"strings"
	"testing"
)

func TestGetAdmin(t *testing.T) {
	r, _ := setupRouter(t)

	res := testutils.PerformRequest(r, http.MethodGet, "/api/admin", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, strings.ToLower(adminAddr), testutils.DecodeBody[models.AdminResponse](res).Admin)
}

func TestCreateElection(t *testing.T) {
	t.Run("Happy path - admin creates and reads back an election", func(t *testing.T) {
		r, _ := setupRouter(t)
		id := seedElection(t, r, nil)
		assert.Equal(t, uint64(1), id)

		res := testutils.PerformRequest(r, http.MethodGet, electionPath(id, ""), nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		got := testutils.DecodeBody[models.ElectionResponse](res)
		assert.Equal(t, "Board Seat", got.Name)
		assert.Equal(t, electionStart.Unix(), got.StartTime)
		assert.Equal(t, electionEnd.Unix(), got.EndTime)
		assert.True(t, got.Active)
	})

	t.Run("Unhappy path - non-admin is forbidden", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
			Name: "X", StartTime: electionStart.Unix(), EndTime: electionEnd.Unix(),
		}, testutils.As(voterAddr))
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, "UNAUTHORIZED", testutils.DecodeBody[models.ErrorResponse](res).Code)
	})

	t.Run("Unhappy path - missing principal", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
			Name: "X", StartTime: electionStart.Unix(), EndTime: electionEnd.Unix(),
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Unhappy path - start not before end", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
			Name: "X", StartTime: electionEnd.Unix(), EndTime: electionEnd.Unix(),
		}, testutils.As(adminAddr))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "INVALID_TIME_RANGE", testutils.DecodeBody[models.ErrorResponse](res).Code)
	})

	t.Run("Unhappy path - blank name", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
			Name: "  ", StartTime: electionStart.Unix(), EndTime: electionEnd.Unix(),
		}, testutils.As(adminAddr))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "INVALID_NAME", testutils.DecodeBody[models.ErrorResponse](res).Code)
	})

	t.Run("Unhappy path - malformed body", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", "not an object", testutils.As(adminAddr))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestElectionQueries(t *testing.T) {
	t.Run("Happy path - candidates and voters in insertion order", func(t *testing.T) {
		r, _ := setupRouter(t)
		id := seedElection(t, r, []string{"Alice", "Bob"}, voterAddr, otherAddr, voterAddr)

		res := testutils.PerformRequest(r, http.MethodGet, electionPath(id, "/candidates"), nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		candidates := testutils.DecodeBody[[]models.CandidateResponse](res)
		require.Len(t, candidates, 2)
		assert.Equal(t, models.CandidateResponse{ID: 1, Name: "Alice"}, candidates[0])
		assert.Equal(t, models.CandidateResponse{ID: 2, Name: "Bob"}, candidates[1])

		res = testutils.PerformRequest(r, http.MethodGet, electionPath(id, "/voters"), nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []string{voterAddr, otherAddr}, testutils.DecodeBody[models.VotersResponse](res).Voters)
	})

	t.Run("Unhappy path - unknown election", func(t *testing.T) {
		r, _ := setupRouter(t)
		for _, suffix := range []string{"", "/candidates", "/voters", "/results"} {
			res := testutils.PerformRequest(r, http.MethodGet, electionPath(42, suffix), nil, nil)
			assert.Equal(t, http.StatusNotFound, res.Code, suffix)
			assert.Equal(t, "NOT_FOUND", testutils.DecodeBody[models.ErrorResponse](res).Code)
		}
	})

	t.Run("Unhappy path - non-numeric id", func(t *testing.T) {
		r, _ := setupRouter(t)
		res := testutils.PerformRequest(r, http.MethodGet, "/api/elections/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestAddCandidate(t *testing.T) {
	t.Run("Happy path - ids are per election", func(t *testing.T) {
		r, _ := setupRouter(t)
		first := seedElection(t, r, []string{"Alice"})
		second := seedElection(t, r, nil)

		res := testutils.PerformRequest(r, http.MethodPost, electionPath(second, "/candidates"),
			models.AddCandidateRequest{Name: "Carol"}, testutils.As(adminAddr))
		require.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, models.AddCandidateResponse{ElectionID: second, CandidateID: 1}, testutils.DecodeBody[models.AddCandidateResponse](res))
		assert.NotEqual(t, first, second)
	})

	t.Run("Unhappy path - candidate list locks at start", func(t *testing.T) {
		r, clock := setupRouter(t)
		id := seedElection(t, r, []string{"Alice"})
		clock.Set(electionStart)

		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/candidates"),
			models.AddCandidateRequest{Name: "Late"}, testutils.As(adminAddr))
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "ELECTION_ALREADY_STARTED", testutils.DecodeBody[models.ErrorResponse](res).Code)
	})

	t.Run("Unhappy path - non-admin", func(t *testing.T) {
		r, _ := setupRouter(t)
		id := seedElection(t, r, nil)
		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/candidates"),
			models.AddCandidateRequest{Name: "Mallory"}, testutils.As(voterAddr))
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}

func TestRegisterVoter(t *testing.T) {
	t.Run("Unhappy path - malformed voter address", func(t *testing.T) {
		r, _ := setupRouter(t)
		id := seedElection(t, r, nil)
		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/voters"),
			models.RegisterVoterRequest{Voter: "bob"}, testutils.As(adminAddr))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "INVALID_PRINCIPAL", testutils.DecodeBody[models.ErrorResponse](res).Code)
	})

	t.Run("Unhappy path - non-admin", func(t *testing.T) {
		r, _ := setupRouter(t)
		id := seedElection(t, r, nil)
		res := testutils.PerformRequest(r, http.MethodPost, electionPath(id, "/voters"),
			models.RegisterVoterRequest{Voter: otherAddr}, testutils.As(voterAddr))
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}

func TestDeleteElection(t *testing.T) {
	r, _ := setupRouter(t)
	id := seedElection(t, r, []string{"Alice"})

	res := testutils.PerformRequest(r, http.MethodDelete, electionPath(id, ""), nil, testutils.As(voterAddr))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = testutils.PerformRequest(r, http.MethodDelete, electionPath(id, ""), nil, testutils.As(adminAddr))
	require.Equal(t, http.StatusOK, res.Code)

	res = testutils.PerformRequest(r, http.MethodDelete, electionPath(id, ""), nil, testutils.As(adminAddr))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "ALREADY_INACTIVE", testutils.DecodeBody[models.ErrorResponse](res).Code)

	res = testutils.PerformRequest(r, http.MethodGet, "/api/elections", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []models.ElectionSummaryResponse{{ID: id, Name: "Board Seat", Active: false}},
		testutils.DecodeBody[[]models.ElectionSummaryResponse](res))
}
