package transport

import (
	testutils "github.com/alex-pricope/election-ledger/api/controllers/testing"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"io"
	"net/http"
	"testing"
)

const principal = "0xC92dD829502E98df4014676836f97aeFcdEc25E3"

func setupRouter(token string) *gin.Engine {
	logging.Log = logrus.New()
	logging.Log.SetOutput(io.Discard)

	r := NewRouter(gin.TestMode)
	r.GET("/whoami", CallerMiddleware(token), func(c *gin.Context) {
		p, ok := Caller(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.String())
	})
	return r
}

func TestCallerMiddleware(t *testing.T) {
	t.Run("Happy path - principal is normalized into the context", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{HeaderPrincipal: principal})
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, guard.MustParsePrincipal(principal).String(), res.Body.String())
	})

	t.Run("Happy path - gateway token accepted", func(t *testing.T) {
		r := setupRouter("s3cret")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{
			HeaderPrincipal:    principal,
			HeaderGatewayToken: "s3cret",
		})
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Unhappy path - missing principal", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Unhappy path - malformed principal", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{HeaderPrincipal: "alice"})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Unhappy path - wrong gateway token", func(t *testing.T) {
		r := setupRouter("s3cret")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{
			HeaderPrincipal:    principal,
			HeaderGatewayToken: "guess",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

func TestRouterBasics(t *testing.T) {
	t.Run("Happy path - request id is minted and echoed", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{HeaderPrincipal: principal})
		assert.NotEmpty(t, res.Header().Get(HeaderRequestID))

		res = testutils.PerformRequest(r, http.MethodGet, "/whoami", nil, map[string]string{
			HeaderPrincipal: principal,
			HeaderRequestID: "req-42",
		})
		assert.Equal(t, "req-42", res.Header().Get(HeaderRequestID))
	})

	t.Run("Happy path - preflight short-circuits", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodOptions, "/whoami", nil, nil)
		assert.Equal(t, http.StatusNoContent, res.Code)
		assert.Contains(t, res.Header().Get("Access-Control-Allow-Headers"), HeaderPrincipal)
	})

	t.Run("Unhappy path - unknown route", func(t *testing.T) {
		r := setupRouter("")
		res := testutils.PerformRequest(r, http.MethodGet, "/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Contains(t, res.Body.String(), "PAGE_NOT_FOUND")
	})
}
