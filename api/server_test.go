package api

import (
	"context"
	"encoding/json"
	testutils "github.com/alex-pricope/election-ledger/api/controllers/testing"
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/api/transport"
	"github.com/alex-pricope/election-ledger/docs"
	"github.com/alex-pricope/election-ledger/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

const adminAddr = "0xC92dD829502E98df4014676836f97aeFcdEc25E3"

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func testConfig() *Config {
	return &Config{
		StorageConfig: StorageConfig{Driver: DriverMemory},
		ServerConfig:  ServerConfig{GinMode: gin.TestMode},
		LedgerConfig:  LedgerConfig{Admin: adminAddr},
	}
}

func TestServerBuild(t *testing.T) {
	quietLogs()
	ctx := context.Background()

	t.Run("Happy path - state survives a restart on sqlite", func(t *testing.T) {
		conf := testConfig()
		conf.Driver = DriverSQLite
		conf.SQLitePath = filepath.Join(t.TempDir(), "ledger.db")
		now := fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

		store, err := NewServer(conf).openStorage(ctx)
		require.NoError(t, err)
		r, err := NewServer(conf).Build(ctx, store, now)
		require.NoError(t, err)

		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", models.CreateElectionRequest{
			Name:      "Board Seat",
			StartTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).Unix(),
			EndTime:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Unix(),
		}, testutils.As(adminAddr))
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		require.NoError(t, store.Close())

		store, err = NewServer(conf).openStorage(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		r, err = NewServer(conf).Build(ctx, store, now)
		require.NoError(t, err)

		res = testutils.PerformRequest(r, http.MethodGet, "/api/elections", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []models.ElectionSummaryResponse{{ID: 1, Name: "Board Seat", Active: true}},
			testutils.DecodeBody[[]models.ElectionSummaryResponse](res))
	})

	t.Run("Happy path - gateway token is enforced when configured", func(t *testing.T) {
		conf := testConfig()
		conf.Token = "s3cret"
		r, err := NewServer(conf).Build(ctx, storage.NewMemoryLedgerStorage(), fixedClock(time.Now()))
		require.NoError(t, err)

		body := models.CreateElectionRequest{Name: "X", StartTime: 1, EndTime: 2}
		res := testutils.PerformRequest(r, http.MethodPost, "/api/elections", body, testutils.As(adminAddr))
		assert.Equal(t, http.StatusUnauthorized, res.Code)

		headers := testutils.As(adminAddr)
		headers[transport.HeaderGatewayToken] = "s3cret"
		res = testutils.PerformRequest(r, http.MethodPost, "/api/elections", body, headers)
		assert.Equal(t, http.StatusCreated, res.Code)
	})

	t.Run("Unhappy path - malformed admin", func(t *testing.T) {
		conf := testConfig()
		conf.Admin = "root"
		_, err := NewServer(conf).Build(ctx, storage.NewMemoryLedgerStorage(), fixedClock(time.Now()))
		assert.Error(t, err)
	})

	t.Run("Unhappy path - unknown driver", func(t *testing.T) {
		conf := testConfig()
		conf.Driver = "etcd"
		_, err := NewServer(conf).openStorage(ctx)
		assert.Error(t, err)
	})
}

func TestEveryRouteIsDocumented(t *testing.T) {
	quietLogs()
	r, err := NewServer(testConfig()).Build(context.Background(), storage.NewMemoryLedgerStorage(), fixedClock(time.Now()))
	require.NoError(t, err)

	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	param := regexp.MustCompile(`:(\w+)`)
	for _, route := range r.Routes() {
		path := param.ReplaceAllString(route.Path, "{$1}")
		_, ok := doc.Paths[path][strings.ToLower(route.Method)]
		assert.True(t, ok, "%s %s", route.Method, path)
	}
}
