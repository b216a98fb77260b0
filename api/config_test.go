package api

import (
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"io"
	"testing"
)

func quietLogs() {
	logging.Log = logrus.New()
	logging.Log.SetOutput(io.Discard)
}

func TestReadConfig(t *testing.T) {
	quietLogs()

	t.Run("Happy path - defaults fill everything but the admin", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("ledger.admin", "0xC92dD829502E98df4014676836f97aeFcdEc25E3")

		conf := ReadConfig()

		assert.Equal(t, DriverMemory, conf.Driver)
		assert.Equal(t, "data/ledger.db", conf.SQLitePath)
		assert.Equal(t, "elections", conf.TableNameElections)
		assert.Equal(t, "ballots", conf.TableNameBallots)
		assert.Equal(t, 8080, conf.Port)
		assert.Equal(t, gin.ReleaseMode, conf.GinMode)
		assert.Equal(t, "0xC92dD829502E98df4014676836f97aeFcdEc25E3", conf.Admin)
		assert.Empty(t, conf.Token)
		assert.Equal(t, "info", conf.Level)
	})

	t.Run("Happy path - explicit values win", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("ledger.admin", "0x1111111111111111111111111111111111111111")
		viper.Set("storage.driver", DriverDynamoDB)
		viper.Set("storage.endpoint", "http://localhost:4566")
		viper.Set("storage.TableNameVoters", "voters-dev")
		viper.Set("server.port", 9090)
		viper.Set("gateway.token", "s3cret")
		viper.Set("log.format", "json")

		conf := ReadConfig()

		assert.Equal(t, DriverDynamoDB, conf.Driver)
		assert.Equal(t, "http://localhost:4566", conf.Endpoint)
		assert.Equal(t, "voters-dev", conf.TableNameVoters)
		assert.Equal(t, 9090, conf.Port)
		assert.Equal(t, "s3cret", conf.Token)
		assert.Equal(t, "json", conf.Format)
	})
}
