package api

import (
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	LedgerConfig
	GatewayConfig
	LogConfig
}

type StorageConfig struct {
	Driver              string
	SQLitePath          string
	Region              string
	Endpoint            string
	TableNameElections  string
	TableNameCandidates string
	TableNameVoters     string
	TableNameBallots    string
}

type ServerConfig struct {
	Port    int
	GinMode string
}

type LedgerConfig struct {
	Admin string
}

// GatewayConfig holds the secret shared with the upstream authenticator.
// An empty token disables the check.
type GatewayConfig struct {
	Token string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
)

func ReadConfig() *Config {
	var conf = &Config{
		StorageConfig: StorageConfig{
			Driver:              getStringOrDefault("storage.driver", DriverMemory),
			SQLitePath:          getStringOrDefault("storage.sqlitePath", "data/ledger.db"),
			Region:              getStringOrDefault("storage.region", ""),
			Endpoint:            getStringOrDefault("storage.endpoint", ""),
			TableNameElections:  getStringOrDefault("storage.TableNameElections", "elections"),
			TableNameCandidates: getStringOrDefault("storage.TableNameCandidates", "candidates"),
			TableNameVoters:     getStringOrDefault("storage.TableNameVoters", "voters"),
			TableNameBallots:    getStringOrDefault("storage.TableNameBallots", "ballots"),
		},
		ServerConfig: ServerConfig{
			Port:    getIntOrDefault("server.port", 8080),
			GinMode: getStringOrDefault("server.ginMode", gin.ReleaseMode),
		},
		LedgerConfig: LedgerConfig{
			Admin: getString("ledger.admin"),
		},
		GatewayConfig: GatewayConfig{
			Token: getStringOrDefault("gateway.token", ""),
		},
		LogConfig: LogConfig{
			Level:  getStringOrDefault("log.level", "info"),
			Format: getStringOrDefault("log.format", "text"),
		},
	}

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
