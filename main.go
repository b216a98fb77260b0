// @title Election Ledger API
// @version 1.0
// @description Elections, candidates, voter registration and single-vote casting

// @securityDefinitions.apikey Principal
// @in header
// @name x-principal
package main

import (
	"strings"

	_ "github.com/alex-pricope/election-ledger/docs"

	"github.com/alex-pricope/election-ledger/api"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	logging.BootstrapLogger(viper.GetString("log.level"), viper.GetString("log.format"))

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
