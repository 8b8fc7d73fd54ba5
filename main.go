// @title M# Hackathon Backend API
// @version 1.0
// @description Backend API for hackathon stage progress, team scoring and submission review

// @securityDefinitions.apikey AdminToken
// @in header
// @name x-admin-token

// @securityDefinitions.apikey JudgeToken
// @in header
// @name x-judge-token
package main

import (
	_ "github.com/TechTatva-25/m-hash-backend/docs"

	"github.com/TechTatva-25/m-hash-backend/api"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BootstrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
