package config

import (
	"firehorse/global"

	"go.uber.org/zap"
)

func initLogger(env string) error {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	global.Logger = logger
	return nil
}
