package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init builds the global sugared logger. Debug mode switches to the
// development config with DEBUG level enabled.
func Init(debug bool) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
