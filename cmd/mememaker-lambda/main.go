package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"mememaker/internal/app"
	"mememaker/internal/config"
	"mememaker/internal/infra/logging"
	"mememaker/internal/lambda"
)

func main() {
	cfg := config.LoadOrDefault()
	// Lambda collects stdout; no log file.
	logging.InitLogger("", 0, 0, 0, false, cfg.Logger.Level)
	if cfg.Server.Debug {
		logging.SetLogLevel("debug")
	}

	a := app.New(cfg)
	h := lambda.NewHandler(a.Service, a.Stats, cfg.Server.Debug)
	awslambda.Start(h.Handle)
}
