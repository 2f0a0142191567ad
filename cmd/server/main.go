package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/youruser/logostamp/internal/api"
	"github.com/youruser/logostamp/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("LOGOSTAMP_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}
