package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"tableflip.dev/ordo/pkg/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := commands.New().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal("error during command execution", "err", err)
	}
}
