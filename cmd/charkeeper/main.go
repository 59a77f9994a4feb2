package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/charkeeper/internal/client/cli"
	"github.com/dmitrijs2005/charkeeper/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	code := 0
	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		if !cli.Shown(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		code = 1
	}

	if err := app.Close(context.Background()); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	stop()
	os.Exit(code)
}
