package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/obskit/obsctl/internal/cli"
)

func main() {
	// Credentials commonly live in a .env next to the working directory;
	// absence is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := cli.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
