package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cli := NewCLI(SetupApp)
	err := cli.Execute(ctx)
	cli.Shutdown(context.Background())
	stop()

	if err != nil {
		os.Exit(1)
	}
}
