package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"

	"github.com/authstarter/internal/app"
	"github.com/authstarter/internal/authclient"
	"github.com/authstarter/internal/constants"
	"github.com/authstarter/internal/logger"
)

const appName = "authstarter"

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", constants.DefaultServerPort)
	}
	authPath := os.Getenv("AUTH_API_PATH")
	if authPath == "" {
		authPath = constants.AuthAPIPath
	}

	environment := os.Getenv("APP_ENV")
	if environment == "" {
		environment = "production"
	}
	// Logs go to stderr so they do not interleave with the screens
	appLogger := logger.New(os.Stderr, environment, os.Getenv("LOG_JSON") == "true")

	client, err := authclient.NewClient(serverURL, authclient.WithAuthPath(authPath))
	if err != nil {
		appLogger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	displayAppname(appName)
	fmt.Printf("Server: %s\n", serverURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(client, os.Stdin, os.Stdout, appLogger).Run(ctx); err != nil {
		appLogger.Error("client exited", "error", err)
		os.Exit(1)
	}
}

func displayAppname(name string) {
	banner := figure.NewFigure(name, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
