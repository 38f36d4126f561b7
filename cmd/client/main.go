package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/tenants"
	"github.com/rs/zerolog"
)

// Logs in (unless a stored session is restored), optionally switches tenant
// and polls GET /api/whoami, refreshing the access credential as needed.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running client: %s\n", err)
	}
}

func run() error {
	c := config.Load()
	logger, err := logging.New(c)
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nav := navigation.NewHistory("/")
	client, err := authapi.NewFromConfig(ctx, c, nav, logger)
	if err != nil {
		return fmt.Errorf("authapi.NewFromConfig: %w", err)
	}
	defer client.Close()

	if !client.Session().Authenticated() {
		username := config.GetEnv("CLIENT_USERNAME", client.RememberedUsername(ctx))
		password := os.Getenv("CLIENT_PASSWORD")
		if username == "" || password == "" {
			return errors.New("CLIENT_USERNAME and CLIENT_PASSWORD are required to log in")
		}
		result, err := client.Login(ctx, username, password)
		if err != nil {
			return err
		}
		logger.Info().Str("user", result.Identity.Username).Int("companies", len(result.Companies)).Msg("logged in")
	}

	if company := config.GetEnv("CLIENT_COMPANY", ""); company != "" {
		branches := config.GetEnv("CLIENT_BRANCHES", "")
		if err := client.SwitchTenant(ctx, company, tenants.ParseBranchHeader(branches)...); err != nil {
			return err
		}
	}

	interval := config.GetEnvDuration("CLIENT_POLL_INTERVAL", 30*time.Second)
	for {
		whoami(ctx, client, logger)
		if !client.Session().Authenticated() {
			logger.Warn().Strs("redirects", nav.Redirects()).Msg("session ended")
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func whoami(ctx context.Context, client *authapi.Client, logger zerolog.Logger) {
	var who json.RawMessage
	err := client.Get(ctx, "/api/whoami", &who)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("whoami")
		return
	}
	fmt.Println(string(who))
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
