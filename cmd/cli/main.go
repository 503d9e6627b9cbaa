package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akeren/waitlist-funnel/config"
	"github.com/akeren/waitlist-funnel/domain/confirmation"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/pkg/migrations"
	"github.com/akeren/waitlist-funnel/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		runMigrations(logger)
		return

	case "issue-token":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: cli issue-token <email>")
			os.Exit(1)
		}
		issueToken(logger, args[1])
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrations(logger *log.Logger) {
	dbCfg := &config.DBConfig{}
	db, err := config.NewDatabase(logger, dbCfg)
	if err != nil {
		logger.Error("Failed to connect to database for migration", "error", err.Error())
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance for migration", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB, migrations.Config{Dir: migrationsDir, Logger: logger}); err != nil {
		logger.Error("Database migration failed", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Database migrations completed")
}

// issueToken prints a fresh confirmation token for an email. Useful when an
// operator needs to resend a confirmation link by hand.
func issueToken(logger *log.Logger, email string) {
	appConfig := config.NewAppConfig()

	manager := confirmation.NewTokenManager(appConfig.ConfirmationSecret, appConfig.ConfirmationTTL)

	token, err := manager.Issue(email)
	if err != nil {
		logger.Error("Failed to issue confirmation token", "error", err.Error())
		os.Exit(1)
	}

	fmt.Println(token)
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate              Run database migrations and exit")
	fmt.Println("  issue-token <email>  Print a confirmation token for an email")
}
