package main

import (
	"github.com/aussiebroadwan/treasuremind/internal/auth/app"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "treasuremind authentication service",
		Long: `Email and password accounts with a signed session cookie.

Configuration is read from the environment (AUTH_*, PORT, LOG_LEVEL, ...).`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server, applying migrations first unless
AUTH_AUTO_MIGRATE=false.`,
		RunE: runServe,
	}
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			cmd.Printf("migrations applied (%s)\n", cfg.StoreDriver)
			return nil
		},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(cmd.Context(), app.LoadConfig())
	if err != nil {
		return err
	}
	return application.Run()
}
