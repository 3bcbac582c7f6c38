package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/buyerdesk/internal/app"
	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/migration"
	"github.com/Additional-Code/buyerdesk/internal/seeder"
	"github.com/Additional-Code/buyerdesk/pkg/token"
)

// NewRootCommand builds the root buyerdesk CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "buyerdesk",
		Short: "Buyer procurement desk service and tooling",
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newWorkerCmd())

	return root
}

const stopTimeout = 10 * time.Second

// Execute runs the buyerdesk CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the HTTP and gRPC services",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUntilDone(cmd.Context(), app.Module)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database indexes",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Create pending indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var mig *migration.Migrator
			opts := fx.Options(app.Infra, migration.Module, fx.Populate(&mig))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := mig.Up(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Drop indexes of applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			all, _ := cmd.Flags().GetBool("all")
			var mig *migration.Migrator
			opts := fx.Options(app.Infra, migration.Module, fx.Populate(&mig))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := mig.Down(ctx, steps, all); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migration steps to rollback")
	downCmd.Flags().Bool("all", false, "Rollback all applied migrations")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo company and its reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *seeder.Seeder
			opts := fx.Options(app.Infra, seeder.Module, fx.Populate(&seed))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := seed.Run(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed data applied")
				return nil
			})
		},
	}
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Developer helpers for API callers",
	}
	tokenCmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			role, _ := cmd.Flags().GetString("role")
			companyID, _ := cmd.Flags().GetString("company")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if role == "" {
				role = cfg.Auth.AdminRole
			}
			signed, err := token.Generate(cfg.Auth.JWTSecret, cfg.Auth.Issuer, args[0], companyID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	tokenCmd.Flags().String("role", "", "Role claim; defaults to the admin role")
	tokenCmd.Flags().String("company", "", "Company id claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	cmd.AddCommand(tokenCmd)
	return cmd
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage background workers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Consume auction events and deliver invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUntilDone(cmd.Context(), app.Worker)
		},
	})
	return cmd
}

// runUntilDone starts a long-running application and stops it once ctx ends.
func runUntilDone(ctx context.Context, opts fx.Option) error {
	application := fx.New(opts)
	if err := application.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return application.Stop(stopCtx)
}

// runWithApp starts a short-lived application for a maintenance task.
func runWithApp(ctx context.Context, opts fx.Option, fn func(context.Context) error) error {
	application := fx.New(opts, fx.NopLogger)
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()
	return fn(ctx)
}
