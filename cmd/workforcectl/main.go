package main

import (
	"context"
	"fmt"
	"os"

	"constructedge/internal/app"
	"constructedge/internal/config"
	"constructedge/internal/service"
	"constructedge/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "workforcectl",
		Short:         "Operator commands for the ConstructEdge workforce service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(recomputeCmd(), seedAdminCmd(), exportCmd())
	return root
}

// withApp loads configuration, wires the application and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.InitLogger(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Stdout: cfg.Log.Stdout})
	defer logger.Sync()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recalculate progress and status of every project from its tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				projects, err := a.Reconciler.RecalculateAll(ctx)
				if err != nil {
					return err
				}
				for _, p := range projects {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d%%\t%s\n", p.ProjectID, p.Progress, p.Status)
				}
				return nil
			})
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Register an administrator through the identity ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := a.Identity.Register(ctx, service.RegisterInput{
					Name:     name,
					Email:    email,
					Password: password,
					Role:     "ADMIN",
				})
				if err != nil {
					return err
				}
				logger.Logger.Info("Administrator seeded", zap.String("user_id", user.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s registered with id %s\n", user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the project progress report as an .xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := a.Dashboard.ExportProjects(ctx, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "projects.xlsx", "output file")
	return cmd
}
