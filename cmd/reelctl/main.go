// Command reelctl is the operator CLI for schema, stock and token chores.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/config"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/middleware"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "reelctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "reelctl",
		Short:        "Reel ruling service admin CLI",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newRebuildStockCmd(),
		newExportStockCmd(),
		newTokenCmd(),
	)
	return cmd
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return cfg, db, nil
}

func newStockService(cfg *config.Config, db *gorm.DB) service.StockService {
	return service.NewStockService(
		repository.NewStore(db),
		repository.NewCatalogRepository(db),
		service.NewStockAggregator(),
		service.NewEngineConfig(cfg),
	)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := infra.RunMigrations(db); err != nil {
				return err
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
}

func newRebuildStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-stock",
		Short: "Recompute every stock aggregate from live reels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			admin := service.Caller{Username: "reelctl", Role: lifecycle.RoleAdmin}
			resp, err := newStockService(cfg, db).Rebuild(cmd.Context(), admin)
			if err != nil {
				return err
			}
			for _, st := range resp.Stocks {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %6d reels %12s kg\n", st.PaperTypeName, st.ReelCount, st.TotalWeight.StringFixed(3))
			}
			return nil
		},
	}
}

func newExportStockCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export-stock",
		Short: "Write the stock workbook to the report directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			data, err := newStockService(cfg, db).Export(cmd.Context())
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.ReportStoragePath
			}
			path, err := infra.SaveReport(dir, fmt.Sprintf("stock-%s.xlsx", time.Now().Format("20060102-150405")), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (defaults to REPORT_STORAGE_PATH)")
	return cmd
}

// newTokenCmd mints a JWT for local development. Identity is issued elsewhere in
// production.
func newTokenCmd() *cobra.Command {
	var (
		username string
		role     string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl == 0 {
				ttl = time.Duration(cfg.JWTExpirationHours) * time.Hour
			}
			tok, err := middleware.SignToken(cfg.JWTSecret, uuid.NewString(), username, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "dev", "Username claim")
	cmd.Flags().StringVarP(&role, "role", "r", lifecycle.RoleOperator, "Role claim (operator, supervisor, admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION_HOURS)")
	return cmd
}
