package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/reports"
	"github.com/danielhkuo/quickly-elect/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg cliparse.Config

	root := &cobra.Command{
		Use:           "electd",
		Short:         "Electronic election manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cliparse.Resolve(&cfg)
		},
	}
	cliparse.RegisterFlags(root.PersistentFlags(), &cfg)

	root.AddCommand(
		newServeCmd(&cfg),
		newMigrateCmd(&cfg),
		newTokenCmd(&cfg),
		newReportCmd(&cfg),
	)
	return root
}

// openStore connects to the configured database and makes sure the
// schema exists
func openStore(cfg cliparse.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	return conn, nil
}

func newServeCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireSalt(); err != nil {
				return err
			}

			dbConn, err := openStore(*cfg)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			slog.Info("Database schema ready", "type", cfg.DatabaseType)

			mgr := election.NewManager(dbConn)
			if cfg.AdminIdentity != "" {
				err := mgr.Bootstrap(cmd.Context(), cfg.AdminIdentity, models.UserProfile{Name: cfg.AdminName})
				if err != nil {
					return fmt.Errorf("admin bootstrap failed: %w", err)
				}
			}
			gw := reports.NewGateway(cfg.GatewayRef, mgr, slog.Default())

			server := http.Server{
				Handler:           router.NewRouter(mgr, gw, *cfg),
				Addr:              ":" + strconv.Itoa(cfg.Port),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			slog.Info("Listening", "port", cfg.Port)
			err = server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server closed: %w", err)
			}
			slog.Info("Server closed")
			return nil
		},
	}
}

func newMigrateCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbConn, err := openStore(*cfg)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			slog.Info("Database schema ready", "type", cfg.DatabaseType, "url", cfg.DatabaseURL)
			return nil
		},
	}
}

func newTokenCmd(cfg *cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "token <identity>",
		Short: "Mint an X-Identity-Token for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireSalt(); err != nil {
				return err
			}
			identity := strings.TrimSpace(args[0])
			if identity == "" {
				return errors.New("identity must not be empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.IssueIdentityToken(identity, cfg.IdentitySalt))
			return nil
		},
	}
}
