package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lu-zhengda/aliases/internal/command"
	"github.com/lu-zhengda/aliases/internal/httpapi"
	"github.com/lu-zhengda/aliases/internal/lobby"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var lobbyAddr, httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lobby and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if lobbyAddr != "" {
				cfg.Lobby.Listen = lobbyAddr
			}
			if httpAddr != "" {
				cfg.Server.HTTPAddr = httpAddr
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			svc, m, err := newLookupService(cfg, logger, reg)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			writeTimeout, err := cfg.LobbyWriteTimeout()
			if err != nil {
				return err
			}
			dispatcher := command.NewDispatcher(m)
			lobbySrv, err := lobby.New(dispatcher, lobby.Options{
				Color:        cfg.Lobby.Color,
				Permissions:  db,
				Logger:       logger,
				Metrics:      m,
				WriteTimeout: writeTimeout,
			})
			if err != nil {
				return err
			}
			aliasesCmd := command.NewAliasesCommand(svc, command.AliasesOptions{
				Permission:        cfg.Command.Permission,
				PermissionDefault: cfg.Command.PermissionDefault,
				Report:            cfg.ReportOptions(),
			})
			if err := dispatcher.Register(aliasesCmd); err != nil {
				return fmt.Errorf("failed to register aliases command: %w", err)
			}

			api := httpapi.New(svc, lobbySrv, httpapi.Options{
				Report:   cfg.ReportOptions(),
				Logger:   logger,
				Gatherer: reg,
			})

			ln, err := net.Listen("tcp", cfg.Lobby.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.Lobby.Listen, err)
			}
			httpSrv := &http.Server{
				Addr:              cfg.Server.HTTPAddr,
				Handler:           api.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return lobbySrv.Serve(ctx, ln)
			})
			g.Go(func() error {
				logger.WithField("addr", httpSrv.Addr).Info("http api listening")
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to serve http: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})

			err = g.Wait()
			logger.Info("shut down")
			return err
		},
	}

	cmd.Flags().StringVar(&lobbyAddr, "lobby", "", "lobby listen address (overrides config)")
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP API listen address (overrides config)")
	return cmd
}
