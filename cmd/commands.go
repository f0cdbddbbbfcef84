package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/routes"
	"github.com/oscardel13/calorie-tracker/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the whole store as JSON to file, or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the whole store with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <user>",
	Short: "Print the adjusted daily allowance of a user's latest week",
	Args:  cobra.ExactArgs(1),
	RunE:  runAllowance,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(cfg.Server.GinMode)
	router := routes.SetupRouter(routes.Deps{
		Store:    a.store,
		Hub:      a.hub,
		Uploader: a.uploader,
		Auth:     services.NewAuthService(a.store, a.secret, cfg.Auth.TokenDuration, logger),
		Secret:   a.secret,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr), zap.String("db", cfg.Database.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := services.NewBackupService(a.store, a.uploader, nil, logger).Export(ctx)
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if len(args) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return err
	}
	if err := os.WriteFile(args[0], body, 0o600); err != nil {
		return err
	}
	logger.Info("Store exported", zap.String("file", args[0]), zap.Int("users", len(snap)))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	body, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var snap services.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return services.NewBackupService(a.store, a.uploader, nil, logger).Import(ctx, snap)
}

func runAllowance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := services.NewTrackerService(a.store, nil, logger).LatestSummary(ctx, args[0])
	if err != nil {
		return err
	}
	w := summary.Week
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s to %s)\n", w.Name, w.Start, w.End)
	fmt.Fprintf(out, "consumed %.0f of %.0f kcal\n", summary.Totals.Calories, w.CaloriesGoal)
	fmt.Fprintf(out, "remaining %.0f kcal over %d unlogged days: %.0f kcal/day\n",
		summary.Allowance.RemainingCalories, summary.Allowance.MissingDays, summary.Allowance.Value)
	return nil
}
